package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagKeyRendering(t *testing.T) {
	tests := []struct {
		key  FlagKey
		want string
	}{
		{QuranFlag("2026-08-30"), "quran_2026-08-30"},
		{PrayerFlag("Fajr", "2026-08-30"), "prayer_Fajr_2026-08-30"},
		{DelayFlag("u1", "Fajr", "2026-08-30"), "delay_u1_Fajr_2026-08-30"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.key.String())

		parsed, err := ParseFlagKey(tt.want)
		require.NoError(t, err)
		assert.Equal(t, tt.key, parsed)
	}
}

func TestParseFlagKeyRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "quran", "bogus_2026-08-30", "prayerFajr", "_2026-08-30"} {
		_, err := ParseFlagKey(s)
		assert.Error(t, err, "ParseFlagKey(%q)", s)
	}
}

func TestPairPartnerOf(t *testing.T) {
	p := Pair{ID: "p1", User1: "a", User2: "b"}
	assert.Equal(t, "b", p.PartnerOf("a"))
	assert.Equal(t, "a", p.PartnerOf("b"))
	assert.Equal(t, "", p.PartnerOf("c"))
}

func TestMemoryFlagSemantics(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	key := PrayerFlag("Fajr", "2026-08-30")

	set, err := m.FlagExists(ctx, "u1", key)
	require.NoError(t, err)
	assert.False(t, set)

	require.NoError(t, m.SetFlag(ctx, "u1", key))
	// Setting twice is a no-op, not an error.
	require.NoError(t, m.SetFlag(ctx, "u1", key))

	set, err = m.FlagExists(ctx, "u1", key)
	require.NoError(t, err)
	assert.True(t, set)

	// Another user's document is untouched.
	set, err = m.FlagExists(ctx, "u2", key)
	require.NoError(t, err)
	assert.False(t, set)
}

func TestMemoryPurgeFlagsBefore(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SetFlag(ctx, "u1", QuranFlag("2026-08-20")))
	require.NoError(t, m.SetFlag(ctx, "u1", PrayerFlag("Fajr", "2026-08-30")))
	require.NoError(t, m.SetFlag(ctx, "u2", DelayFlag("u1", "Isha", "2026-08-19")))

	trimmed, err := m.PurgeFlagsBefore(ctx, "2026-08-23")
	require.NoError(t, err)
	assert.EqualValues(t, 2, trimmed)

	assert.ElementsMatch(t, []string{"prayer_Fajr_2026-08-30"}, m.Flags("u1"))
	assert.Empty(t, m.Flags("u2"))
}

func TestMemoryListUsersOrderStable(t *testing.T) {
	m := NewMemory()
	m.PutUser(User{ID: "b"})
	m.PutUser(User{ID: "a"})
	m.PutUser(User{ID: "b", Name: "updated"})

	users, err := m.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "b", users[0].ID)
	assert.Equal(t, "updated", users[0].Name)
	assert.Equal(t, "a", users[1].ID)
}
