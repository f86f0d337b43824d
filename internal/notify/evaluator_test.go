package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

const (
	testTZ   = "Asia/Karachi"
	testDate = "2026-08-30"
)

// fakeSender records sends and can fail or panic per token.
type fakeSender struct {
	mu      sync.Mutex
	sent    []sentMsg
	failFor map[string]error
	panicOn string
}

type sentMsg struct {
	Token string
	Title string
	Body  string
}

func (f *fakeSender) Send(ctx context.Context, token, title, body string, opts messaging.Options) (string, error) {
	if token == f.panicOn {
		panic("sender exploded")
	}
	if err := f.failFor[token]; err != nil {
		return "", &messaging.DeliveryError{Target: token, Err: err}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{Token: token, Title: title, Body: body})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeSender) SendToTopic(ctx context.Context, topic, title, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMsg{Token: "topic:" + topic, Title: title, Body: body})
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) last() sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// localNow returns the UTC instant corresponding to hh:mm local on the
// test date in the test timezone.
func localNow(t *testing.T, hhmm string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation(testTZ)
	require.NoError(t, err)
	var h, m int
	_, err = fmt.Sscanf(hhmm, "%d:%d", &h, &m)
	require.NoError(t, err)
	return time.Date(2026, time.August, 30, h, m, 0, 0, loc).UTC()
}

func baseUser(id string) store.User {
	return store.User{
		ID:       id,
		Name:     "User " + id,
		FCMToken: "tok-" + id,
		Timezone: testTZ,
		Schedule: map[string]map[string]string{
			testDate: {
				"Fajr":    "05:00",
				"Dhuhr":   "12:30",
				"Asr":     "16:00",
				"Maghrib": "18:45",
				"Isha":    "20:15",
			},
		},
	}
}

func newEval(st store.Store, sender messaging.Sender) *Evaluator {
	return NewEvaluator(st, sender, tzcache.New(), DefaultWindows(), testLogger())
}

func pairedFixture(t *testing.T) (*store.Memory, store.User, store.User) {
	t.Helper()
	st := store.NewMemory()
	u1 := baseUser("u1")
	u1.PairID = "p1"
	u2 := baseUser("u2")
	u2.PairID = "p1"
	st.PutUser(u1)
	st.PutUser(u2)
	st.PutPair(store.Pair{ID: "p1", User1: "u1", User2: "u2"})
	return st, u1, u2
}

func snapshotOf(t *testing.T, st *store.Memory) *Snapshot {
	t.Helper()
	users, err := st.ListUsers(context.Background())
	require.NoError(t, err)
	pairs, err := st.ListPairs(context.Background())
	require.NoError(t, err)
	return newSnapshot(users, pairs)
}

// --------------------------------------------------------------------------
// Scenario A: inside main window, before delay window
// --------------------------------------------------------------------------

func TestMainReminderFiresInWindow(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{}
	eval := newEval(st, sender)

	fired := eval.EvaluateUser(context.Background(), u1, localNow(t, "05:02"), snapshotOf(t, st))

	require.Equal(t, []Notified{{UID: "u1", Prayer: "Fajr"}}, fired)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "tok-u1", sender.last().Token)
	assert.Contains(t, sender.last().Title, "Fajr")

	// Main flag set on the user; no delay marker on the partner yet.
	assert.Contains(t, st.Flags("u1"), "prayer_Fajr_"+testDate)
	assert.Empty(t, st.Flags("u2"))
}

func TestMainReminderIdempotent(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{}
	eval := newEval(st, sender)
	now := localNow(t, "05:02")

	eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))
	eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))

	assert.Equal(t, 1, sender.count())
}

func TestOutsideAnyWindowNothingFires(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{}
	eval := newEval(st, sender)

	fired := eval.EvaluateUser(context.Background(), u1, localNow(t, "05:11"), snapshotOf(t, st))

	assert.Empty(t, fired)
	assert.Zero(t, sender.count())
	assert.Empty(t, st.Flags("u1"))
}

// --------------------------------------------------------------------------
// Scenarios B, C, D: partner delay alerts
// --------------------------------------------------------------------------

func TestDelayAlertGoesToPartner(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{}
	eval := newEval(st, sender)

	fired := eval.EvaluateUser(context.Background(), u1, localNow(t, "05:16"), snapshotOf(t, st))

	// Main window [05:00,05:10) has passed; only the delay alert fires.
	assert.Empty(t, fired)
	require.Equal(t, 1, sender.count())
	assert.Equal(t, "tok-u2", sender.last().Token)
	assert.Contains(t, sender.last().Body, "Fajr")
	assert.Contains(t, sender.last().Body, u1.Name)

	// Marker lives on the partner's document, keyed by the late user.
	assert.Contains(t, st.Flags("u2"), "delay_u1_Fajr_"+testDate)
}

func TestDelayAlertDeduplicated(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{}
	eval := newEval(st, sender)
	now := localNow(t, "05:16")

	eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))
	eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))

	assert.Equal(t, 1, sender.count())
}

func TestDelaySuppressedWhenMarkedComplete(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	u1.Marked = map[string]map[string]bool{testDate: {"Fajr": true}}
	st.PutUser(u1)
	sender := &fakeSender{}
	eval := newEval(st, sender)

	eval.EvaluateUser(context.Background(), u1, localNow(t, "05:16"), snapshotOf(t, st))

	assert.Zero(t, sender.count())
	assert.Empty(t, st.Flags("u2"))
}

func TestDelayIndependentOfMainReminderDedup(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	// Main reminder already delivered earlier in the window.
	require.NoError(t, st.SetFlag(context.Background(), "u1", store.PrayerFlag("Fajr", testDate)))
	sender := &fakeSender{}
	eval := newEval(st, sender)

	eval.EvaluateUser(context.Background(), u1, localNow(t, "05:16"), snapshotOf(t, st))

	require.Equal(t, 1, sender.count())
	assert.Equal(t, "tok-u2", sender.last().Token)
}

func TestDelaySkippedWithoutUsablePartner(t *testing.T) {
	now := "05:16"
	tests := []struct {
		name   string
		mutate func(st *store.Memory, u1, u2 store.User)
	}{
		{"unpaired user", func(st *store.Memory, u1, u2 store.User) {
			u1.PairID = ""
			st.PutUser(u1)
		}},
		{"missing pair record", func(st *store.Memory, u1, u2 store.User) {
			u1.PairID = "ghost"
			st.PutUser(u1)
		}},
		{"partner without token", func(st *store.Memory, u1, u2 store.User) {
			u2.FCMToken = ""
			st.PutUser(u2)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, u1, u2 := pairedFixture(t)
			tt.mutate(st, u1, u2)
			sender := &fakeSender{}
			eval := newEval(st, sender)

			users, err := st.ListUsers(context.Background())
			require.NoError(t, err)
			for _, u := range users {
				if u.ID == "u1" {
					u1 = u
				}
			}
			eval.EvaluateUser(context.Background(), u1, localNow(t, now), snapshotOf(t, st))

			assert.Zero(t, sender.count())
			assert.Empty(t, st.Flags("u2"))
		})
	}
}

// --------------------------------------------------------------------------
// Skip semantics
// --------------------------------------------------------------------------

func TestSkipSemantics(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(u *store.User)
	}{
		{"no device token", func(u *store.User) { u.FCMToken = "" }},
		{"no timezone", func(u *store.User) { u.Timezone = "" }},
		{"bad timezone", func(u *store.User) { u.Timezone = "Mars/Olympus_Mons" }},
		{"no schedule for today", func(u *store.User) { u.Schedule = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := store.NewMemory()
			u := baseUser("u1")
			tt.mutate(&u)
			st.PutUser(u)
			sender := &fakeSender{}
			eval := newEval(st, sender)

			fired := eval.EvaluateUser(context.Background(), u, localNow(t, "05:02"), snapshotOf(t, st))

			assert.Empty(t, fired)
			assert.Zero(t, sender.count())
			assert.Empty(t, st.Flags("u1"))
		})
	}
}

// --------------------------------------------------------------------------
// Quran reminder
// --------------------------------------------------------------------------

func TestQuranReminderOncePerDate(t *testing.T) {
	st := store.NewMemory()
	u := baseUser("u1")
	st.PutUser(u)
	sender := &fakeSender{}
	eval := newEval(st, sender)
	now := localNow(t, "21:05")

	eval.EvaluateUser(context.Background(), u, now, snapshotOf(t, st))
	eval.EvaluateUser(context.Background(), u, now, snapshotOf(t, st))

	require.Equal(t, 1, sender.count())
	assert.Contains(t, sender.last().Title, "Quran")
	assert.Contains(t, st.Flags("u1"), "quran_"+testDate)
}

func TestQuranReminderIndependentOfSchedule(t *testing.T) {
	st := store.NewMemory()
	u := baseUser("u1")
	u.Schedule = nil // no prayer schedule at all
	st.PutUser(u)
	sender := &fakeSender{}
	eval := newEval(st, sender)

	eval.EvaluateUser(context.Background(), u, localNow(t, "21:10"), snapshotOf(t, st))

	assert.Equal(t, 1, sender.count())
}

func TestQuranReminderWindowBounds(t *testing.T) {
	for _, tc := range []struct {
		clock string
		fires bool
	}{
		{"20:59", false},
		{"21:00", true},
		{"21:19", true},
		{"21:20", false},
	} {
		st := store.NewMemory()
		u := baseUser("u1")
		st.PutUser(u)
		sender := &fakeSender{}
		eval := newEval(st, sender)

		eval.EvaluateUser(context.Background(), u, localNow(t, tc.clock), snapshotOf(t, st))

		assert.Equal(t, tc.fires, sender.count() == 1, "clock %s", tc.clock)
	}
}

// --------------------------------------------------------------------------
// Delivery failures
// --------------------------------------------------------------------------

func TestDeliveryFailureLeavesFlagUnsetForRetry(t *testing.T) {
	st, u1, _ := pairedFixture(t)
	sender := &fakeSender{failFor: map[string]error{"tok-u1": fmt.Errorf("invalid token")}}
	eval := newEval(st, sender)
	now := localNow(t, "05:02")

	fired := eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))
	assert.Empty(t, fired)
	assert.Empty(t, st.Flags("u1"))

	// Next run: provider recovered, reminder goes out.
	sender.failFor = nil
	fired = eval.EvaluateUser(context.Background(), u1, now, snapshotOf(t, st))
	assert.Equal(t, []Notified{{UID: "u1", Prayer: "Fajr"}}, fired)
}
