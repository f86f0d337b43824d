// Package store persists user and pairing documents and the per-event
// dedup flags the notification core writes. The backing service is a
// key-value document store; the Postgres implementation keeps each user's
// schedule, completion log and flag set as JSONB documents.
package store

import (
	"fmt"
	"strings"
)

// User is one registered user's document as seen by the notification core.
// The core reads everything and writes only dedup flags.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`      // display name, set at signup
	FCMToken string `json:"fcm_token"` // empty = no registered device
	Timezone string `json:"timezone"`  // IANA name; empty = unknown
	PairID   string `json:"pair_id"`   // empty = not paired

	// Schedule maps date key (YYYY-MM-DD) → prayer name → "HH:MM".
	Schedule map[string]map[string]string `json:"schedule"`

	// Marked maps date key → prayer name → completed. A missing entry
	// means not yet marked.
	Marked map[string]map[string]bool `json:"marked"`
}

// ScheduleFor returns the user's prayer times for a date key, or nil.
func (u *User) ScheduleFor(date string) map[string]string {
	return u.Schedule[date]
}

// MarkedDone reports whether the user marked a prayer complete on a date.
func (u *User) MarkedDone(date, prayerName string) bool {
	return u.Marked[date][prayerName]
}

// Pair is an undirected accountability relationship between two users.
// Pair records are managed externally and consumed read-only here.
type Pair struct {
	ID    string `json:"id"`
	User1 string `json:"user1"`
	User2 string `json:"user2"`
}

// PartnerOf returns the other member of the pair, or "" if uid is not a
// member.
func (p Pair) PartnerOf(uid string) string {
	switch uid {
	case p.User1:
		return p.User2
	case p.User2:
		return p.User1
	}
	return ""
}

// --------------------------------------------------------------------------
// Dedup flag keys
// --------------------------------------------------------------------------

// FlagKind identifies the notification event a dedup flag guards.
type FlagKind string

const (
	FlagQuran  FlagKind = "quran"  // nightly Quran reading nudge
	FlagPrayer FlagKind = "prayer" // main per-prayer due reminder
	FlagDelay  FlagKind = "delay"  // partner-facing delay alert
)

// FlagKey is a structured dedup key: one (kind, subject, date) triple maps
// to at most one fired notification per day. Subject is empty for quran,
// the prayer name for prayer, and "<originUID>_<prayer>" for delay flags
// stored on the partner's document.
type FlagKey struct {
	Kind    FlagKind
	Subject string
	Date    string // YYYY-MM-DD
}

// QuranFlag keys the once-per-day Quran reminder.
func QuranFlag(date string) FlagKey {
	return FlagKey{Kind: FlagQuran, Date: date}
}

// PrayerFlag keys the main due reminder for one prayer.
func PrayerFlag(prayerName, date string) FlagKey {
	return FlagKey{Kind: FlagPrayer, Subject: prayerName, Date: date}
}

// DelayFlag keys the partner delay alert about originUID's prayer. The flag
// lives on the partner's document, so origin and prayer together form the
// subject.
func DelayFlag(originUID, prayerName, date string) FlagKey {
	return FlagKey{Kind: FlagDelay, Subject: originUID + "_" + prayerName, Date: date}
}

// String renders the canonical stored field name, e.g. "quran_2026-08-30",
// "prayer_Fajr_2026-08-30", "delay_u1_Fajr_2026-08-30". Every rendered key
// ends with the 10-character date, which PurgeFlagsBefore relies on.
func (k FlagKey) String() string {
	if k.Subject == "" {
		return fmt.Sprintf("%s_%s", k.Kind, k.Date)
	}
	return fmt.Sprintf("%s_%s_%s", k.Kind, k.Subject, k.Date)
}

// ParseFlagKey parses a stored field name back into its parts. Used by
// tooling and tests to enumerate a flag document's shape.
func ParseFlagKey(s string) (FlagKey, error) {
	i := strings.IndexByte(s, '_')
	if i < 0 || len(s) < i+1+10 {
		return FlagKey{}, fmt.Errorf("malformed flag key %q", s)
	}
	k := FlagKey{Kind: FlagKind(s[:i])}
	rest := s[i+1:]
	k.Date = rest[len(rest)-10:]
	if len(rest) > 10 {
		if rest[len(rest)-11] != '_' {
			return FlagKey{}, fmt.Errorf("malformed flag key %q", s)
		}
		k.Subject = rest[:len(rest)-11]
	}
	switch k.Kind {
	case FlagQuran, FlagPrayer, FlagDelay:
		return k, nil
	}
	return FlagKey{}, fmt.Errorf("unknown flag kind in %q", s)
}
