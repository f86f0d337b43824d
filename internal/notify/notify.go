// Package notify is the notification core: it scans the user directory on
// each cron trigger, projects "now" into each user's timezone, matches it
// against the user's prayer schedule, and fires each due event at most once
// per user per day.
//
// Per event the sequence is dedup check → dispatch → dedup write. The
// check-then-set is not transactional; overlapping runs can double-send in
// the narrow window between check and write, which is accepted (a duplicate
// reminder is non-fatal) and kept unlikely by point reads and writes.
package notify

import (
	"fmt"
	"time"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/config"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/prayer"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
)

// Windows holds the firing-window geometry, in minutes since midnight or
// minute widths. Defaults preserve deployed behavior: 10-minute main
// reminder window at the scheduled time, 10-minute partner alert window 15
// minutes after it, 20-minute Quran nudge window from 21:00.
type Windows struct {
	PrayerWindowMin int
	DelayOffsetMin  int
	DelayWindowMin  int
	QuranStartMin   int
	QuranWindowMin  int
}

// DefaultWindows returns the production defaults.
func DefaultWindows() Windows {
	return Windows{
		PrayerWindowMin: 10,
		DelayOffsetMin:  15,
		DelayWindowMin:  10,
		QuranStartMin:   21 * 60,
		QuranWindowMin:  20,
	}
}

// WindowsFromConfig builds Windows from loaded configuration.
func WindowsFromConfig(cfg *config.Config) (Windows, error) {
	quranStart, err := prayer.ParseClock(cfg.QuranStart)
	if err != nil {
		return Windows{}, fmt.Errorf("QURAN_REMINDER_START: %w", err)
	}
	return Windows{
		PrayerWindowMin: cfg.PrayerWindowMin,
		DelayOffsetMin:  cfg.DelayOffsetMin,
		DelayWindowMin:  cfg.DelayWindowMin,
		QuranStartMin:   quranStart,
		QuranWindowMin:  cfg.QuranWindowMin,
	}, nil
}

// Notified records one fired main prayer reminder.
type Notified struct {
	UID    string `json:"uid"`
	Prayer string `json:"prayer"`
}

// RunResult summarizes one orchestrator pass. Failed counts users whose
// evaluation errored; the run still reports success (best-effort batch).
type RunResult struct {
	RunID    string        `json:"run_id"`
	Users    int           `json:"users"`
	Notified []Notified    `json:"notified"`
	Failed   int           `json:"-"`
	Duration time.Duration `json:"-"`
}

// Snapshot is the read-only directory state fetched once at run start.
// Partner data mutated mid-run by other actors is not observed.
type Snapshot struct {
	Users map[string]store.User
	Pairs map[string]store.Pair
}

func newSnapshot(users []store.User, pairs map[string]store.Pair) *Snapshot {
	s := &Snapshot{
		Users: make(map[string]store.User, len(users)),
		Pairs: pairs,
	}
	for _, u := range users {
		s.Users[u.ID] = u
	}
	return s
}
