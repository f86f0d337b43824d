// Package prayer provides the prayer-time vocabulary and the pure
// time-window matching used by the notification evaluator.
package prayer

import (
	"fmt"
	"time"
)

// Names lists the five daily prayers in canonical evaluation order.
var Names = []string{"Fajr", "Dhuhr", "Asr", "Maghrib", "Isha"}

// Valid reports whether name is one of the five daily prayers.
func Valid(name string) bool {
	for _, n := range Names {
		if n == name {
			return true
		}
	}
	return false
}

// DateKey formats t as the YYYY-MM-DD key used by schedules, completion
// logs and dedup flags.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// ClockOf formats t as the HH:MM wall-clock string schedules use.
func ClockOf(t time.Time) string {
	return t.Format("15:04")
}

// ParseClock converts an "HH:MM" string to minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// InWindow reports whether nowMin falls inside the firing window
// [target+offset, target+offset+window), all in minutes since midnight.
// Windows do not wrap across midnight: a target near 23:55 with a window
// reaching past 00:00 never matches an early-morning "now".
func InWindow(nowMin, targetMin, windowMin, offsetMin int) bool {
	start := targetMin + offsetMin
	return nowMin >= start && nowMin < start+windowMin
}
