package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/prayer"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/tzcache"
)

// Delivery hints per event kind. The channel ids match the PWA's
// registered notification channels.
var (
	prayerOpts = messaging.Options{
		Sound:     "default",
		ChannelID: "prayer_reminders",
		Icon:      "ic_notification",
		Link:      "/tracker",
	}
	quranOpts = messaging.Options{
		Sound:     "default",
		ChannelID: "quran_reminders",
		Icon:      "ic_notification",
		Link:      "/quran",
	}
	delayOpts = messaging.Options{
		Sound:     "default",
		ChannelID: "partner_alerts",
		Icon:      "ic_notification",
		Link:      "/partner",
	}
)

// Evaluator decides, for one user and one instant, which notification
// events are due and fires each at most once per day.
type Evaluator struct {
	store  store.Store
	sender messaging.Sender
	zones  *tzcache.Cache
	win    Windows
	logger *slog.Logger
}

// NewEvaluator wires the evaluator's collaborators.
func NewEvaluator(st store.Store, sender messaging.Sender, zones *tzcache.Cache, win Windows, logger *slog.Logger) *Evaluator {
	return &Evaluator{store: st, sender: sender, zones: zones, win: win, logger: logger}
}

// EvaluateUser runs all event checks for one user at "now" (a UTC instant)
// and returns the main prayer reminders that fired. Users without a device
// token or timezone are skipped silently; a timezone that fails to resolve
// skips the user with a logged diagnostic. Delivery and flag-write failures
// are logged per event and never abort the rest of the user's events.
func (e *Evaluator) EvaluateUser(ctx context.Context, u store.User, now time.Time, snap *Snapshot) []Notified {
	if u.FCMToken == "" || u.Timezone == "" {
		return nil
	}

	loc, err := e.zones.Load(u.Timezone)
	if err != nil {
		e.logger.Warn("skipping user: timezone did not resolve",
			"uid", u.ID, "timezone", u.Timezone, "error", err)
		return nil
	}

	local := now.In(loc)
	date := prayer.DateKey(local)
	nowMin := local.Hour()*60 + local.Minute()

	// Quran nudge is independent of the prayer schedule.
	if prayer.InWindow(nowMin, e.win.QuranStartMin, e.win.QuranWindowMin, 0) {
		e.fireOnce(ctx, u.ID, store.QuranFlag(date), u.FCMToken,
			"Quran Reading Time \U0001F4D6",
			"Take a few minutes to read Quran before bed.",
			quranOpts)
	}

	sched := u.ScheduleFor(date)
	if sched == nil {
		return nil
	}

	var notified []Notified
	for _, name := range prayer.Names {
		at, ok := sched[name]
		if !ok {
			continue
		}
		targetMin, err := prayer.ParseClock(at)
		if err != nil {
			e.logger.Warn("unparseable scheduled time",
				"uid", u.ID, "prayer", name, "time", at, "error", err)
			continue
		}

		// Main due reminder.
		if prayer.InWindow(nowMin, targetMin, e.win.PrayerWindowMin, 0) {
			fired := e.fireOnce(ctx, u.ID, store.PrayerFlag(name, date), u.FCMToken,
				fmt.Sprintf("Time for %s", name),
				fmt.Sprintf("It's time to pray %s. May Allah accept your prayers.", name),
				prayerOpts)
			if fired {
				notified = append(notified, Notified{UID: u.ID, Prayer: name})
			}
		}

		// Partner delay alert, evaluated unconditionally alongside the
		// main reminder and deduplicated independently of it.
		e.checkPartnerDelay(ctx, u, name, targetMin, date, nowMin, snap)
	}
	return notified
}

// fireOnce performs the dedup check → dispatch → dedup write sequence for
// one event on one user's document. Returns true only when a message was
// dispatched. A delivery failure leaves the flag unset so the next run
// retries; a flag-write failure after a successful send risks one duplicate
// next run.
func (e *Evaluator) fireOnce(ctx context.Context, uid string, key store.FlagKey, token, title, body string, opts messaging.Options) bool {
	set, err := e.store.FlagExists(ctx, uid, key)
	if err != nil {
		e.logger.Warn("dedup check failed, skipping event",
			"uid", uid, "flag", key.String(), "error", err)
		return false
	}
	if set {
		return false
	}

	if _, err := e.sender.Send(ctx, token, title, body, opts); err != nil {
		e.logger.Warn("push delivery failed",
			"uid", uid, "flag", key.String(), "error", err)
		return false
	}

	if err := e.store.SetFlag(ctx, uid, key); err != nil {
		e.logger.Warn("dedup flag write failed after send",
			"uid", uid, "flag", key.String(), "error", err)
	}
	return true
}
