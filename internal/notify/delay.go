package notify

import (
	"context"
	"fmt"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/prayer"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/store"
)

// checkPartnerDelay alerts a user's accountability partner when a prayer is
// still unmarked inside the delay window. The dedup flag lives on the
// partner's document, keyed by the late user, the prayer and the date, so
// the alert is independent of the main reminder's dedup state.
func (e *Evaluator) checkPartnerDelay(ctx context.Context, u store.User, prayerName string, targetMin int, date string, nowMin int, snap *Snapshot) {
	if !prayer.InWindow(nowMin, targetMin, e.win.DelayWindowMin, e.win.DelayOffsetMin) {
		return
	}
	if u.MarkedDone(date, prayerName) {
		return
	}
	if u.PairID == "" {
		return
	}

	pair, ok := snap.Pairs[u.PairID]
	if !ok {
		return
	}
	partnerID := pair.PartnerOf(u.ID)
	if partnerID == "" {
		return
	}
	partner, ok := snap.Users[partnerID]
	if !ok || partner.FCMToken == "" {
		return
	}

	who := u.Name
	if who == "" {
		who = "Your partner"
	}
	e.fireOnce(ctx, partnerID, store.DelayFlag(u.ID, prayerName, date), partner.FCMToken,
		fmt.Sprintf("%s reminder", prayerName),
		fmt.Sprintf("%s hasn't marked %s yet. Check in on them!", who, prayerName),
		delayOpts)
}
