package handler

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/api/respond"
)

// CheckPrayerTimes is the cron trigger: it authenticates the caller,
// verifies messaging is configured, and runs one notification check pass
// over all users. Individual user failures are logged server-side only;
// the caller sees overall success with the list of fired reminders.
func (h *Handler) CheckPrayerTimes(w http.ResponseWriter, r *http.Request) {
	if h.cfg.CronSecret == "" {
		respond.WriteError(w, http.StatusInternalServerError, "NOT_CONFIGURED",
			"CRON_SECRET is not configured")
		return
	}
	secret := r.Header.Get(CronSecretHeader)
	if subtle.ConstantTimeCompare([]byte(secret), []byte(h.cfg.CronSecret)) != 1 {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED",
			"Invalid or missing cron secret")
		return
	}
	if h.sender == nil {
		respond.WriteError(w, http.StatusInternalServerError, "NOT_CONFIGURED",
			"Messaging credentials are not configured")
		return
	}

	result, err := h.runner.Run(r.Context(), time.Now().UTC())
	if err != nil {
		h.logger.Error("check run failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "RUN_FAILED",
			"Notification check run failed")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"run_id":   result.RunID,
		"notified": result.Notified,
	})
}
