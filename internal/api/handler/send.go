package handler

import (
	"encoding/json"
	"net/http"

	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/api/respond"
	"github.com/Hasnain4700/salah-tracker-app-sub000/internal/messaging"
)

type sendRequest struct {
	Token string `json:"token"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// SendNotification delivers one ad-hoc push message to one device token.
func (h *Handler) SendNotification(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.WriteError(w, http.StatusInternalServerError, "NOT_CONFIGURED",
			"Messaging credentials are not configured")
		return
	}

	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteError(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body")
		return
	}
	if req.Token == "" || req.Title == "" || req.Body == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_FIELDS",
			"token, title and body are all required")
		return
	}

	id, err := h.sender.Send(r.Context(), req.Token, req.Title, req.Body, messaging.Options{
		Sound: "default",
		Icon:  "ic_notification",
	})
	if err != nil {
		h.logger.Warn("manual send failed", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DELIVERY_FAILED",
			"Push provider rejected the message")
		return
	}

	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message_id": id,
	})
}

// SendWeeklyReminder broadcasts the weekly donation reminder to the
// configured topic. No request body, no dedup state: the external
// scheduler's weekly cadence is the only rate control.
func (h *Handler) SendWeeklyReminder(w http.ResponseWriter, r *http.Request) {
	if h.sender == nil {
		respond.WriteError(w, http.StatusInternalServerError, "NOT_CONFIGURED",
			"Messaging credentials are not configured")
		return
	}

	id, err := h.sender.SendToTopic(r.Context(), h.cfg.WeeklyTopic,
		"Weekly Sadaqah Reminder",
		"A small donation every week adds up. Give what you can today.")
	if err != nil {
		h.logger.Warn("weekly reminder send failed", "topic", h.cfg.WeeklyTopic, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "DELIVERY_FAILED",
			"Push provider rejected the message")
		return
	}

	h.logger.Info("weekly reminder sent", "topic", h.cfg.WeeklyTopic, "message_id", id)
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"message_id": id,
	})
}
