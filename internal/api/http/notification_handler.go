package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/service"
)

type NotificationHandler struct {
	notifications service.NotificationService
}

func NewNotificationHandler(notifications service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Send always answers 200 once the request is valid; delivery problems are
// reported in the body.
func (h *NotificationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.SendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.notifications.Send(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *NotificationHandler) ListFailures(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, badRequest("limit", "must be an integer"))
			return
		}
		limit = n
	}
	failures, err := h.notifications.ListFailures(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if failures == nil {
		failures = []domain.NotificationFailure{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"failures": failures})
}

func (h *NotificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, r, badRequest("id", "must be an integer"))
		return
	}
	res, err := h.notifications.Resend(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
