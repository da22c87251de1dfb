package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/service"
)

type EarningsHandler struct {
	earnings service.EarningsService
	loc      *time.Location
}

func NewEarningsHandler(earnings service.EarningsService, loc *time.Location) *EarningsHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &EarningsHandler{earnings: earnings, loc: loc}
}

// Summary covers an arbitrary [start, end) range.
func (h *EarningsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	staffID, err := queryInt32(r, "staff_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, err := queryTime(r, "start", h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryTime(r, "end", h.loc)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if start == nil || end == nil {
		writeError(w, r, badRequest("range", "start and end are required"))
		return
	}

	s, err := h.earnings.Summary(r.Context(), staffID, *start, *end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *EarningsHandler) Period(w http.ResponseWriter, r *http.Request) {
	period, err := domain.ParsePeriod(mux.Vars(r)["period"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	staffID, err := queryInt32(r, "staff_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	s, err := h.earnings.PeriodSummary(r.Context(), staffID, period)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *EarningsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	staffID, err := queryInt32(r, "staff_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := h.earnings.Dashboard(r.Context(), staffID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
