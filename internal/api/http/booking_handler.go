package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/service"
)

type BookingHandler struct {
	bookings service.BookingService
	links    service.PaymentLinkService
	loc      *time.Location
}

func NewBookingHandler(bookings service.BookingService, links service.PaymentLinkService, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{bookings: bookings, links: links, loc: loc}
}

type listBookingsResponse struct {
	Bookings []domain.Booking `json:"bookings"`
	Total    int32            `json:"total"`
}

type deleteBookingResponse struct {
	Deleted bool            `json:"deleted"`
	Booking *domain.Booking `json:"booking,omitempty"`
}

type rescheduleRequest struct {
	ScheduledAt time.Time `json:"scheduled_at"`
}

type cashPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in domain.NewBooking
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.CreateBooking(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.GetBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	bookings, total, err := h.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	writeJSON(w, http.StatusOK, listBookingsResponse{Bookings: bookings, Total: total})
}

func (h *BookingHandler) parseFilter(r *http.Request) (domain.BookingFilter, error) {
	var f domain.BookingFilter
	for _, s := range queryList(r, "service_status") {
		f.ServiceStatuses = append(f.ServiceStatuses, domain.ServiceStatus(s))
	}
	for _, s := range queryList(r, "payment_status") {
		f.PaymentStatuses = append(f.PaymentStatuses, domain.PaymentStatus(s))
	}
	var err error
	if f.From, err = queryTime(r, "from", h.loc); err != nil {
		return f, err
	}
	if f.To, err = queryTime(r, "to", h.loc); err != nil {
		return f, err
	}
	if f.CustomerID, err = queryInt32(r, "customer_id"); err != nil {
		return f, err
	}
	if f.StaffID, err = queryInt32(r, "staff_id"); err != nil {
		return f, err
	}
	f.CustomerQuery = r.URL.Query().Get("q")

	page, err := queryInt32(r, "page")
	if err != nil {
		return f, err
	}
	if page != nil {
		f.Page = *page
	}
	size, err := queryInt32(r, "page_size")
	if err != nil {
		return f, err
	}
	if size != nil {
		f.PageSize = *size
	}
	return f, nil
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch domain.BookingPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.UpdateDetails(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, b, err := h.bookings.DeleteBooking(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteBookingResponse{Deleted: deleted, Booking: b})
}

func (h *BookingHandler) Reschedule(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.Reschedule(r.Context(), mux.Vars(r)["id"], req.ScheduledAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.MarkCompleted)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.Cancel)
}

func (h *BookingHandler) Refund(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.Refund)
}

func (h *BookingHandler) CashPayment(w http.ResponseWriter, r *http.Request) {
	var req cashPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	b, err := h.bookings.RecordCashPayment(r.Context(), mux.Vars(r)["id"], req.Amount)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingHandler) PaymentLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.links.CreateBookingLink(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (*domain.Booking, error)) {
	b, err := op(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}
