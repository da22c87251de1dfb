package http

import (
	"net/http"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/service"
)

type PaymentHandler struct {
	links service.PaymentLinkService
}

func NewPaymentHandler(links service.PaymentLinkService) *PaymentHandler {
	return &PaymentHandler{links: links}
}

// CreateLink creates a hosted payment page that is not tied to a booking.
func (h *PaymentHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	link, err := h.links.CreateLink(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}
