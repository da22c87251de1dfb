package http

import (
	"io"
	"net/http"

	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/payment"
	"shopbooking-backend/internal/service"
)

// maxWebhookBody caps what we read from the processor.
const maxWebhookBody = 1 << 20

type WebhookHandler struct {
	verifier   *payment.Verifier
	reconciler service.ReconciliationService
}

func NewWebhookHandler(verifier *payment.Verifier, reconciler service.ReconciliationService) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, reconciler: reconciler}
}

// HandlePayment verifies the signature over the raw body before anything is
// parsed. Every outcome except a store failure is a 200 so the processor
// stops redelivering.
func (h *WebhookHandler) HandlePayment(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, r, badRequest("body", "could not read request body"))
		return
	}

	if err := h.verifier.Verify(r.Header.Get(payment.SignatureHeader), body); err != nil {
		logger.Warn("Rejected payment webhook", "error", err, "remote_addr", r.RemoteAddr)
		writeError(w, r, err)
		return
	}

	evt, err := payment.ParseEvent(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.reconciler.HandleEvent(r.Context(), evt, body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
