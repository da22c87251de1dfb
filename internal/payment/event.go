package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"shopbooking-backend/internal/domain"
)

// ParseEvent decodes and validates a verified webhook body.
func ParseEvent(body []byte) (*domain.PaymentEvent, error) {
	var evt domain.PaymentEvent
	dec := json.NewDecoder(bytes.NewReader(body))
	if err := dec.Decode(&evt); err != nil {
		return nil, domain.ValidationError{Field: "body", Message: fmt.Sprintf("invalid json: %v", err)}
	}
	evt.Currency = strings.ToLower(evt.Currency)
	evt.Metadata.BookingID = strings.TrimSpace(evt.Metadata.BookingID)
	evt.Metadata.InvoiceNumber = strings.TrimSpace(evt.Metadata.InvoiceNumber)
	if err := evt.Validate(); err != nil {
		return nil, err
	}
	return &evt, nil
}
