package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentEventType string

const (
	PaymentEventSucceeded PaymentEventType = "succeeded"
	PaymentEventFailed    PaymentEventType = "failed"
)

type PaymentMetadata struct {
	InvoiceNumber string `json:"invoice_number,omitempty"`
	BookingID     string `json:"booking_id,omitempty"`
}

// PaymentEvent is a verified webhook delivery from the processor.
type PaymentEvent struct {
	Type        PaymentEventType `json:"type"`
	Reference   string           `json:"reference"`
	AmountMinor int64            `json:"amount_minor"`
	FeeMinor    int64            `json:"fee_minor,omitempty"`
	Currency    string           `json:"currency"`
	Metadata    PaymentMetadata  `json:"metadata"`
}

// NetAmount is the event amount less the processing fee the processor reported.
func (e *PaymentEvent) NetAmount() decimal.Decimal {
	return AmountFromMinor(e.AmountMinor - e.FeeMinor)
}

func (e *PaymentEvent) Validate() error {
	var errs ValidationErrors
	switch e.Type {
	case PaymentEventSucceeded, PaymentEventFailed:
	default:
		errs = append(errs, ValidationError{Field: "type", Message: "must be succeeded or failed"})
	}
	if strings.TrimSpace(e.Reference) == "" {
		errs = append(errs, ValidationError{Field: "reference", Message: "is required"})
	}
	if e.FeeMinor < 0 {
		errs = append(errs, ValidationError{Field: "fee_minor", Message: "must not be negative"})
	}
	if e.Type == PaymentEventSucceeded && e.AmountMinor-e.FeeMinor <= 0 {
		errs = append(errs, ValidationError{Field: "amount_minor", Message: "must exceed the processing fee"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReconcileOutcome string

const (
	OutcomeApplied   ReconcileOutcome = "applied"
	OutcomeDuplicate ReconcileOutcome = "duplicate"
	OutcomeNotFound  ReconcileOutcome = "not_found"
	OutcomeIgnored   ReconcileOutcome = "ignored"
	OutcomeFailed    ReconcileOutcome = "payment_failed"
)

type ReconcileResult struct {
	Outcome            ReconcileOutcome `json:"outcome"`
	BookingID          string           `json:"booking_id,omitempty"`
	TransactionCreated bool             `json:"transaction_created"`
}

// PaymentDiagnostic records an event that could not be applied.
type PaymentDiagnostic struct {
	ID            int64            `json:"id"`
	EventType     PaymentEventType `json:"event_type"`
	Reference     string           `json:"reference"`
	AmountMinor   int64            `json:"amount_minor"`
	Currency      string           `json:"currency"`
	InvoiceNumber string           `json:"invoice_number,omitempty"`
	BookingID     string           `json:"booking_id,omitempty"`
	Reason        string           `json:"reason"`
	RawPayload    []byte           `json:"-"`
	CreatedAt     time.Time        `json:"created_at"`
}

// PaymentLinkRequest asks the processor for a hosted payment page.
type PaymentLinkRequest struct {
	AmountMinor   int64  `json:"amount_minor" validate:"gt=0"`
	Currency      string `json:"currency" validate:"required,len=3"`
	Description   string `json:"description" validate:"required,max=255"`
	InvoiceNumber string `json:"invoice_number" validate:"required,max=64"`
	CustomerName  string `json:"customer_name" validate:"max=200"`
	BookingID     string `json:"booking_id,omitempty"`
}

type PaymentLink struct {
	URL           string `json:"url"`
	ReferenceID   string `json:"reference_id"`
	InvoiceNumber string `json:"invoice_number,omitempty"`
}
