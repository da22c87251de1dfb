package domain

import (
	"encoding/json"
	"errors"
	"regexp"
	"time"
)

type MessageKind string

const (
	KindBookingCreated       MessageKind = "booking_created"
	KindCustomerConfirmation MessageKind = "customer_confirmation"
	KindPaymentConfirmed     MessageKind = "payment_confirmed"
	KindPaymentReceipt       MessageKind = "payment_receipt"
	KindPaymentFailed        MessageKind = "payment_failed"
	KindRefundIssued         MessageKind = "refund_issued"
	KindAppointmentReminder  MessageKind = "appointment_reminder"
	KindUnmatchedDigest      MessageKind = "unmatched_payment_digest"
	KindDirect               MessageKind = "direct"
)

// CustomerFacing reports whether messages of this kind are addressed to a
// customer rather than to staff. Direct sends are treated as customer facing.
func (k MessageKind) CustomerFacing() bool {
	switch k {
	case KindCustomerConfirmation, KindPaymentReceipt, KindAppointmentReminder, KindDirect, "":
		return true
	}
	return false
}

// Recipients accepts either a single address or a list in JSON.
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one == "" {
			*r = nil
		} else {
			*r = Recipients{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("to must be a string or an array of strings")
	}
	*r = many
	return nil
}

// Message is one rendered notification.
type Message struct {
	Kind         MessageKind `json:"kind"`
	To           Recipients  `json:"to"`
	Phones       []string    `json:"phones,omitempty"`
	Subject      string      `json:"subject"`
	HTML         string      `json:"html"`
	Text         string      `json:"text,omitempty"`
	BookingID    string      `json:"booking_id,omitempty"`
	CustomerName string      `json:"customer_name,omitempty"`
	Preview      bool        `json:"preview,omitempty"`
}

// customerReference matches booking ids and PREFIX-YYYYMMDD-NNNN invoice numbers.
var customerReference = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b|\b[a-z][a-z0-9]*-\d{8}-\d{4}\b`)

// ReferencesCustomer reports whether the content is about a specific
// customer or booking. Hand-written messages are scanned for booking ids
// and invoice numbers.
func (m *Message) ReferencesCustomer() bool {
	if m.BookingID != "" || m.CustomerName != "" {
		return true
	}
	return customerReference.MatchString(m.Subject) ||
		customerReference.MatchString(m.HTML) ||
		customerReference.MatchString(m.Text)
}

// DeliveryResult is what Dispatch reports back. It never carries an error.
type DeliveryResult struct {
	Success     bool     `json:"success"`
	ChannelUsed string   `json:"channel_used"`
	Warning     string   `json:"warning,omitempty"`
	Rendered    *Message `json:"rendered,omitempty"`
}

// NotificationFailure is a message that no channel could deliver, kept for
// manual resend.
type NotificationFailure struct {
	ID         int64           `json:"id"`
	Kind       MessageKind     `json:"kind"`
	Recipients []string        `json:"recipients"`
	Subject    string          `json:"subject"`
	BookingID  string          `json:"booking_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	LastError  string          `json:"last_error"`
	CreatedAt  time.Time       `json:"created_at"`
	ResentAt   *time.Time      `json:"resent_at,omitempty"`
}

// Message decodes the stored payload back into a sendable message.
func (f *NotificationFailure) Message() (*Message, error) {
	var m Message
	if err := json.Unmarshal(f.Payload, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
