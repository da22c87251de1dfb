package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceStatus string

const (
	ServiceStatusScheduled ServiceStatus = "scheduled"
	ServiceStatusCompleted ServiceStatus = "completed"
	ServiceStatusCancelled ServiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type PaymentMethod string

const (
	PaymentMethodCard PaymentMethod = "card"
	PaymentMethodCash PaymentMethod = "cash"
)

// Booking is one scheduled service appointment.
type Booking struct {
	ID                string              `json:"id"`
	CustomerID        *int32              `json:"customer_id,omitempty"`
	CustomerName      string              `json:"customer_name"`
	CustomerEmail     string              `json:"customer_email,omitempty"`
	CustomerPhone     string              `json:"customer_phone,omitempty"`
	StaffID           int32               `json:"staff_id"`
	ServiceName       string              `json:"service_name"`
	ScheduledAt       time.Time           `json:"scheduled_at"`
	Price             decimal.Decimal     `json:"price"`
	Currency          string              `json:"currency"`
	ServiceStatus     ServiceStatus       `json:"service_status"`
	PaymentStatus     PaymentStatus       `json:"payment_status"`
	PaymentMethod     PaymentMethod       `json:"payment_method,omitempty"`
	PaymentReference  *string             `json:"payment_reference,omitempty"`
	InvoiceNumber     *string             `json:"invoice_number,omitempty"`
	PaymentReceivedAt *time.Time          `json:"payment_received_at,omitempty"`
	PaymentAmount     decimal.NullDecimal `json:"payment_amount"`
	Notes             string              `json:"notes,omitempty"`
	CancelledAt       *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

// CanReschedule reports whether the appointment time may still move.
func (b *Booking) CanReschedule() error {
	if b.ServiceStatus != ServiceStatusScheduled {
		return NewTransitionError("reschedule", b)
	}
	return nil
}

func (b *Booking) CanComplete() error {
	if b.ServiceStatus != ServiceStatusScheduled {
		return NewTransitionError("complete", b)
	}
	return nil
}

// CanCancel allows scheduled bookings, and completed ones whose payment never
// went through. A completed and paid booking has to be refunded instead.
func (b *Booking) CanCancel() error {
	switch b.ServiceStatus {
	case ServiceStatusScheduled:
		return nil
	case ServiceStatusCompleted:
		if b.PaymentStatus == PaymentStatusPending || b.PaymentStatus == PaymentStatusFailed {
			return nil
		}
	}
	return NewTransitionError("cancel", b)
}

// CanAcceptPayment reports whether a payment may move the booking to paid.
func (b *Booking) CanAcceptPayment() error {
	if b.ServiceStatus == ServiceStatusCancelled {
		return NewTransitionError("pay", b)
	}
	if b.PaymentStatus != PaymentStatusPending && b.PaymentStatus != PaymentStatusFailed {
		return NewTransitionError("pay", b)
	}
	return nil
}

// CanFail reports whether a declined payment may be recorded. Cancelled
// bookings only move on to refunded.
func (b *Booking) CanFail() error {
	if b.ServiceStatus == ServiceStatusCancelled || b.PaymentStatus != PaymentStatusPending {
		return NewTransitionError("fail", b)
	}
	return nil
}

func (b *Booking) CanRefund() error {
	if b.PaymentStatus != PaymentStatusPaid {
		return NewTransitionError("refund", b)
	}
	return nil
}

// CanDelete is true only while no payment has been initiated; everything
// else is kept for the audit trail and soft-cancelled.
func (b *Booking) CanDelete() bool {
	return b.PaymentStatus == PaymentStatusPending
}

// CanEditPrice reports whether the price may still change.
func (b *Booking) CanEditPrice() bool {
	return b.PaymentStatus == PaymentStatusPending && b.ServiceStatus != ServiceStatusCancelled
}

// PaidWith reports whether the booking is paid under the given processor reference.
func (b *Booking) PaidWith(reference string) bool {
	return b.PaymentStatus == PaymentStatusPaid &&
		b.PaymentReference != nil &&
		*b.PaymentReference == reference
}

// NewBooking is the input for scheduling a booking.
type NewBooking struct {
	CustomerID    *int32          `json:"customer_id"`
	CustomerName  string          `json:"customer_name" validate:"required,max=200"`
	CustomerEmail string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone string          `json:"customer_phone" validate:"omitempty,e164"`
	StaffID       int32           `json:"staff_id" validate:"required,gt=0"`
	ServiceName   string          `json:"service_name" validate:"required,max=200"`
	ScheduledAt   time.Time       `json:"scheduled_at" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency" validate:"omitempty,len=3"`
	Notes         string          `json:"notes" validate:"max=2000"`
}

// BookingPatch is a partial update from staff. Nil fields are left alone and
// payment columns are not part of it.
type BookingPatch struct {
	CustomerName  *string          `json:"customer_name" validate:"omitempty,max=200"`
	CustomerEmail *string          `json:"customer_email" validate:"omitempty,email"`
	CustomerPhone *string          `json:"customer_phone" validate:"omitempty,e164"`
	StaffID       *int32           `json:"staff_id" validate:"omitempty,gt=0"`
	ServiceName   *string          `json:"service_name" validate:"omitempty,max=200"`
	Price         *decimal.Decimal `json:"price"`
	Notes         *string          `json:"notes" validate:"omitempty,max=2000"`
}

func (p BookingPatch) IsEmpty() bool {
	return p.CustomerName == nil && p.CustomerEmail == nil && p.CustomerPhone == nil &&
		p.StaffID == nil && p.ServiceName == nil && p.Price == nil && p.Notes == nil
}

// BookingFilter narrows a booking listing. Zero values mean "any".
type BookingFilter struct {
	ServiceStatuses []ServiceStatus
	PaymentStatuses []PaymentStatus
	From            *time.Time // scheduled_at >= From
	To              *time.Time // scheduled_at < To
	CustomerID      *int32
	CustomerQuery   string // case-insensitive match on name, email or phone
	StaffID         *int32
	Page            int32
	PageSize        int32
}

// PaymentUpdate carries the columns written when a booking becomes paid.
type PaymentUpdate struct {
	Reference  string
	Amount     decimal.Decimal
	ReceivedAt time.Time
	Method     PaymentMethod
}
