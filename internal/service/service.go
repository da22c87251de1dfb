package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"shopbooking-backend/internal/domain"
)

type BookingService interface {
	CreateBooking(ctx context.Context, in domain.NewBooking) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)
	UpdateDetails(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error)
	Reschedule(ctx context.Context, id string, scheduledAt time.Time) (*domain.Booking, error)
	MarkCompleted(ctx context.Context, id string) (*domain.Booking, error)
	Cancel(ctx context.Context, id string) (*domain.Booking, error)
	// DeleteBooking removes a booking outright while its payment is pending
	// and soft-cancels it otherwise. deleted reports which happened.
	DeleteBooking(ctx context.Context, id string) (deleted bool, b *domain.Booking, err error)
	RecordCashPayment(ctx context.Context, id string, amount decimal.Decimal) (*domain.Booking, error)
	Refund(ctx context.Context, id string) (*domain.Booking, error)
}

type ReconciliationService interface {
	HandleEvent(ctx context.Context, evt *domain.PaymentEvent, raw []byte) (*domain.ReconcileResult, error)
	// RollForward creates missing transactions for paid bookings and
	// returns how many it created.
	RollForward(ctx context.Context, limit int) (int, error)
}

type EarningsService interface {
	Summary(ctx context.Context, staffID *int32, start, end time.Time) (*domain.PeriodSummary, error)
	PeriodSummary(ctx context.Context, staffID *int32, period domain.Period) (*domain.PeriodSummary, error)
	Dashboard(ctx context.Context, staffID *int32) (*domain.Dashboard, error)
}

type PaymentLinkService interface {
	CreateLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error)
	// CreateBookingLink assigns the booking an invoice number if it has none
	// and requests a link for its price.
	CreateBookingLink(ctx context.Context, bookingID string) (*domain.PaymentLink, error)
}

type NotificationService interface {
	Send(ctx context.Context, req SendRequest) (*domain.DeliveryResult, error)
	ListFailures(ctx context.Context, limit int) ([]domain.NotificationFailure, error)
	Resend(ctx context.Context, id int64) (*domain.DeliveryResult, error)
}

// ReminderService and DigestService back the scheduled jobs.
type ReminderService interface {
	SendAppointmentReminders(ctx context.Context) (int, error)
}

type DigestService interface {
	SendUnmatchedPaymentDigest(ctx context.Context, since time.Time) (int, error)
}

// Notifier is satisfied by *notification.Dispatcher.
type Notifier interface {
	Dispatch(ctx context.Context, msg *domain.Message) domain.DeliveryResult
	DispatchAsync(ctx context.Context, msg *domain.Message)
}

// SendRequest is an ad-hoc notification from staff.
type SendRequest struct {
	To           domain.Recipients `json:"to" validate:"required,min=1,dive,email"`
	Subject      string            `json:"subject" validate:"required,max=255"`
	HTML         string            `json:"html" validate:"required"`
	Preview      bool              `json:"preview"`
	BookingID    string            `json:"booking_id" validate:"omitempty,max=64"`
	CustomerName string            `json:"customer_name" validate:"omitempty,max=200"`
}
