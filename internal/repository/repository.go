package repository

import (
	"context"
	"time"

	"shopbooking-backend/internal/domain"
)

// BookingRepository owns the bookings table. Every state change is a
// conditional write: the bool result reports whether the row was in an
// allowed source state and got updated.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	// GetByInvoiceNumber returns the most recent non-cancelled booking that
	// carries the invoice number, falling back to cancelled ones.
	GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error)

	UpdateDetails(ctx context.Context, id string, patch domain.BookingPatch) (bool, error)
	Reschedule(ctx context.Context, id string, scheduledAt time.Time) (bool, error)
	MarkCompleted(ctx context.Context, id string) (bool, error)
	Cancel(ctx context.Context, id string, at time.Time) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) (bool, error)

	MarkPaid(ctx context.Context, id string, p domain.PaymentUpdate) (bool, error)
	MarkPaymentFailed(ctx context.Context, id string) (bool, error)
	MarkRefunded(ctx context.Context, id string) (bool, error)

	ListPaidWithoutTransaction(ctx context.Context, limit int) ([]domain.Booking, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// TransactionRepository stores one transaction per booking.
type TransactionRepository interface {
	// CreateIfAbsent inserts unless a row for the booking already exists.
	// created is false on the no-op path; that is not an error.
	CreateIfAbsent(ctx context.Context, t *domain.Transaction) (created bool, err error)
	GetByBookingID(ctx context.Context, bookingID string) (*domain.Transaction, error)
	List(ctx context.Context, filter domain.TransactionFilter) ([]domain.Transaction, error)
	MarkRefunded(ctx context.Context, bookingID string) (bool, error)
}

// StaffRepository is read-only.
type StaffRepository interface {
	GetByID(ctx context.Context, id int32) (*domain.Staff, error)
	ListActive(ctx context.Context) ([]domain.Staff, error)
}

type NotificationFailureRepository interface {
	Create(ctx context.Context, f *domain.NotificationFailure) error
	GetByID(ctx context.Context, id int64) (*domain.NotificationFailure, error)
	ListPending(ctx context.Context, limit int) ([]domain.NotificationFailure, error)
	MarkResent(ctx context.Context, id int64, at time.Time) error
}

type PaymentDiagnosticRepository interface {
	Create(ctx context.Context, d *domain.PaymentDiagnostic) error
	ListSince(ctx context.Context, since time.Time) ([]domain.PaymentDiagnostic, error)
}
