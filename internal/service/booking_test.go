package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/notification"
)

type bookingFixture struct {
	db       *memDB
	notifier *recordingNotifier
	svc      *bookingService
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := newMemDB()
	db.putStaff(domain.Staff{ID: 7, Name: "Mai", Email: "mai@shop.test", CommissionRate: decimal.NewFromInt(50), Active: true})
	n := &recordingNotifier{}
	svc := NewBookingService(memBookings{db}, memTxns{db}, memStaff{db}, n,
		notification.NewTemplates("Salon Nine", "front@shop.test", time.UTC), "thb").(*bookingService)
	svc.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return &bookingFixture{db: db, notifier: n, svc: svc}
}

func newBookingInput() domain.NewBooking {
	return domain.NewBooking{
		CustomerName:  "Dana",
		CustomerEmail: "dana@example.com",
		StaffID:       7,
		ServiceName:   "Cut",
		ScheduledAt:   time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		Price:         decimal.RequireFromString("450.005"),
	}
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(t)
		b, err := f.svc.CreateBooking(ctx, newBookingInput())
		require.NoError(t, err)

		assert.NotEmpty(t, b.ID)
		assert.Equal(t, domain.ServiceStatusScheduled, b.ServiceStatus)
		assert.Equal(t, domain.PaymentStatusPending, b.PaymentStatus)
		assert.Equal(t, "thb", b.Currency)
		assert.Equal(t, "450.01", b.Price.StringFixed(2))
		assert.Equal(t, b.ID, f.db.booking(b.ID).ID)
		assert.Equal(t, []domain.MessageKind{domain.KindBookingCreated, domain.KindCustomerConfirmation}, f.notifier.kinds())
	})

	t.Run("Currency Lowercased", func(t *testing.T) {
		f := newBookingFixture(t)
		in := newBookingInput()
		in.Currency = "USD"
		b, err := f.svc.CreateBooking(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "usd", b.Currency)
	})

	t.Run("Validation", func(t *testing.T) {
		f := newBookingFixture(t)
		in := newBookingInput()
		in.CustomerName = ""
		in.CustomerEmail = "not-an-email"

		_, err := f.svc.CreateBooking(ctx, in)
		var vErrs domain.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		fields := []string{}
		for _, e := range vErrs {
			fields = append(fields, e.Field)
		}
		assert.ElementsMatch(t, []string{"customer_name", "customer_email"}, fields)
		assert.Empty(t, f.notifier.kinds())
	})

	t.Run("Negative Price", func(t *testing.T) {
		f := newBookingFixture(t)
		in := newBookingInput()
		in.Price = decimal.NewFromInt(-1)
		_, err := f.svc.CreateBooking(ctx, in)
		var vErrs domain.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		assert.Equal(t, "price", vErrs[0].Field)
	})

	t.Run("Unknown Staff", func(t *testing.T) {
		f := newBookingFixture(t)
		in := newBookingInput()
		in.StaffID = 99
		_, err := f.svc.CreateBooking(ctx, in)
		var vErrs domain.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		assert.Equal(t, "staff_id", vErrs[0].Field)
	})

	t.Run("No Customer Contact", func(t *testing.T) {
		f := newBookingFixture(t)
		in := newBookingInput()
		in.CustomerEmail = ""
		_, err := f.svc.CreateBooking(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, []domain.MessageKind{domain.KindBookingCreated}, f.notifier.kinds())
	})
}

func (f *bookingFixture) scheduled(t *testing.T) *domain.Booking {
	t.Helper()
	b, err := f.svc.CreateBooking(context.Background(), newBookingInput())
	require.NoError(t, err)
	return b
}

func TestBookingService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	b := f.scheduled(t)

	at := time.Date(2026, 3, 6, 11, 0, 0, 0, time.UTC)
	moved, err := f.svc.Reschedule(ctx, b.ID, at)
	require.NoError(t, err)
	assert.True(t, moved.ScheduledAt.Equal(at))

	done, err := f.svc.MarkCompleted(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCompleted, done.ServiceStatus)

	_, err = f.svc.Reschedule(ctx, b.ID, at.Add(time.Hour))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.MarkCompleted(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Completed and unpaid can still be called off.
	cancelled, err := f.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceStatusCancelled, cancelled.ServiceStatus)
	require.NotNil(t, cancelled.CancelledAt)

	_, err = f.svc.Cancel(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestBookingService_CancelPaidIsRefused(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	b := f.scheduled(t)

	_, err := f.svc.MarkCompleted(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(450))
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, b.ID)
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "cancel", te.Op)
	assert.Equal(t, domain.PaymentStatusPaid, te.PaymentStatus)
}

func TestBookingService_RecordCashPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)

		paid, err := f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, paid.PaymentStatus)
		assert.Equal(t, domain.PaymentMethodCash, paid.PaymentMethod)
		require.NotNil(t, paid.PaymentReference)
		assert.Regexp(t, `^cash-`, *paid.PaymentReference)

		txn, err := memTxns{f.db}.GetByBookingID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "400.00", txn.GrossAmount.StringFixed(2))
		assert.Equal(t, "200.00", txn.CommissionAmount.StringFixed(2))
		assert.Contains(t, f.notifier.kinds(), domain.KindPaymentConfirmed)
	})

	t.Run("Non Positive Amount", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)
		_, err := f.svc.RecordCashPayment(ctx, b.ID, decimal.Zero)
		var vErrs domain.ValidationErrors
		require.ErrorAs(t, err, &vErrs)
		assert.Equal(t, "amount", vErrs[0].Field)
	})

	t.Run("Already Paid", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)
		_, err := f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(400))
		require.NoError(t, err)
		_, err = f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(400))
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, 1, f.db.txnCount())
	})
}

func TestBookingService_Refund(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	b := f.scheduled(t)

	_, err := f.svc.Refund(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(450))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		refunded, err := f.svc.Refund(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusRefunded, refunded.PaymentStatus)
	}

	txn, err := memTxns{f.db}.GetByBookingID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusRefunded, txn.Status)
	assert.Equal(t, "450.00", txn.GrossAmount.StringFixed(2))

	refunds := 0
	for _, k := range f.notifier.kinds() {
		if k == domain.KindRefundIssued {
			refunds++
		}
	}
	assert.Equal(t, 1, refunds)
}

func TestBookingService_DeleteBooking(t *testing.T) {
	ctx := context.Background()

	t.Run("Pending Is Deleted", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)

		deleted, got, err := f.svc.DeleteBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		assert.Equal(t, b.ID, got.ID)
		_, err = f.svc.GetBooking(ctx, b.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Failed Payment Is Soft Cancelled", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)
		_, err := memBookings{f.db}.MarkPaymentFailed(ctx, b.ID)
		require.NoError(t, err)

		deleted, got, err := f.svc.DeleteBooking(ctx, b.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
		assert.Equal(t, domain.ServiceStatusCancelled, got.ServiceStatus)
		assert.Equal(t, domain.ServiceStatusCancelled, f.db.booking(b.ID).ServiceStatus)
	})

	t.Run("Paid Is Refused", func(t *testing.T) {
		f := newBookingFixture(t)
		b := f.scheduled(t)
		_, err := f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(450))
		require.NoError(t, err)
		_, err = f.svc.MarkCompleted(ctx, b.ID)
		require.NoError(t, err)

		_, _, err = f.svc.DeleteBooking(ctx, b.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		assert.Equal(t, domain.PaymentStatusPaid, f.db.booking(b.ID).PaymentStatus)
	})
}

func TestBookingService_UpdateDetails(t *testing.T) {
	ctx := context.Background()
	f := newBookingFixture(t)
	b := f.scheduled(t)

	_, err := f.svc.UpdateDetails(ctx, b.ID, domain.BookingPatch{})
	var vErrs domain.ValidationErrors
	require.ErrorAs(t, err, &vErrs)

	price := decimal.RequireFromString("499.999")
	notes := "bring reference photo"
	got, err := f.svc.UpdateDetails(ctx, b.ID, domain.BookingPatch{Price: &price, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.Price.StringFixed(2))
	assert.Equal(t, notes, got.Notes)

	unknown := int32(42)
	_, err = f.svc.UpdateDetails(ctx, b.ID, domain.BookingPatch{StaffID: &unknown})
	require.ErrorAs(t, err, &vErrs)
	assert.Equal(t, "staff_id", vErrs[0].Field)

	_, err = f.svc.RecordCashPayment(ctx, b.ID, decimal.NewFromInt(500))
	require.NoError(t, err)

	_, err = f.svc.UpdateDetails(ctx, b.ID, domain.BookingPatch{Price: &price})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Non-price fields stay editable after payment.
	got, err = f.svc.UpdateDetails(ctx, b.ID, domain.BookingPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "500.00", got.PaymentAmount.Decimal.StringFixed(2))
}

func TestBookingService_ListBookingsRange(t *testing.T) {
	f := newBookingFixture(t)
	from := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	to := from.Add(-time.Hour)
	_, _, err := f.svc.ListBookings(context.Background(), domain.BookingFilter{From: &from, To: &to})
	var vErrs domain.ValidationErrors
	require.ErrorAs(t, err, &vErrs)
}

func TestBookingService_ConcurrentChangeReportsCurrentState(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	svc := NewBookingService(bookingRepo, nil, nil, &recordingNotifier{},
		notification.NewTemplates("Salon", "", time.UTC), "thb")

	ctx := context.Background()
	before := &domain.Booking{ID: "b-1", ServiceStatus: domain.ServiceStatusScheduled, PaymentStatus: domain.PaymentStatusPending}
	after := &domain.Booking{ID: "b-1", ServiceStatus: domain.ServiceStatusCancelled, PaymentStatus: domain.PaymentStatusPending}

	bookingRepo.On("GetByID", ctx, "b-1").Return(before, nil).Once()
	bookingRepo.On("MarkCompleted", ctx, "b-1").Return(false, nil)
	bookingRepo.On("GetByID", ctx, "b-1").Return(after, nil).Once()

	_, err := svc.MarkCompleted(ctx, "b-1")
	var te *domain.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, domain.ServiceStatusCancelled, te.ServiceStatus)
	bookingRepo.AssertExpectations(t)
}

func TestBookingService_StoreErrorPassesThrough(t *testing.T) {
	bookingRepo := new(MockBookingRepo)
	svc := NewBookingService(bookingRepo, nil, nil, &recordingNotifier{},
		notification.NewTemplates("Salon", "", time.UTC), "thb")

	ctx := context.Background()
	boom := errors.New("connection refused")
	bookingRepo.On("GetByID", ctx, "b-1").Return(&domain.Booking{ID: "b-1", ServiceStatus: domain.ServiceStatusScheduled}, nil)
	bookingRepo.On("Cancel", ctx, "b-1", mock.AnythingOfType("time.Time")).Return(false, boom)

	_, err := svc.Cancel(ctx, "b-1")
	assert.ErrorIs(t, err, boom)
}
