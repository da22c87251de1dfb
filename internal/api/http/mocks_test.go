package http

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/service"
)

// MockBookingService
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) booking(args mock.Arguments) (*domain.Booking, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingService) CreateBooking(ctx context.Context, in domain.NewBooking) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, in))
}
func (m *MockBookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}
func (m *MockBookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingService) UpdateDetails(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, patch))
}
func (m *MockBookingService) Reschedule(ctx context.Context, id string, scheduledAt time.Time) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, scheduledAt))
}
func (m *MockBookingService) MarkCompleted(ctx context.Context, id string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}
func (m *MockBookingService) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}
func (m *MockBookingService) DeleteBooking(ctx context.Context, id string) (bool, *domain.Booking, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(1).(*domain.Booking)
	return args.Bool(0), b, args.Error(2)
}
func (m *MockBookingService) RecordCashPayment(ctx context.Context, id string, amount decimal.Decimal) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id, amount))
}
func (m *MockBookingService) Refund(ctx context.Context, id string) (*domain.Booking, error) {
	return m.booking(m.Called(ctx, id))
}

// MockReconciler
type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) HandleEvent(ctx context.Context, evt *domain.PaymentEvent, raw []byte) (*domain.ReconcileResult, error) {
	args := m.Called(ctx, evt, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReconcileResult), args.Error(1)
}
func (m *MockReconciler) RollForward(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

// MockEarningsService
type MockEarningsService struct {
	mock.Mock
}

func (m *MockEarningsService) Summary(ctx context.Context, staffID *int32, start, end time.Time) (*domain.PeriodSummary, error) {
	args := m.Called(ctx, staffID, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSummary), args.Error(1)
}
func (m *MockEarningsService) PeriodSummary(ctx context.Context, staffID *int32, period domain.Period) (*domain.PeriodSummary, error) {
	args := m.Called(ctx, staffID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PeriodSummary), args.Error(1)
}
func (m *MockEarningsService) Dashboard(ctx context.Context, staffID *int32) (*domain.Dashboard, error) {
	args := m.Called(ctx, staffID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Dashboard), args.Error(1)
}

// MockPaymentLinkService
type MockPaymentLinkService struct {
	mock.Mock
}

func (m *MockPaymentLinkService) CreateLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentLink), args.Error(1)
}
func (m *MockPaymentLinkService) CreateBookingLink(ctx context.Context, bookingID string) (*domain.PaymentLink, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentLink), args.Error(1)
}

// MockNotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) Send(ctx context.Context, req service.SendRequest) (*domain.DeliveryResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryResult), args.Error(1)
}
func (m *MockNotificationService) ListFailures(ctx context.Context, limit int) ([]domain.NotificationFailure, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.NotificationFailure), args.Error(1)
}
func (m *MockNotificationService) Resend(ctx context.Context, id int64) (*domain.DeliveryResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DeliveryResult), args.Error(1)
}
