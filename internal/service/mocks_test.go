package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"shopbooking-backend/internal/domain"
)

// MockBookingRepo
type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}
func (m *MockBookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) GetByInvoiceNumber(ctx context.Context, invoiceNumber string) (*domain.Booking, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) List(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Booking), args.Get(1).(int32), args.Error(2)
}
func (m *MockBookingRepo) UpdateDetails(ctx context.Context, id string, patch domain.BookingPatch) (bool, error) {
	args := m.Called(ctx, id, patch)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) Reschedule(ctx context.Context, id string, scheduledAt time.Time) (bool, error) {
	args := m.Called(ctx, id, scheduledAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) MarkCompleted(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) Cancel(ctx context.Context, id string, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) SetInvoiceNumber(ctx context.Context, id, invoiceNumber string) (bool, error) {
	args := m.Called(ctx, id, invoiceNumber)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) MarkPaid(ctx context.Context, id string, p domain.PaymentUpdate) (bool, error) {
	args := m.Called(ctx, id, p)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) MarkPaymentFailed(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) MarkRefunded(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}
func (m *MockBookingRepo) ListPaidWithoutTransaction(ctx context.Context, limit int) ([]domain.Booking, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.Booking), args.Error(1)
}
func (m *MockBookingRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

// MockFailureRepo
type MockFailureRepo struct {
	mock.Mock
}

func (m *MockFailureRepo) Create(ctx context.Context, f *domain.NotificationFailure) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
func (m *MockFailureRepo) GetByID(ctx context.Context, id int64) (*domain.NotificationFailure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.NotificationFailure), args.Error(1)
}
func (m *MockFailureRepo) ListPending(ctx context.Context, limit int) ([]domain.NotificationFailure, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.NotificationFailure), args.Error(1)
}
func (m *MockFailureRepo) MarkResent(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

// MockGateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePaymentLink(ctx context.Context, req domain.PaymentLinkRequest) (*domain.PaymentLink, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentLink), args.Error(1)
}
