package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"shopbooking-backend/internal/config"
	"shopbooking-backend/internal/domain"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) HandleEvent(ctx context.Context, evt *domain.PaymentEvent, raw []byte) (*domain.ReconcileResult, error) {
	args := m.Called(ctx, evt, raw)
	return args.Get(0).(*domain.ReconcileResult), args.Error(1)
}
func (m *MockReconciler) RollForward(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

type MockNotices struct {
	mock.Mock
}

func (m *MockNotices) SendAppointmentReminders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockNotices) SendUnmatchedPaymentDigest(ctx context.Context, since time.Time) (int, error) {
	args := m.Called(ctx, since)
	return args.Int(0), args.Error(1)
}

func newRunner() (*JobRunner, *MockReconciler, *MockNotices) {
	rec := new(MockReconciler)
	notices := new(MockNotices)
	cfg := &config.Config{Scheduler: config.SchedulerConfig{RollForwardBatchSize: 50}}
	jr := NewJobRunner(&Services{Reconciliation: rec, Reminders: notices, Digest: notices}, cfg)
	jr.now = func() time.Time { return time.Date(2026, 3, 4, 8, 30, 0, 0, time.UTC) }
	return jr, rec, notices
}

func TestRollForwardPayments(t *testing.T) {
	jr, rec, _ := newRunner()
	rec.On("RollForward", mock.Anything, 50).Return(2, nil).Once()
	rec.On("RollForward", mock.Anything, 50).Return(0, errors.New("db down")).Once()

	jr.RollForwardPayments()
	jr.RollForwardPayments()

	rec.AssertNumberOfCalls(t, "RollForward", 2)
}

func TestSendUnmatchedPaymentDigest_LooksBackOneDay(t *testing.T) {
	jr, _, notices := newRunner()
	notices.On("SendUnmatchedPaymentDigest", mock.Anything, time.Date(2026, 3, 3, 8, 30, 0, 0, time.UTC)).Return(3, nil)

	jr.SendUnmatchedPaymentDigest()

	notices.AssertExpectations(t)
}

func TestRunWithRecovery(t *testing.T) {
	jr, rec, notices := newRunner()
	rec.On("RollForward", mock.Anything, 50).Run(func(mock.Arguments) { panic("boom") }).Return(0, nil)
	notices.On("SendAppointmentReminders", mock.Anything).Return(1, nil)
	notices.On("SendUnmatchedPaymentDigest", mock.Anything, mock.Anything).Return(0, nil)

	assert.NotPanics(t, jr.RunAll)
	notices.AssertCalled(t, "SendAppointmentReminders", mock.Anything)
	notices.AssertCalled(t, "SendUnmatchedPaymentDigest", mock.Anything, mock.Anything)
}

func TestRunWithRecovery_Deadline(t *testing.T) {
	jr, _, _ := newRunner()
	jr.timeout = time.Millisecond

	var deadline bool
	jr.runWithRecovery("panicking-job", func(ctx context.Context) {
		_, deadline = ctx.Deadline()
	})
	assert.True(t, deadline)
}
