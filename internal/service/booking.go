package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/repository"
)

type bookingService struct {
	settlement
	bookingRepo     repository.BookingRepository
	defaultCurrency string
	now             func() time.Time
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	txnRepo repository.TransactionRepository,
	staffRepo repository.StaffRepository,
	notifier Notifier,
	templates *notification.Templates,
	defaultCurrency string,
) BookingService {
	return &bookingService{
		settlement: settlement{
			txnRepo:   txnRepo,
			staffRepo: staffRepo,
			notifier:  notifier,
			templates: templates,
		},
		bookingRepo:     bookingRepo,
		defaultCurrency: defaultCurrency,
		now:             time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, in domain.NewBooking) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.CreateBooking", "staffID", in.StaffID, "service", in.ServiceName)

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, invalid("price", "must not be negative")
	}

	staff, err := s.staffRepo.GetByID(ctx, in.StaffID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, invalid("staff_id", "unknown staff member")
	}
	if err != nil {
		return nil, err
	}

	currency := strings.ToLower(in.Currency)
	if currency == "" {
		currency = s.defaultCurrency
	}
	now := s.now()
	b := &domain.Booking{
		ID:            uuid.NewString(),
		CustomerID:    in.CustomerID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		CustomerEmail: strings.TrimSpace(in.CustomerEmail),
		CustomerPhone: strings.TrimSpace(in.CustomerPhone),
		StaffID:       in.StaffID,
		ServiceName:   strings.TrimSpace(in.ServiceName),
		ScheduledAt:   in.ScheduledAt,
		Price:         domain.RoundMoney(in.Price),
		Currency:      currency,
		ServiceStatus: domain.ServiceStatusScheduled,
		PaymentStatus: domain.PaymentStatusPending,
		Notes:         in.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.bookingRepo.Create(ctx, b); err != nil {
		logger.ExitMethodWithError("bookingService.CreateBooking", err)
		return nil, err
	}

	s.notifier.DispatchAsync(ctx, s.templates.BookingCreated(b, staff))
	s.notifier.DispatchAsync(ctx, s.templates.CustomerConfirmation(b, staff))

	logger.ExitMethod("bookingService.CreateBooking", "bookingID", b.ID)
	return b, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *bookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, int32, error) {
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, 0, invalid("from", "must be before to")
	}
	return s.bookingRepo.List(ctx, filter)
}

func (s *bookingService) UpdateDetails(ctx context.Context, id string, patch domain.BookingPatch) (*domain.Booking, error) {
	if patch.IsEmpty() {
		return nil, invalid("body", "no fields to update")
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}

	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Price != nil {
		if patch.Price.IsNegative() {
			return nil, invalid("price", "must not be negative")
		}
		if !b.CanEditPrice() {
			return nil, domain.NewTransitionError("change price of", b)
		}
		rounded := domain.RoundMoney(*patch.Price)
		patch.Price = &rounded
	}
	if patch.StaffID != nil {
		if _, err := s.staffRepo.GetByID(ctx, *patch.StaffID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, invalid("staff_id", "unknown staff member")
			}
			return nil, err
		}
	}

	return s.apply(ctx, id, "update", func() (bool, error) {
		return s.bookingRepo.UpdateDetails(ctx, id, patch)
	})
}

func (s *bookingService) Reschedule(ctx context.Context, id string, scheduledAt time.Time) (*domain.Booking, error) {
	if scheduledAt.IsZero() {
		return nil, invalid("scheduled_at", "is required")
	}
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.CanReschedule(); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, "reschedule", func() (bool, error) {
		return s.bookingRepo.Reschedule(ctx, id, scheduledAt)
	})
}

func (s *bookingService) MarkCompleted(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.CanComplete(); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, "complete", func() (bool, error) {
		return s.bookingRepo.MarkCompleted(ctx, id)
	})
}

func (s *bookingService) Cancel(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.CanCancel(); err != nil {
		return nil, err
	}
	return s.apply(ctx, id, "cancel", func() (bool, error) {
		return s.bookingRepo.Cancel(ctx, id, s.now())
	})
}

func (s *bookingService) DeleteBooking(ctx context.Context, id string) (bool, *domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return false, nil, err
	}
	if b.CanDelete() {
		deleted, err := s.bookingRepo.Delete(ctx, id)
		if err != nil {
			return false, nil, err
		}
		if deleted {
			logger.WithBooking(id).Info("Booking deleted")
			return true, b, nil
		}
		// A payment started in the meantime; keep the row.
	}
	cancelled, err := s.Cancel(ctx, id)
	return false, cancelled, err
}

func (s *bookingService) RecordCashPayment(ctx context.Context, id string, amount decimal.Decimal) (*domain.Booking, error) {
	logger.EnterMethod("bookingService.RecordCashPayment", "bookingID", id)

	amount = domain.RoundMoney(amount)
	if !amount.IsPositive() {
		return nil, invalid("amount", "must be greater than 0")
	}
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.CanAcceptPayment(); err != nil {
		return nil, err
	}

	update := domain.PaymentUpdate{
		Reference:  "cash-" + uuid.NewString(),
		Amount:     amount,
		ReceivedAt: s.now(),
		Method:     domain.PaymentMethodCash,
	}
	paid, err := s.apply(ctx, id, "pay", func() (bool, error) {
		return s.bookingRepo.MarkPaid(ctx, id, update)
	})
	if err != nil {
		return nil, err
	}

	txn, staff, _, err := s.ensureTransaction(ctx, paid)
	if err != nil {
		logger.ExitMethodWithError("bookingService.RecordCashPayment", err, "bookingID", id)
		return nil, err
	}
	s.notifyPaid(ctx, paid, staff, txn)

	logger.ExitMethod("bookingService.RecordCashPayment", "bookingID", id, "reference", update.Reference)
	return paid, nil
}

// Refund is safe to retry: a booking already refunded only has its
// transaction status brought in line.
func (s *bookingService) Refund(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.PaymentStatus != domain.PaymentStatusRefunded {
		if err := b.CanRefund(); err != nil {
			return nil, err
		}
		b, err = s.apply(ctx, id, "refund", func() (bool, error) {
			return s.bookingRepo.MarkRefunded(ctx, id)
		})
		if err != nil {
			return nil, err
		}

		var staff *domain.Staff
		if st, err := s.staffRepo.GetByID(ctx, b.StaffID); err == nil {
			staff = st
		}
		s.notifier.DispatchAsync(ctx, s.templates.RefundIssued(b, staff))
	}

	flipped, err := s.txnRepo.MarkRefunded(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mark transaction for booking %s refunded: %w", id, err)
	}
	if flipped {
		logger.WithBooking(id).Info("Transaction refunded")
	}
	return b, nil
}

// apply runs a conditional write and returns the updated booking. When the
// write matched no row the booking moved underneath us, and the error
// reports the state it is in now.
func (s *bookingService) apply(ctx context.Context, id, op string, write func() (bool, error)) (*domain.Booking, error) {
	ok, err := write()
	if err != nil {
		return nil, err
	}
	fresh, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewTransitionError(op, fresh)
	}
	return fresh, nil
}
