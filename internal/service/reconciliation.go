package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shopbooking-backend/internal/cache"
	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/repository"
)

type reconciliationService struct {
	settlement
	bookingRepo repository.BookingRepository
	diagRepo    repository.PaymentDiagnosticRepository
	deliveries  cache.DeliveryCache
	now         func() time.Time
}

func NewReconciliationService(
	bookingRepo repository.BookingRepository,
	txnRepo repository.TransactionRepository,
	staffRepo repository.StaffRepository,
	diagRepo repository.PaymentDiagnosticRepository,
	deliveries cache.DeliveryCache,
	notifier Notifier,
	templates *notification.Templates,
) ReconciliationService {
	if deliveries == nil {
		deliveries = cache.NewNoopDeliveryCache()
	}
	return &reconciliationService{
		settlement: settlement{
			txnRepo:   txnRepo,
			staffRepo: staffRepo,
			notifier:  notifier,
			templates: templates,
		},
		bookingRepo: bookingRepo,
		diagRepo:    diagRepo,
		deliveries:  deliveries,
		now:         time.Now,
	}
}

// HandleEvent applies a verified processor event at most once. Only store
// failures are returned as errors; everything the gateway should stop
// redelivering is reported through the result outcome.
func (s *reconciliationService) HandleEvent(ctx context.Context, evt *domain.PaymentEvent, raw []byte) (*domain.ReconcileResult, error) {
	logger.EnterMethod("reconciliationService.HandleEvent", "type", evt.Type, "reference", evt.Reference)

	if s.deliveries.Seen(ctx, evt) {
		logger.Info("Payment event already processed", "reference", evt.Reference, "type", evt.Type)
		return &domain.ReconcileResult{Outcome: domain.OutcomeDuplicate}, nil
	}

	b, err := s.correlate(ctx, evt)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Warn("Payment event matched no booking",
			"reference", evt.Reference,
			"booking_id", evt.Metadata.BookingID,
			"invoice_number", evt.Metadata.InvoiceNumber,
		)
		if err := s.diagnose(ctx, evt, raw, "", "booking not found"); err != nil {
			return nil, err
		}
		s.deliveries.Remember(ctx, evt)
		return &domain.ReconcileResult{Outcome: domain.OutcomeNotFound}, nil
	}
	if err != nil {
		logger.ExitMethodWithError("reconciliationService.HandleEvent", err, "reference", evt.Reference)
		return nil, err
	}

	var res *domain.ReconcileResult
	switch evt.Type {
	case domain.PaymentEventSucceeded:
		res, err = s.applySuccess(ctx, evt, raw, b)
	case domain.PaymentEventFailed:
		res, err = s.applyFailure(ctx, evt, raw, b)
	default:
		err = domain.ValidationError{Field: "type", Message: fmt.Sprintf("unsupported event type %q", evt.Type)}
	}
	if err != nil {
		logger.ExitMethodWithError("reconciliationService.HandleEvent", err, "booking_id", b.ID)
		return nil, err
	}

	s.deliveries.Remember(ctx, evt)
	logger.ExitMethod("reconciliationService.HandleEvent", "booking_id", b.ID, "outcome", res.Outcome)
	return res, nil
}

// correlate tries the booking id first; invoice numbers can repeat after a
// cancel and rebook.
func (s *reconciliationService) correlate(ctx context.Context, evt *domain.PaymentEvent) (*domain.Booking, error) {
	if id := evt.Metadata.BookingID; id != "" {
		if _, err := uuid.Parse(id); err == nil {
			b, err := s.bookingRepo.GetByID(ctx, id)
			if err == nil {
				return b, nil
			}
			if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
	}
	if inv := evt.Metadata.InvoiceNumber; inv != "" {
		return s.bookingRepo.GetByInvoiceNumber(ctx, inv)
	}
	return nil, domain.ErrNotFound
}

func (s *reconciliationService) applySuccess(ctx context.Context, evt *domain.PaymentEvent, raw []byte, b *domain.Booking) (*domain.ReconcileResult, error) {
	if b.PaidWith(evt.Reference) {
		return s.duplicate(ctx, b)
	}
	if err := b.CanAcceptPayment(); err != nil {
		return s.ignore(ctx, evt, raw, b, err.Error())
	}
	if evt.Currency != "" && !strings.EqualFold(evt.Currency, b.Currency) {
		return s.ignore(ctx, evt, raw, b, fmt.Sprintf("currency %s does not match booking currency %s", evt.Currency, b.Currency))
	}

	net := evt.NetAmount()
	if gross := domain.AmountFromMinor(evt.AmountMinor); !gross.Equal(b.Price) {
		logger.Warn("Payment amount differs from booking price",
			"booking_id", b.ID, "price", b.Price.StringFixed(2), "amount", gross.StringFixed(2))
	}

	update := domain.PaymentUpdate{
		Reference:  evt.Reference,
		Amount:     net,
		ReceivedAt: s.now(),
		Method:     domain.PaymentMethodCard,
	}
	applied, err := s.bookingRepo.MarkPaid(ctx, b.ID, update)
	if err != nil {
		return nil, fmt.Errorf("mark booking %s paid: %w", b.ID, err)
	}
	if !applied {
		// Another delivery or a staff action got there first.
		fresh, err := s.bookingRepo.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if fresh.PaidWith(evt.Reference) {
			return s.duplicate(ctx, fresh)
		}
		return s.ignore(ctx, evt, raw, fresh, domain.NewTransitionError("pay", fresh).Error())
	}

	b.PaymentStatus = domain.PaymentStatusPaid
	b.PaymentReference = &update.Reference
	b.PaymentAmount.Decimal, b.PaymentAmount.Valid = update.Amount, true
	b.PaymentReceivedAt = &update.ReceivedAt
	b.PaymentMethod = update.Method

	logger.WithBooking(b.ID).Info("Booking marked paid", "reference", evt.Reference, "amount", net.StringFixed(2))

	// The booking stays paid if this fails; the error makes the gateway
	// redeliver and the roll-forward job picks it up as well.
	txn, staff, created, err := s.ensureTransaction(ctx, b)
	if err != nil {
		return nil, err
	}

	s.notifyPaid(ctx, b, staff, txn)
	return &domain.ReconcileResult{Outcome: domain.OutcomeApplied, BookingID: b.ID, TransactionCreated: created}, nil
}

// duplicate acknowledges a redelivery, making sure the transaction exists in
// case the first delivery died between the two writes.
func (s *reconciliationService) duplicate(ctx context.Context, b *domain.Booking) (*domain.ReconcileResult, error) {
	_, _, created, err := s.ensureTransaction(ctx, b)
	if err != nil {
		return nil, err
	}
	if created {
		logger.WithBooking(b.ID).Warn("Recovered missing transaction on redelivery")
	}
	return &domain.ReconcileResult{Outcome: domain.OutcomeDuplicate, BookingID: b.ID, TransactionCreated: created}, nil
}

func (s *reconciliationService) applyFailure(ctx context.Context, evt *domain.PaymentEvent, raw []byte, b *domain.Booking) (*domain.ReconcileResult, error) {
	if b.PaymentStatus == domain.PaymentStatusFailed {
		return &domain.ReconcileResult{Outcome: domain.OutcomeDuplicate, BookingID: b.ID}, nil
	}
	if err := b.CanFail(); err != nil {
		return s.ignore(ctx, evt, raw, b, err.Error())
	}

	applied, err := s.bookingRepo.MarkPaymentFailed(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("mark booking %s failed: %w", b.ID, err)
	}
	if !applied {
		fresh, err := s.bookingRepo.GetByID(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		if fresh.PaymentStatus == domain.PaymentStatusFailed {
			return &domain.ReconcileResult{Outcome: domain.OutcomeDuplicate, BookingID: b.ID}, nil
		}
		return s.ignore(ctx, evt, raw, fresh, domain.NewTransitionError("fail", fresh).Error())
	}
	b.PaymentStatus = domain.PaymentStatusFailed
	logger.WithBooking(b.ID).Info("Booking payment failed", "reference", evt.Reference)

	var staff *domain.Staff
	if st, err := s.staffRepo.GetByID(ctx, b.StaffID); err == nil {
		staff = st
	} else {
		logger.WithBooking(b.ID).Warn("Failed to load staff for payment failure notice", "error", err)
	}
	s.notifier.DispatchAsync(ctx, s.templates.PaymentFailed(b, staff, evt.Reference))

	return &domain.ReconcileResult{Outcome: domain.OutcomeFailed, BookingID: b.ID}, nil
}

func (s *reconciliationService) ignore(ctx context.Context, evt *domain.PaymentEvent, raw []byte, b *domain.Booking, reason string) (*domain.ReconcileResult, error) {
	logger.WithBooking(b.ID).Warn("Payment event ignored", "reference", evt.Reference, "reason", reason)
	if err := s.diagnose(ctx, evt, raw, b.ID, reason); err != nil {
		return nil, err
	}
	return &domain.ReconcileResult{Outcome: domain.OutcomeIgnored, BookingID: b.ID}, nil
}

func (s *reconciliationService) diagnose(ctx context.Context, evt *domain.PaymentEvent, raw []byte, bookingID, reason string) error {
	if bookingID == "" {
		bookingID = evt.Metadata.BookingID
	}
	d := &domain.PaymentDiagnostic{
		EventType:     evt.Type,
		Reference:     evt.Reference,
		AmountMinor:   evt.AmountMinor,
		Currency:      evt.Currency,
		InvoiceNumber: evt.Metadata.InvoiceNumber,
		BookingID:     bookingID,
		Reason:        reason,
		RawPayload:    raw,
		CreatedAt:     s.now(),
	}
	if err := s.diagRepo.Create(ctx, d); err != nil {
		return fmt.Errorf("record payment diagnostic: %w", err)
	}
	return nil
}

func (s *reconciliationService) RollForward(ctx context.Context, limit int) (int, error) {
	bookings, err := s.bookingRepo.ListPaidWithoutTransaction(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list paid bookings without transaction: %w", err)
	}

	created := 0
	for i := range bookings {
		b := &bookings[i]
		txn, staff, ok, err := s.ensureTransaction(ctx, b)
		if err != nil {
			logger.Error("Roll-forward failed for booking", "booking_id", b.ID, "error", err)
			continue
		}
		if ok {
			created++
			s.notifyPaid(ctx, b, staff, txn)
		}
	}
	return created, nil
}
