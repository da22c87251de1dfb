package service

import (
	"context"
	"fmt"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/repository"
)

// settlement is the path every transition into paid goes through, whether
// the payment came from the processor, the till or the roll-forward job.
type settlement struct {
	txnRepo   repository.TransactionRepository
	staffRepo repository.StaffRepository
	notifier  Notifier
	templates *notification.Templates
}

// ensureTransaction derives the transaction for a paid booking from the
// current staff commission rate and inserts it unless one already exists.
// created is false when an earlier attempt already recorded it; the stored
// row is returned in that case.
func (s *settlement) ensureTransaction(ctx context.Context, b *domain.Booking) (*domain.Transaction, *domain.Staff, bool, error) {
	staff, err := s.staffRepo.GetByID(ctx, b.StaffID)
	if err != nil {
		return nil, nil, false, fmt.Errorf("load staff %d for booking %s: %w", b.StaffID, b.ID, err)
	}

	txn, err := domain.NewTransaction(b, staff)
	if err != nil {
		return nil, staff, false, err
	}

	created, err := s.txnRepo.CreateIfAbsent(ctx, txn)
	if err != nil {
		return nil, staff, false, fmt.Errorf("record transaction for booking %s: %w", b.ID, err)
	}
	log := logger.WithBooking(b.ID)
	if !created {
		// The stored row keeps the commission snapshot taken at first settlement.
		stored, err := s.txnRepo.GetByBookingID(ctx, b.ID)
		if err != nil {
			return nil, staff, false, fmt.Errorf("load transaction for booking %s: %w", b.ID, err)
		}
		log.Debug("Transaction already recorded", "transaction_id", stored.ID)
		return stored, staff, false, nil
	}
	log.Info("Transaction recorded",
		"staff_id", b.StaffID,
		"gross_amount", txn.GrossAmount.StringFixed(2),
		"commission_amount", txn.CommissionAmount.StringFixed(2),
	)
	return txn, staff, true, nil
}

// notifyPaid sends the staff confirmation and the customer receipt without
// waiting for either.
func (s *settlement) notifyPaid(ctx context.Context, b *domain.Booking, staff *domain.Staff, txn *domain.Transaction) {
	s.notifier.DispatchAsync(ctx, s.templates.PaymentConfirmed(b, staff, txn))
	s.notifier.DispatchAsync(ctx, s.templates.PaymentReceipt(b))
}
