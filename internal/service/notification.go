package service

import (
	"context"
	"fmt"
	"time"

	"shopbooking-backend/internal/domain"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/repository"
)

type notificationService struct {
	failureRepo repository.NotificationFailureRepository
	notifier    Notifier
	now         func() time.Time
}

func NewNotificationService(failureRepo repository.NotificationFailureRepository, notifier Notifier) NotificationService {
	return &notificationService{failureRepo: failureRepo, notifier: notifier, now: time.Now}
}

// Send dispatches synchronously so the caller sees which channel was used.
func (s *notificationService) Send(ctx context.Context, req SendRequest) (*domain.DeliveryResult, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	res := s.notifier.Dispatch(ctx, &domain.Message{
		Kind:         domain.KindDirect,
		To:           req.To,
		Subject:      req.Subject,
		HTML:         req.HTML,
		Preview:      req.Preview,
		BookingID:    req.BookingID,
		CustomerName: req.CustomerName,
	})
	return &res, nil
}

func (s *notificationService) ListFailures(ctx context.Context, limit int) ([]domain.NotificationFailure, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.failureRepo.ListPending(ctx, limit)
}

func (s *notificationService) Resend(ctx context.Context, id int64) (*domain.DeliveryResult, error) {
	f, err := s.failureRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.ResentAt != nil {
		return nil, fmt.Errorf("notification %d already resent: %w", id, domain.ErrInvalidTransition)
	}
	msg, err := f.Message()
	if err != nil {
		return nil, fmt.Errorf("decode stored notification %d: %w", id, err)
	}
	msg.Preview = false

	res := s.notifier.Dispatch(ctx, msg)
	if res.Success {
		if err := s.failureRepo.MarkResent(ctx, id, s.now()); err != nil {
			logger.Warn("Failed to mark notification resent", "failure_id", id, "error", err)
		}
	}
	return &res, nil
}
