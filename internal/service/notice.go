package service

import (
	"context"
	"fmt"
	"time"

	"shopbooking-backend/internal/earnings"
	"shopbooking-backend/internal/logger"
	"shopbooking-backend/internal/notification"
	"shopbooking-backend/internal/repository"
)

type NoticeService struct {
	bookingRepo repository.BookingRepository
	diagRepo    repository.PaymentDiagnosticRepository
	notifier    Notifier
	templates   *notification.Templates
	calendar    earnings.Calendar
	now         func() time.Time
}

// NewNoticeService returns the service behind the reminder and digest
// jobs. It satisfies both ReminderService and DigestService.
func NewNoticeService(
	bookingRepo repository.BookingRepository,
	diagRepo repository.PaymentDiagnosticRepository,
	notifier Notifier,
	templates *notification.Templates,
	calendar earnings.Calendar,
) *NoticeService {
	return &NoticeService{
		bookingRepo: bookingRepo,
		diagRepo:    diagRepo,
		notifier:    notifier,
		templates:   templates,
		calendar:    calendar,
		now:         time.Now,
	}
}

// SendAppointmentReminders messages every customer booked for tomorrow in
// shop-local time and returns how many reminders were delivered.
func (s *NoticeService) SendAppointmentReminders(ctx context.Context) (int, error) {
	start, end := s.calendar.Day(s.now())
	start, end = start.AddDate(0, 0, 1), end.AddDate(0, 0, 1)

	bookings, err := s.bookingRepo.ListScheduledBetween(ctx, start, end)
	if err != nil {
		return 0, fmt.Errorf("list bookings for reminders: %w", err)
	}

	sent := 0
	for i := range bookings {
		b := &bookings[i]
		msg := s.templates.AppointmentReminder(b)
		if msg == nil {
			logger.Debug("No contact for reminder", "booking_id", b.ID)
			continue
		}
		if res := s.notifier.Dispatch(ctx, msg); res.Success {
			sent++
		}
	}
	logger.Info("Appointment reminders processed", "bookings", len(bookings), "sent", sent)
	return sent, nil
}

// SendUnmatchedPaymentDigest mails the shop a list of payment events that
// could not be applied since the given time.
func (s *NoticeService) SendUnmatchedPaymentDigest(ctx context.Context, since time.Time) (int, error) {
	diags, err := s.diagRepo.ListSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("list payment diagnostics: %w", err)
	}
	msg := s.templates.UnmatchedDigest(diags, since)
	if msg == nil {
		return 0, nil
	}
	res := s.notifier.Dispatch(ctx, msg)
	logger.Info("Unmatched payment digest dispatched", "events", len(diags), "channel", res.ChannelUsed)
	return len(diags), nil
}
