package jobs

import (
	"context"
	"time"

	"shopbooking-backend/internal/logger"
)

// digestWindow is how far back each daily digest looks.
const digestWindow = 24 * time.Hour

// SendAppointmentReminders messages customers booked for tomorrow.
func (jr *JobRunner) SendAppointmentReminders() {
	jr.runWithRecovery("SendAppointmentReminders", func(ctx context.Context) {
		sent, err := jr.services.Reminders.SendAppointmentReminders(ctx)
		if err != nil {
			logger.Error("Failed to send appointment reminders", "error", err)
			return
		}
		logger.Info("Sent appointment reminders", "count", sent)
	})
}

// SendUnmatchedPaymentDigest reports the last day's unapplied payment events
// to the shop.
func (jr *JobRunner) SendUnmatchedPaymentDigest() {
	jr.runWithRecovery("SendUnmatchedPaymentDigest", func(ctx context.Context) {
		since := jr.now().Add(-digestWindow)
		count, err := jr.services.Digest.SendUnmatchedPaymentDigest(ctx, since)
		if err != nil {
			logger.Error("Failed to send unmatched payment digest", "error", err)
			return
		}
		logger.Info("Unmatched payment digest done", "events", count)
	})
}
