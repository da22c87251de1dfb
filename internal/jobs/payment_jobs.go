package jobs

import (
	"context"

	"shopbooking-backend/internal/logger"
)

// RollForwardPayments creates the transactions that are missing for paid
// bookings, e.g. when the database went away between the two writes of a
// webhook.
func (jr *JobRunner) RollForwardPayments() {
	jr.runWithRecovery("RollForwardPayments", func(ctx context.Context) {
		created, err := jr.services.Reconciliation.RollForward(ctx, jr.config.Scheduler.RollForwardBatchSize)
		if err != nil {
			logger.Error("Failed to roll forward payments", "error", err)
			return
		}
		if created > 0 {
			logger.Warn("Created missing transactions for paid bookings", "count", created)
		}
	})
}
