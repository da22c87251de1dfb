package scheduler

import (
	"github.com/robfig/cron/v3"

	"shopbooking-backend/internal/jobs"
	"shopbooking-backend/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a scheduler in shop-local time with seconds
// precision. Specs that fail to parse are logged and skipped.
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	c := cron.New(
		cron.WithLocation(jobRunner.Config().Location()),
		cron.WithSeconds(),
	)

	s := &Scheduler{
		cron: c,
		jobs: jobRunner,
	}

	s.registerJobs()
	return s
}

// registerJobs registers all scheduled jobs with the cron scheduler
func (s *Scheduler) registerJobs() {
	cfg := s.jobs.Config().Scheduler

	registered := 0
	for _, j := range []struct {
		name string
		spec string
		fn   func()
	}{
		{"RollForwardPayments", cfg.RollForwardPayments, s.jobs.RollForwardPayments},
		{"SendAppointmentReminders", cfg.AppointmentReminders, s.jobs.SendAppointmentReminders},
		{"SendUnmatchedPaymentDigest", cfg.UnmatchedPaymentDigest, s.jobs.SendUnmatchedPaymentDigest},
	} {
		if j.spec == "" || j.spec == "-" {
			logger.Info("Job disabled", "job", j.name)
			continue
		}
		if _, err := s.cron.AddFunc(j.spec, j.fn); err != nil {
			logger.Error("Failed to register job", "job", j.name, "spec", j.spec, "error", err)
			continue
		}
		registered++
	}

	logger.Info("Cron jobs registered", "count", registered)
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	logger.Info("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Cron scheduler stopped")
}

// IsRunning returns true if the scheduler is running
func (s *Scheduler) IsRunning() bool {
	return len(s.cron.Entries()) > 0
}
