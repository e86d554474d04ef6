package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"

	"habitat-pro/internal/jobs"
	"habitat-pro/internal/logger"
)

// Scheduler manages cron job scheduling
type Scheduler struct {
	cron *cron.Cron
	jobs *jobs.JobRunner
}

// NewScheduler creates a new scheduler with the provided job runner
func NewScheduler(jobRunner *jobs.JobRunner) *Scheduler {
	loc, err := time.LoadLocation(jobRunner.Config().Scheduler.Timezone)
	if err != nil {
		logger.Error("Unknown scheduler timezone, falling back to UTC",
			"timezone", jobRunner.Config().Scheduler.Timezone, "error", err)
		loc = time.UTC
	}

	// Seconds precision; a slow sweep is skipped rather than stacked.
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
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

	// Daily jobs
	// Flip past-due charges and recompute penalties, then send reminders
	_, err := s.cron.AddFunc(cfg.DailyNotification, func() {
		s.jobs.RefreshOverdueCharges()
		s.jobs.SendDueReminders()
	})
	if err != nil {
		logger.Error("Failed to register daily notification job", "error", err)
	}

	// Hourly sweep for charges due today or tomorrow
	_, err = s.cron.AddFunc(cfg.UrgentSweep, s.jobs.SendUrgentReminders)
	if err != nil {
		logger.Error("Failed to register urgent sweep job", "error", err)
	}

	// Draft renewals for leases approaching their end date
	_, err = s.cron.AddFunc(cfg.RenewalDetection, s.jobs.DetectExpiringLeases)
	if err != nil {
		logger.Error("Failed to register renewal detection job", "error", err)
	}

	// Monthly charge batch
	_, err = s.cron.AddFunc(cfg.MonthlyGeneration, s.jobs.GenerateMonthlyCharges)
	if err != nil {
		logger.Error("Failed to register monthly generation job", "error", err)
	}

	// Weekly housekeeping
	_, err = s.cron.AddFunc(cfg.Cleanup, s.jobs.CleanupRunLogs)
	if err != nil {
		logger.Error("Failed to register cleanup job", "error", err)
	}

	logger.Info("All cron jobs registered successfully")
}

// Start begins the cron scheduler
func (s *Scheduler) Start() {
	logger.Info("Starting cron scheduler...")
	s.cron.Start()
	logger.Info("Cron scheduler started successfully")
}

// Stop gracefully stops the cron scheduler
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
