package jobs

import (
	"database/sql"

	"habitat-pro/internal/config"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository/postgres"
	"habitat-pro/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	db       *sql.DB
	store    *postgres.Store
	services *Services
	config   *config.Config
}

// Services holds all service dependencies needed by jobs
type Services struct {
	Billing      service.BillingService
	Generation   service.GenerationService
	Notification service.NotificationService
	Renewal      service.RenewalService
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(db *sql.DB, store *postgres.Store, services *Services, cfg *config.Config) *JobRunner {
	return &JobRunner{
		db:       db,
		store:    store,
		services: services,
		config:   cfg,
	}
}

// Config exposes the loaded configuration to the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs the daily job set in order (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.RefreshOverdueCharges()
	jr.SendDueReminders()
	jr.DetectExpiringLeases()
}

// RunMonthlyJobs runs the monthly job set (for manual execution)
func (jr *JobRunner) RunMonthlyJobs() {
	jr.GenerateMonthlyCharges()
}
