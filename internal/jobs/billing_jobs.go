package jobs

import (
	"context"
	"time"

	"habitat-pro/internal/logger"
)

// RefreshOverdueCharges flips past-due charges to OVERDUE and recomputes
// their late fee and interest. Runs daily before the reminder sweep so
// collection notices carry up-to-date amounts.
func (jr *JobRunner) RefreshOverdueCharges() {
	jr.runWithRecovery("RefreshOverdueCharges", func() {
		ctx := context.Background()

		updated, err := jr.services.Billing.RefreshOverdue(ctx)
		if err != nil {
			logger.Error("Failed to refresh overdue charges", "error", err)
			return
		}
		logger.Info("Refreshed overdue charges", "updated", updated)
	})
}

// GenerateMonthlyCharges creates next month's charge batch for every
// active lease. Re-running is harmless: existing charges are skipped.
func (jr *JobRunner) GenerateMonthlyCharges() {
	jr.runWithRecovery("GenerateMonthlyCharges", func() {
		ctx := context.Background()

		month := jr.services.Generation.NextMonth(time.Now())
		result, err := jr.services.Generation.Generate(ctx, month, "scheduler")
		if err != nil {
			logger.Error("Monthly charge generation failed", "error", err)
			return
		}
		logger.Info("Monthly charge generation finished",
			"month", month.Format("2006-01"),
			"created", result.Created,
			"skipped", result.Skipped,
			"outOfPeriod", result.OutOfPeriod,
			"failed", result.Failed)
	})
}

// CleanupRunLogs purges generation run logs older than a year. The logs
// double as the billing audit trail for reconciliation, so they are kept
// well past the short window a pure execution history would need.
func (jr *JobRunner) CleanupRunLogs() {
	jr.runWithRecovery("CleanupRunLogs", func() {
		ctx := context.Background()

		cutoff := time.Now().AddDate(-1, 0, 0)
		deleted, err := jr.store.RunLogRepository.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			logger.Error("Run log cleanup failed", "error", err)
			return
		}
		logger.Info("Run log cleanup finished", "deleted", deleted, "cutoff", cutoff.Format("2006-01-02"))
	})
}
