package jobs

import (
	"context"
	"time"

	"habitat-pro/internal/logger"
)

// SendDueReminders is the morning sweep over every open charge. It sends
// the 7-day, 1-day, due-day and overdue-bucket reminders that are owed.
func (jr *JobRunner) SendDueReminders() {
	jr.runWithRecovery("SendDueReminders", func() {
		ctx := context.Background()

		result, err := jr.services.Notification.DispatchDue(ctx, time.Now())
		if err != nil {
			logger.Error("Due reminder sweep failed", "error", err)
			return
		}
		logger.Info("Due reminder sweep finished",
			"considered", result.Considered,
			"sent", result.Sent,
			"failed", result.Failed,
			"skipped", result.Skipped)
	})
}

// SendUrgentReminders is the hourly sweep over charges due today or
// tomorrow, catching charges created after the morning run.
func (jr *JobRunner) SendUrgentReminders() {
	jr.runWithRecovery("SendUrgentReminders", func() {
		ctx := context.Background()

		result, err := jr.services.Notification.DispatchUrgent(ctx, time.Now())
		if err != nil {
			logger.Error("Urgent reminder sweep failed", "error", err)
			return
		}
		if result.Sent > 0 || result.Failed > 0 {
			logger.Info("Urgent reminder sweep finished",
				"sent", result.Sent, "failed", result.Failed)
		}
	})
}
