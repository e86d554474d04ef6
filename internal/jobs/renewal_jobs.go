package jobs

import (
	"context"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
)

// renewalWindow is how far ahead a lease end date triggers a renewal
// draft: 90 days, matching the usual notice period in rental contracts.
const renewalWindow = 90 * 24 * time.Hour

// DetectExpiringLeases drafts a renewal proposal for every active lease
// ending within the window that has none yet. The draft reuses the
// current rent and guarantee; the back office adjusts terms before
// submitting it to the landlord. Open and approved proposals suppress
// re-detection, so the job is idempotent.
func (jr *JobRunner) DetectExpiringLeases() {
	jr.runWithRecovery("DetectExpiringLeases", func() {
		ctx := context.Background()

		leases, err := jr.services.Renewal.DetectExpiring(ctx, renewalWindow)
		if err != nil {
			logger.Error("Expiring lease detection failed", "error", err)
			return
		}

		drafted := 0
		for i := range leases {
			lease := &leases[i]
			_, err := jr.services.Renewal.CreateProposal(ctx, &domain.RenewalProposal{
				LeaseID:        lease.ID,
				NewMonthlyRent: lease.MonthlyRent,
				NewGuarantee:   lease.Guarantee,
				NewGuarantorID: lease.GuarantorID,
			})
			if err != nil {
				logger.Error("Renewal draft failed",
					"contract", lease.ContractNumber, "error", err)
				continue
			}
			drafted++
			logger.Info("Renewal drafted",
				"contract", lease.ContractNumber,
				"endDate", lease.EndDate.Format("2006-01-02"))
		}
		logger.Info("Expiring lease detection finished",
			"expiring", len(leases), "drafted", drafted)
	})
}
