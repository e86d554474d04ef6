package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/utils"
)

type generationService struct {
	billing    BillingService
	leaseRepo  repository.LeaseRepository
	chargeRepo repository.ChargeRepository
	runLogRepo repository.RunLogRepository
}

func NewGenerationService(
	billing BillingService,
	leaseRepo repository.LeaseRepository,
	chargeRepo repository.ChargeRepository,
	runLogRepo repository.RunLogRepository,
) GenerationService {
	return &generationService{
		billing:    billing,
		leaseRepo:  leaseRepo,
		chargeRepo: chargeRepo,
		runLogRepo: runLogRepo,
	}
}

// NextMonth returns the default generation target: the calendar month
// after now. The batch normally runs near month end for the month ahead.
func (s *generationService) NextMonth(now time.Time) time.Time {
	return utils.AddMonths(utils.MonthStart(now), 1)
}

// Generate creates one charge per active lease for the given reference
// month. Leases that already have a charge for the month are skipped, so
// re-running the batch is harmless. One lease failing never aborts the
// run; it is counted and reported in the run log.
func (s *generationService) Generate(ctx context.Context, month time.Time, executedBy string) (*BatchResult, error) {
	month = utils.MonthStart(month)
	logger.EnterMethod("generationService.Generate", "month", month.Format("2006-01"), "executedBy", executedBy)
	started := time.Now()

	leases, err := s.leaseRepo.ListActive(ctx)
	if err != nil {
		logger.ExitMethodWithError("generationService.Generate", err)
		return nil, err
	}

	result := &BatchResult{Month: month}
	for i := range leases {
		lease := &leases[i]

		// Charges are only due for months the lease actually covers.
		// These are counted apart from existing-charge skips so the run
		// log's skipped figure only reflects idempotent reruns.
		if utils.MonthStart(lease.StartDate).After(month) || utils.MonthStart(lease.EndDate).Before(month) {
			result.OutOfPeriod++
			continue
		}

		exists, err := s.chargeRepo.ExistsForMonth(ctx, lease.ID, month)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", lease.ContractNumber, err))
			continue
		}
		if exists {
			result.Skipped++
			continue
		}

		charge, err := s.billing.CreateCharge(ctx, lease.ID, month, time.Time{})
		if err != nil {
			// A concurrent run may have created the charge between the
			// existence check and the insert; that is a skip, not a failure.
			if errors.Is(err, domain.ErrConflict) {
				result.Skipped++
				continue
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", lease.ContractNumber, err))
			logger.Error("charge generation failed for lease", "contract", lease.ContractNumber, "error", err)
			continue
		}
		result.Created++
		result.ChargeIDs = append(result.ChargeIDs, charge.ID)
	}

	runLog := &domain.RunLog{
		ReferenceMonth:  month,
		CreatedCount:    result.Created,
		SkippedExisting: result.Skipped,
		ProcessedLeases: len(leases),
		Success:         result.Failed == 0,
		Message: fmt.Sprintf("created %d, skipped %d, out of period %d, failed %d in %s",
			result.Created, result.Skipped, result.OutOfPeriod, result.Failed, time.Since(started).Round(time.Millisecond)),
		ErrorDetail: joinErrors(result.Errors),
		ExecutedBy:  executedBy,
		ExecutedAt:  started,
	}
	if err := s.runLogRepo.Append(ctx, runLog); err != nil {
		logger.Error("run log append failed", "error", err)
	}

	logger.ExitMethod("generationService.Generate",
		"created", result.Created, "skipped", result.Skipped,
		"outOfPeriod", result.OutOfPeriod, "failed", result.Failed)
	return result, nil
}

func joinErrors(errs []string) string {
	if len(errs) == 0 {
		return ""
	}
	out := errs[0]
	for _, e := range errs[1:] {
		out += "; " + e
	}
	return out
}
