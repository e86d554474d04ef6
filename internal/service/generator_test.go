package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"habitat-pro/internal/domain"
)

func activeLease(id int32, contract string, start, end time.Time) domain.Lease {
	return domain.Lease{
		ID:             id,
		PropertyID:     1,
		TenantID:       1,
		ContractNumber: contract,
		Status:         domain.LeaseStatusActive,
		StartDate:      start,
		EndDate:        end,
		MonthlyRent:    decimal.NewFromInt(2000),
		DueDay:         10,
	}
}

func TestGenerationService_NextMonth(t *testing.T) {
	svc := NewGenerationService(nil, nil, nil, nil)

	now := time.Date(2026, 2, 25, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), svc.NextMonth(now))

	dec := time.Date(2026, 12, 28, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), svc.NextMonth(dec))
}

func TestGenerationService_Generate(t *testing.T) {
	ctx := context.Background()
	month := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	termStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	termEnd := time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC)

	t.Run("CreatesSkipsAndIsolatesFailures", func(t *testing.T) {
		billing := new(MockBillingService)
		leaseRepo := new(MockLeaseRepo)
		chargeRepo := new(MockChargeRepo)
		runLogRepo := new(MockRunLogRepo)
		svc := NewGenerationService(billing, leaseRepo, chargeRepo, runLogRepo)

		leases := []domain.Lease{
			activeLease(1, "CTR-2025-0001", termStart, termEnd),
			activeLease(2, "CTR-2025-0002", termStart, termEnd), // charge already exists
			activeLease(3, "CTR-2025-0003", termStart, termEnd), // creation fails
			// Ends before the reference month: nothing owed.
			activeLease(4, "CTR-2024-0004", termStart, time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)),
		}
		leaseRepo.On("ListActive", ctx).Return(leases, nil)

		chargeRepo.On("ExistsForMonth", ctx, int32(1), month).Return(false, nil)
		chargeRepo.On("ExistsForMonth", ctx, int32(2), month).Return(true, nil)
		chargeRepo.On("ExistsForMonth", ctx, int32(3), month).Return(false, nil)

		billing.On("CreateCharge", ctx, int32(1), month, time.Time{}).
			Return(&domain.Charge{ID: 101, LeaseID: 1}, nil)
		billing.On("CreateCharge", ctx, int32(3), month, time.Time{}).
			Return(nil, assert.AnError)

		runLogRepo.On("Append", ctx, mock.MatchedBy(func(log *domain.RunLog) bool {
			return log.ReferenceMonth.Equal(month) &&
				log.CreatedCount == 1 &&
				log.SkippedExisting == 1 &&
				log.ProcessedLeases == 4 &&
				!log.Success &&
				log.ExecutedBy == "test"
		})).Return(nil)

		result, err := svc.Generate(ctx, month, "test")
		assert.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 1, result.OutOfPeriod)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []int32{101}, result.ChargeIDs)
		assert.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "CTR-2025-0003")

		billing.AssertExpectations(t)
		leaseRepo.AssertExpectations(t)
		chargeRepo.AssertExpectations(t)
		runLogRepo.AssertExpectations(t)
	})

	t.Run("ConcurrentConflictIsSkip", func(t *testing.T) {
		billing := new(MockBillingService)
		leaseRepo := new(MockLeaseRepo)
		chargeRepo := new(MockChargeRepo)
		runLogRepo := new(MockRunLogRepo)
		svc := NewGenerationService(billing, leaseRepo, chargeRepo, runLogRepo)

		leaseRepo.On("ListActive", ctx).
			Return([]domain.Lease{activeLease(1, "CTR-2025-0001", termStart, termEnd)}, nil)
		chargeRepo.On("ExistsForMonth", ctx, int32(1), month).Return(false, nil)
		billing.On("CreateCharge", ctx, int32(1), month, time.Time{}).
			Return(nil, domain.ErrConflict)
		runLogRepo.On("Append", ctx, mock.MatchedBy(func(log *domain.RunLog) bool {
			return log.Success && log.SkippedExisting == 1 && log.CreatedCount == 0
		})).Return(nil)

		result, err := svc.Generate(ctx, month, "scheduler")
		assert.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 0, result.Failed)
	})

	t.Run("MidMonthInputNormalized", func(t *testing.T) {
		billing := new(MockBillingService)
		leaseRepo := new(MockLeaseRepo)
		chargeRepo := new(MockChargeRepo)
		runLogRepo := new(MockRunLogRepo)
		svc := NewGenerationService(billing, leaseRepo, chargeRepo, runLogRepo)

		leaseRepo.On("ListActive", ctx).Return([]domain.Lease{}, nil)
		runLogRepo.On("Append", ctx, mock.MatchedBy(func(log *domain.RunLog) bool {
			return log.ReferenceMonth.Equal(month)
		})).Return(nil)

		result, err := svc.Generate(ctx, time.Date(2026, 3, 17, 9, 0, 0, 0, time.UTC), "test")
		assert.NoError(t, err)
		assert.Equal(t, month, result.Month)
	})

	t.Run("ListFailureAborts", func(t *testing.T) {
		leaseRepo := new(MockLeaseRepo)
		svc := NewGenerationService(new(MockBillingService), leaseRepo, new(MockChargeRepo), new(MockRunLogRepo))

		leaseRepo.On("ListActive", ctx).Return(nil, assert.AnError)

		_, err := svc.Generate(ctx, month, "test")
		assert.Error(t, err)
	})
}
