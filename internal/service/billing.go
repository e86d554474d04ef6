package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/security"
	"habitat-pro/internal/utils"
)

type billingService struct {
	chargeRepo   repository.ChargeRepository
	leaseRepo    repository.LeaseRepository
	propertyRepo repository.PropertyRepository
	policy       domain.LatePolicy
	tokenDays    int
}

func NewBillingService(
	chargeRepo repository.ChargeRepository,
	leaseRepo repository.LeaseRepository,
	propertyRepo repository.PropertyRepository,
	policy domain.LatePolicy,
	tokenDays int,
) BillingService {
	return &billingService{
		chargeRepo:   chargeRepo,
		leaseRepo:    leaseRepo,
		propertyRepo: propertyRepo,
		policy:       policy,
		tokenDays:    tokenDays,
	}
}

// CreateCharge builds one charge for a lease and reference month,
// snapshotting the lease rent and property condo fee at creation time.
// dueDate may be zero; it then defaults to the lease due day clamped to
// the month length.
func (s *billingService) CreateCharge(ctx context.Context, leaseID int32, month, dueDate time.Time) (*domain.Charge, error) {
	logger.EnterMethod("billingService.CreateCharge", "leaseID", leaseID, "month", month.Format("2006-01"))

	lease, err := s.leaseRepo.GetByID(ctx, leaseID)
	if err != nil {
		return nil, err
	}
	if lease.Status != domain.LeaseStatusActive {
		return nil, fmt.Errorf("%w: lease %s is not active", domain.ErrValidation, lease.ContractNumber)
	}

	property, err := s.propertyRepo.GetByID(ctx, lease.PropertyID)
	if err != nil {
		return nil, err
	}

	month = utils.MonthStart(month)
	if dueDate.IsZero() {
		dueDate = utils.ClampDay(month, lease.DueDay)
	}

	token, expiresAt := security.Mint(s.tokenDays)
	charge := &domain.Charge{
		LeaseID:        lease.ID,
		ReferenceMonth: month,
		DueDate:        utils.DateOnly(dueDate),
		// The full contracted rent, even for a partial first or last
		// month. Any day-based adjustment is an office-entered discount.
		HistoricalRent: lease.MonthlyRent,
		CondoFee:       property.CondoFee,
		Status:         domain.ChargeStatusPending,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}

	if err := s.chargeRepo.Create(ctx, charge); err != nil {
		logger.ExitMethodWithError("billingService.CreateCharge", err, "leaseID", leaseID)
		return nil, err
	}
	logger.ExitMethod("billingService.CreateCharge", "chargeID", charge.ID, "number", charge.Number)
	return charge, nil
}

func (s *billingService) GetCharge(ctx context.Context, id int32) (*domain.Charge, error) {
	return s.chargeRepo.GetByID(ctx, id)
}

// GetChargeByToken resolves the public charge page. An unknown token is
// ErrNotFound; a known but stale one is ErrTokenExpired so the page can
// offer a renewal contact instead of a bare 404.
func (s *billingService) GetChargeByToken(ctx context.Context, token string) (*domain.Charge, error) {
	charge, err := s.chargeRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := security.Validate(charge.Token, charge.TokenExpiresAt, token); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return charge, err
		}
		return nil, domain.ErrNotFound
	}
	return charge, nil
}

func (s *billingService) UpdateCharge(ctx context.Context, charge *domain.Charge) error {
	existing, err := s.chargeRepo.GetByID(ctx, charge.ID)
	if err != nil {
		return err
	}
	if !existing.IsOpen() {
		return fmt.Errorf("%w: charge %s is %s", domain.ErrInvalidState, existing.Number, existing.Status)
	}
	return s.chargeRepo.Update(ctx, charge)
}

func (s *billingService) CancelCharge(ctx context.Context, id int32) error {
	charge, err := s.chargeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if charge.Status == domain.ChargeStatusPaid {
		return fmt.Errorf("%w: cannot cancel a settled charge", domain.ErrInvalidState)
	}
	return s.chargeRepo.Cancel(ctx, id)
}

// RenewChargeToken replaces the opaque token, invalidating any link sent
// previously.
func (s *billingService) RenewChargeToken(ctx context.Context, id int32) (string, error) {
	token, expiresAt := security.Mint(s.tokenDays)
	if err := s.chargeRepo.RenewToken(ctx, id, token, expiresAt); err != nil {
		return "", err
	}
	return token, nil
}

// ApplyLateCharges recomputes and persists the late fee and interest for
// one charge. The persisted values are replaced, never accumulated, so
// the call is idempotent for a given day.
func (s *billingService) ApplyLateCharges(ctx context.Context, chargeID int32) (*domain.Charge, error) {
	charge, err := s.chargeRepo.GetByID(ctx, chargeID)
	if err != nil {
		return nil, err
	}
	if !charge.IsOpen() {
		return nil, fmt.Errorf("%w: charge %s is %s", domain.ErrInvalidState, charge.Number, charge.Status)
	}
	lateFee, interest := charge.LateCharges(time.Now(), s.policy)
	if charge.LateFee.Equal(lateFee) && charge.Interest.Equal(interest) {
		return charge, nil
	}
	if err := s.chargeRepo.SetLateCharges(ctx, chargeID, lateFee, interest); err != nil {
		return nil, err
	}
	charge.LateFee = lateFee
	charge.Interest = interest
	return charge, nil
}

// RefreshOverdue flips past-due open charges to OVERDUE and recomputes
// their penalties. It runs from the daily job and before every
// notification sweep.
func (s *billingService) RefreshOverdue(ctx context.Context) (int, error) {
	logger.EnterMethod("billingService.RefreshOverdue")

	flipped, err := s.chargeRepo.MarkOverdue(ctx, utils.DateOnly(time.Now()))
	if err != nil {
		logger.ExitMethodWithError("billingService.RefreshOverdue", err)
		return 0, err
	}

	overdue, err := s.chargeRepo.ListByStatus(ctx, domain.ChargeStatusOverdue)
	if err != nil {
		return int(flipped), err
	}
	updated := 0
	for i := range overdue {
		charge := &overdue[i]
		lateFee, interest := charge.LateCharges(time.Now(), s.policy)
		if charge.LateFee.Equal(lateFee) && charge.Interest.Equal(interest) {
			continue
		}
		if err := s.chargeRepo.SetLateCharges(ctx, charge.ID, lateFee, interest); err != nil {
			logger.Error("late charge update failed", "chargeID", charge.ID, "error", err)
			continue
		}
		updated++
	}
	logger.ExitMethod("billingService.RefreshOverdue", "flipped", flipped, "updated", updated)
	return updated, nil
}

func (s *billingService) ListCharges(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error) {
	return s.chargeRepo.ListByStatus(ctx, status)
}
