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

type renewalService struct {
	renewalRepo repository.RenewalRepository
	leaseRepo   repository.LeaseRepository
	tokenDays   int
}

func NewRenewalService(
	renewalRepo repository.RenewalRepository,
	leaseRepo repository.LeaseRepository,
	tokenDays int,
) RenewalService {
	return &renewalService{
		renewalRepo: renewalRepo,
		leaseRepo:   leaseRepo,
		tokenDays:   tokenDays,
	}
}

// CreateProposal drafts a renewal for an active lease. Only one open or
// approved proposal may exist per lease at a time; rejected and
// cancelled ones do not block a new attempt.
func (s *renewalService) CreateProposal(ctx context.Context, p *domain.RenewalProposal) (*domain.RenewalProposal, error) {
	logger.EnterMethod("renewalService.CreateProposal", "leaseID", p.LeaseID)

	lease, err := s.leaseRepo.GetByID(ctx, p.LeaseID)
	if err != nil {
		return nil, err
	}
	if lease.Status != domain.LeaseStatusActive {
		return nil, fmt.Errorf("%w: lease %s is not active", domain.ErrValidation, lease.ContractNumber)
	}
	open, err := s.renewalRepo.HasOpenForLease(ctx, p.LeaseID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, fmt.Errorf("%w: lease %s already has an open renewal proposal", domain.ErrConflict, lease.ContractNumber)
	}

	if p.NewStartDate.IsZero() {
		// Default: the follow-on term starts the day after the current one ends.
		p.NewStartDate = utils.DateOnly(lease.EndDate).AddDate(0, 0, 1)
	}
	if p.NewEndDate.IsZero() {
		p.NewEndDate = p.NewStartDate.AddDate(1, 0, -1)
	}
	if !p.NewEndDate.After(p.NewStartDate) {
		return nil, fmt.Errorf("%w: renewal end date must follow its start date", domain.ErrValidation)
	}
	if !p.NewMonthlyRent.IsPositive() {
		return nil, fmt.Errorf("%w: renewal rent must be positive", domain.ErrValidation)
	}
	if p.NewGuarantee == "" {
		p.NewGuarantee = lease.Guarantee
	}

	p.Status = domain.RenewalStatusDraft
	if err := s.renewalRepo.Create(ctx, p); err != nil {
		logger.ExitMethodWithError("renewalService.CreateProposal", err, "leaseID", p.LeaseID)
		return nil, err
	}
	logger.ExitMethod("renewalService.CreateProposal", "proposalID", p.ID)
	return p, nil
}

// SubmitToLandlord moves a draft to PENDING_LANDLORD and mints the
// landlord's approval token.
func (s *renewalService) SubmitToLandlord(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error) {
	p, err := s.renewalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.RenewalStatusDraft {
		return nil, fmt.Errorf("%w: proposal %d is %s, expected DRAFT", domain.ErrInvalidState, proposalID, p.Status)
	}
	p.LandlordToken, p.LandlordTokenExpiresAt = security.Mint(s.tokenDays)
	p.Status = domain.RenewalStatusPendingLandlord
	if err := s.renewalRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// LandlordDecides applies the landlord's decision via their token.
// Replaying the same decision on an already-decided proposal is a no-op;
// a conflicting replay is ErrInvalidState.
func (s *renewalService) LandlordDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error) {
	p, err := s.resolve(ctx, token, partyLandlord)
	if err != nil {
		return nil, err
	}

	if p.Status != domain.RenewalStatusPendingLandlord {
		if replayMatches(p, partyLandlord, decision) {
			return p, nil
		}
		return nil, fmt.Errorf("%w: proposal %d is %s", domain.ErrInvalidState, p.ID, p.Status)
	}

	now := time.Now()
	p.LandlordDecidedAt = &now
	p.LandlordIP = ip
	switch decision {
	case domain.RenewalDecisionApprove:
		p.Status = domain.RenewalStatusPendingTenant
		p.TenantToken, p.TenantTokenExpiresAt = security.Mint(s.tokenDays)
	case domain.RenewalDecisionReject:
		p.Status = domain.RenewalStatusRejected
		p.RefusalReason = reason
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	if err := s.renewalRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	logger.Info("landlord decided on renewal", "proposalID", p.ID, "decision", decision)
	return p, nil
}

// TenantDecides applies the tenant's decision via their token. Approval
// closes the workflow and creates the follow-on lease.
func (s *renewalService) TenantDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error) {
	p, err := s.resolve(ctx, token, partyTenant)
	if err != nil {
		return nil, err
	}

	if p.Status != domain.RenewalStatusPendingTenant {
		if replayMatches(p, partyTenant, decision) {
			return p, nil
		}
		return nil, fmt.Errorf("%w: proposal %d is %s", domain.ErrInvalidState, p.ID, p.Status)
	}

	now := time.Now()
	p.TenantDecidedAt = &now
	p.TenantIP = ip
	switch decision {
	case domain.RenewalDecisionApprove:
		p.Status = domain.RenewalStatusApproved
	case domain.RenewalDecisionReject:
		p.Status = domain.RenewalStatusRejected
		p.RefusalReason = reason
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", domain.ErrValidation, decision)
	}

	if err := s.renewalRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	if p.Status == domain.RenewalStatusApproved {
		if err := s.createFollowOnLease(ctx, p); err != nil {
			logger.Error("follow-on lease creation failed", "proposalID", p.ID, "error", err)
			return p, err
		}
	}
	logger.Info("tenant decided on renewal", "proposalID", p.ID, "decision", decision)
	return p, nil
}

// createFollowOnLease books the new term with the approved conditions.
// The old lease keeps running until its own end date.
func (s *renewalService) createFollowOnLease(ctx context.Context, p *domain.RenewalProposal) error {
	old, err := s.leaseRepo.GetByID(ctx, p.LeaseID)
	if err != nil {
		return err
	}
	lease := &domain.Lease{
		PropertyID:      old.PropertyID,
		TenantID:        old.TenantID,
		Status:          domain.LeaseStatusActive,
		StartDate:       p.NewStartDate,
		EndDate:         p.NewEndDate,
		MonthlyRent:     p.NewMonthlyRent,
		DueDay:          old.DueDay,
		Guarantee:       p.NewGuarantee,
		GuarantorID:     p.NewGuarantorID,
		DepositMonths:   p.NewDepositMonths,
		DepositValue:    p.NewDepositValue,
		InsurancePolicy: p.NewInsurancePolicy,
	}
	return s.leaseRepo.Create(ctx, lease)
}

func (s *renewalService) CancelProposal(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error) {
	p, err := s.renewalRepo.GetByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if p.Status.Terminal() {
		return nil, fmt.Errorf("%w: proposal %d is already %s", domain.ErrInvalidState, proposalID, p.Status)
	}
	p.Status = domain.RenewalStatusCancelled
	if err := s.renewalRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *renewalService) GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	return s.resolve(ctx, token, partyLandlord)
}

func (s *renewalService) GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	return s.resolve(ctx, token, partyTenant)
}

// DetectExpiring lists active leases ending within the window that have
// no open or approved renewal yet.
func (s *renewalService) DetectExpiring(ctx context.Context, within time.Duration) ([]domain.Lease, error) {
	by := utils.DateOnly(time.Now().Add(within))
	return s.leaseRepo.ListExpiringWithoutProposal(ctx, by)
}

type renewalParty int

const (
	partyLandlord renewalParty = iota
	partyTenant
)

func (s *renewalService) resolve(ctx context.Context, token string, party renewalParty) (*domain.RenewalProposal, error) {
	var (
		p   *domain.RenewalProposal
		err error
	)
	if party == partyLandlord {
		p, err = s.renewalRepo.GetByLandlordToken(ctx, token)
	} else {
		p, err = s.renewalRepo.GetByTenantToken(ctx, token)
	}
	if err != nil {
		return nil, err
	}

	stored, expiresAt := p.LandlordToken, p.LandlordTokenExpiresAt
	if party == partyTenant {
		stored, expiresAt = p.TenantToken, p.TenantTokenExpiresAt
	}
	if err := security.Validate(stored, expiresAt, token); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return p, err
		}
		return nil, domain.ErrNotFound
	}
	return p, nil
}

// replayMatches reports whether a repeated decision submission agrees
// with the decision already recorded for the party.
func replayMatches(p *domain.RenewalProposal, party renewalParty, decision domain.RenewalDecision) bool {
	decided := p.LandlordDecidedAt
	if party == partyTenant {
		decided = p.TenantDecidedAt
	}
	if decided == nil {
		return false
	}
	switch p.Status {
	case domain.RenewalStatusRejected:
		return decision == domain.RenewalDecisionReject
	case domain.RenewalStatusApproved:
		return decision == domain.RenewalDecisionApprove
	case domain.RenewalStatusPendingTenant:
		// Landlord already approved; tenant has not decided yet.
		return party == partyLandlord && decision == domain.RenewalDecisionApprove
	}
	return false
}
