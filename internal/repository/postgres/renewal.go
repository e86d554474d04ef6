package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type renewalRepository struct {
	db *sql.DB
}

func NewRenewalRepository(db *sql.DB) repository.RenewalRepository {
	return &renewalRepository{db: db}
}

const renewalColumns = `id, lease_id, new_start_date, new_end_date, new_monthly_rent,
	new_guarantee, new_guarantor_id, new_deposit_months, new_deposit_value,
	COALESCE(new_insurance_policy, ''), status,
	COALESCE(landlord_token, ''), landlord_token_expires_at, landlord_decided_at, COALESCE(landlord_ip, ''),
	COALESCE(tenant_token, ''), tenant_token_expires_at, tenant_decided_at, COALESCE(tenant_ip, ''),
	COALESCE(refusal_reason, ''), is_active, created_at, updated_at`

func (r *renewalRepository) Create(ctx context.Context, p *domain.RenewalProposal) error {
	now := time.Now()
	if p.Status == "" {
		p.Status = domain.RenewalStatusDraft
	}
	return r.db.QueryRowContext(ctx,
		`INSERT INTO renewal_proposals (lease_id, new_start_date, new_end_date, new_monthly_rent,
			new_guarantee, new_guarantor_id, new_deposit_months, new_deposit_value, new_insurance_policy,
			status, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $11)
		RETURNING id, created_at, updated_at`,
		p.LeaseID, p.NewStartDate, p.NewEndDate, p.NewMonthlyRent,
		p.NewGuarantee, p.NewGuarantorID, p.NewDepositMonths, p.NewDepositValue, p.NewInsurancePolicy,
		p.Status, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (r *renewalRepository) GetByID(ctx context.Context, id int32) (*domain.RenewalProposal, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *renewalRepository) GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	return r.getOne(ctx, `WHERE landlord_token = $1 AND is_active = true`, token)
}

func (r *renewalRepository) GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	return r.getOne(ctx, `WHERE tenant_token = $1 AND is_active = true`, token)
}

func (r *renewalRepository) getOne(ctx context.Context, where string, arg any) (*domain.RenewalProposal, error) {
	p := &domain.RenewalProposal{}
	var landlordExp, tenantExp sql.NullTime
	err := r.db.QueryRowContext(ctx,
		`SELECT `+renewalColumns+` FROM renewal_proposals `+where, arg,
	).Scan(&p.ID, &p.LeaseID, &p.NewStartDate, &p.NewEndDate, &p.NewMonthlyRent,
		&p.NewGuarantee, &p.NewGuarantorID, &p.NewDepositMonths, &p.NewDepositValue,
		&p.NewInsurancePolicy, &p.Status,
		&p.LandlordToken, &landlordExp, &p.LandlordDecidedAt, &p.LandlordIP,
		&p.TenantToken, &tenantExp, &p.TenantDecidedAt, &p.TenantIP,
		&p.RefusalReason, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if landlordExp.Valid {
		p.LandlordTokenExpiresAt = landlordExp.Time
	}
	if tenantExp.Valid {
		p.TenantTokenExpiresAt = tenantExp.Time
	}
	return p, nil
}

func (r *renewalRepository) Update(ctx context.Context, p *domain.RenewalProposal) error {
	query := `UPDATE renewal_proposals SET
			new_start_date = $1, new_end_date = $2, new_monthly_rent = $3,
			new_guarantee = $4, new_guarantor_id = $5, new_deposit_months = $6,
			new_deposit_value = $7, new_insurance_policy = $8,
			status = $9,
			landlord_token = NULLIF($10, ''), landlord_token_expires_at = $11,
			landlord_decided_at = $12, landlord_ip = $13,
			tenant_token = NULLIF($14, ''), tenant_token_expires_at = $15,
			tenant_decided_at = $16, tenant_ip = $17,
			refusal_reason = $18, is_active = $19, updated_at = $20
		WHERE id = $21`
	res, err := r.db.ExecContext(ctx, query,
		p.NewStartDate, p.NewEndDate, p.NewMonthlyRent,
		p.NewGuarantee, p.NewGuarantorID, p.NewDepositMonths,
		p.NewDepositValue, p.NewInsurancePolicy,
		p.Status,
		p.LandlordToken, nullableTime(p.LandlordTokenExpiresAt),
		p.LandlordDecidedAt, p.LandlordIP,
		p.TenantToken, nullableTime(p.TenantTokenExpiresAt),
		p.TenantDecidedAt, p.TenantIP,
		p.RefusalReason, p.IsActive, time.Now(), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *renewalRepository) HasOpenForLease(ctx context.Context, leaseID int32) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM renewal_proposals
			WHERE lease_id = $1 AND status NOT IN ($2, $3)
		)`,
		leaseID, domain.RenewalStatusRejected, domain.RenewalStatusCancelled).Scan(&exists)
	return exists, err
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
