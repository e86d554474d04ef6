package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type leaseRepository struct {
	db *sql.DB
}

func NewLeaseRepository(db *sql.DB) repository.LeaseRepository {
	return &leaseRepository{db: db}
}

const leaseColumns = `id, property_id, tenant_id, contract_number, status,
	start_date, end_date, monthly_rent, due_day,
	guarantee, guarantor_id, deposit_months, deposit_value, insurance_policy,
	is_active, created_at, updated_at`

// Create mints the CTR-YYYY-NNNN contract number from the lease-YYYY
// counter and inserts the row in the same transaction, so a failed insert
// at most leaves a gap in the sequence.
func (r *leaseRepository) Create(ctx context.Context, l *domain.Lease) error {
	now := time.Now()
	year := l.StartDate.Year()

	var lastErr error
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		seq, err := nextSequence(ctx, tx, fmt.Sprintf("lease-%04d", year))
		if err != nil {
			_ = tx.Rollback()
			if isRetryableViolation(err) {
				lastErr = err
				continue
			}
			return err
		}
		l.ContractNumber = fmt.Sprintf("CTR-%04d-%04d", year, seq)

		err = tx.QueryRowContext(ctx,
			`INSERT INTO leases (property_id, tenant_id, contract_number, status,
				start_date, end_date, monthly_rent, due_day,
				guarantee, guarantor_id, deposit_months, deposit_value, insurance_policy,
				is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, true, $14, $14)
			RETURNING id, created_at, updated_at`,
			l.PropertyID, l.TenantID, l.ContractNumber, l.Status,
			l.StartDate, l.EndDate, l.MonthlyRent, l.DueDay,
			l.Guarantee, l.GuarantorID, l.DepositMonths, l.DepositValue, l.InsurancePolicy,
			now,
		).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			_ = tx.Rollback()
			if violatesConstraint(err, "contract_number") {
				lastErr = err
				continue
			}
			return err
		}
		if err := syncPropertyStatus(ctx, tx, l.PropertyID, l.Status); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		l.IsActive = true
		return nil
	}
	return fmt.Errorf("%w: contract number for year %d: %v",
		domain.ErrSequenceExhausted, year, lastErr)
}

func (r *leaseRepository) GetByID(ctx context.Context, id int32) (*domain.Lease, error) {
	l := &domain.Lease{}
	err := scanLease(r.db.QueryRowContext(ctx,
		`SELECT `+leaseColumns+` FROM leases WHERE id = $1`, id), l)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *leaseRepository) Update(ctx context.Context, l *domain.Lease) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE leases SET status = $1, start_date = $2, end_date = $3,
			monthly_rent = $4, due_day = $5, guarantee = $6, guarantor_id = $7,
			deposit_months = $8, deposit_value = $9, insurance_policy = $10,
			is_active = $11, updated_at = $12
		WHERE id = $13`
	res, err := tx.ExecContext(ctx, query,
		l.Status, l.StartDate, l.EndDate,
		l.MonthlyRent, l.DueDay, l.Guarantee, l.GuarantorID,
		l.DepositMonths, l.DepositValue, l.InsurancePolicy,
		l.IsActive, time.Now(), l.ID)
	if err != nil {
		return err
	}
	if err := requireRow(res); err != nil {
		return err
	}
	if err := syncPropertyStatus(ctx, tx, l.PropertyID, l.Status); err != nil {
		return err
	}
	return tx.Commit()
}

// syncPropertyStatus keeps the property listing in step with its leases:
// an active lease occupies the property, a terminated one frees it unless
// another active lease remains.
func syncPropertyStatus(ctx context.Context, tx *sql.Tx, propertyID int32, status domain.LeaseStatus) error {
	switch status {
	case domain.LeaseStatusActive:
		_, err := tx.ExecContext(ctx,
			`UPDATE properties SET status = $1, updated_at = $2 WHERE id = $3`,
			domain.PropertyStatusOccupied, time.Now(), propertyID)
		return err
	case domain.LeaseStatusTerminated:
		_, err := tx.ExecContext(ctx,
			`UPDATE properties SET status = $1, updated_at = $2
			WHERE id = $3 AND NOT EXISTS (
				SELECT 1 FROM leases
				WHERE property_id = $3 AND status = $4 AND is_active = true)`,
			domain.PropertyStatusAvailable, time.Now(), propertyID,
			domain.LeaseStatusActive)
		return err
	}
	return nil
}

func (r *leaseRepository) ListActive(ctx context.Context) ([]domain.Lease, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leaseColumns+` FROM leases
		WHERE status = $1 AND is_active = true ORDER BY id`,
		domain.LeaseStatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

func (r *leaseRepository) ListExpiringWithoutProposal(ctx context.Context, by time.Time) ([]domain.Lease, error) {
	// Open or approved proposals suppress renewal detection; rejected and
	// cancelled ones do not.
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+leaseColumns+` FROM leases l
		WHERE l.status = $1 AND l.is_active = true AND l.end_date <= $2
		  AND NOT EXISTS (
			SELECT 1 FROM renewal_proposals rp
			WHERE rp.lease_id = l.id AND rp.status NOT IN ($3, $4)
		  )
		ORDER BY l.end_date`,
		domain.LeaseStatusActive, by,
		domain.RenewalStatusRejected, domain.RenewalStatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeases(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLease(row rowScanner, l *domain.Lease) error {
	return row.Scan(&l.ID, &l.PropertyID, &l.TenantID, &l.ContractNumber, &l.Status,
		&l.StartDate, &l.EndDate, &l.MonthlyRent, &l.DueDay,
		&l.Guarantee, &l.GuarantorID, &l.DepositMonths, &l.DepositValue, &l.InsurancePolicy,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt)
}

func collectLeases(rows *sql.Rows) ([]domain.Lease, error) {
	var out []domain.Lease
	for rows.Next() {
		var l domain.Lease
		if err := scanLease(rows, &l); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
