package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/utils"
)

type chargeRepository struct {
	db *sql.DB
}

func NewChargeRepository(db *sql.DB) repository.ChargeRepository {
	return &chargeRepository{db: db}
}

const chargeColumns = `c.id, c.lease_id, c.numero_comanda, c.reference_month, c.due_date,
	c.historical_rent, c.condo_fee, c.iptu, c.admin_fee,
	c.other_debits, c.other_credits, c.discount, c.late_fee, c.interest,
	c.paid_amount, c.status,
	c.sent_7d, c.sent_1d, c.sent_due, c.overdue_notice_days,
	c.token, c.token_expires_at, COALESCE(c.observations, ''),
	ext.settled_at, c.is_active, c.created_at, c.updated_at`

const chargeFrom = ` FROM charges c
	LEFT JOIN charge_status_ext ext ON ext.charge_id = c.id`

// Create inserts a charge in its own transaction, minting numero_comanda
// from the charge-YYYYMM counter. The unique (lease_id, reference_month)
// index is what makes batch generation idempotent.
func (r *chargeRepository) Create(ctx context.Context, c *domain.Charge) error {
	logger.EnterMethod("chargeRepository.Create", "leaseID", c.LeaseID, "referenceMonth", c.ReferenceMonth.Format("2006-01"))

	prefix := utils.YYYYMM(c.ReferenceMonth)
	now := time.Now()

	var lastErr error
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		seq, err := nextSequence(ctx, tx, "charge-"+prefix)
		if err != nil {
			_ = tx.Rollback()
			if isRetryableViolation(err) {
				lastErr = err
				continue
			}
			logger.ExitMethodWithError("chargeRepository.Create", err, "leaseID", c.LeaseID)
			return err
		}
		c.Number = fmt.Sprintf("%s-%04d", prefix, seq)

		err = tx.QueryRowContext(ctx,
			`INSERT INTO charges (lease_id, numero_comanda, reference_month, due_date,
				historical_rent, condo_fee, iptu, admin_fee,
				other_debits, other_credits, discount, late_fee, interest,
				paid_amount, status,
				sent_7d, sent_1d, sent_due, overdue_notice_days,
				token, token_expires_at, observations, is_active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
				$14, $15, false, false, false, 0, $16, $17, $18, true, $19, $19)
			RETURNING id, created_at, updated_at`,
			c.LeaseID, c.Number, c.ReferenceMonth, c.DueDate,
			c.HistoricalRent, c.CondoFee, c.IPTU, c.AdminFee,
			c.OtherDebits, c.OtherCredits, c.Discount, c.LateFee, c.Interest,
			c.PaidAmount, c.Status,
			c.Token, c.TokenExpiresAt, c.Observations, now,
		).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			_ = tx.Rollback()
			if violatesConstraint(err, "lease") {
				logger.ExitMethodWithError("chargeRepository.Create", domain.ErrConflict, "leaseID", c.LeaseID)
				return domain.ErrConflict
			}
			if violatesConstraint(err, "numero") {
				lastErr = err
				continue
			}
			logger.ExitMethodWithError("chargeRepository.Create", err, "leaseID", c.LeaseID)
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		c.IsActive = true
		logger.ExitMethod("chargeRepository.Create", "chargeID", c.ID, "number", c.Number)
		return nil
	}
	err := fmt.Errorf("%w: numero_comanda for %s: %v", domain.ErrSequenceExhausted, prefix, lastErr)
	logger.ExitMethodWithError("chargeRepository.Create", err, "leaseID", c.LeaseID)
	return err
}

func (r *chargeRepository) GetByID(ctx context.Context, id int32) (*domain.Charge, error) {
	c := &domain.Charge{}
	err := scanCharge(r.db.QueryRowContext(ctx,
		`SELECT `+chargeColumns+chargeFrom+` WHERE c.id = $1`, id), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *chargeRepository) GetByToken(ctx context.Context, token string) (*domain.Charge, error) {
	c := &domain.Charge{}
	err := scanCharge(r.db.QueryRowContext(ctx,
		`SELECT `+chargeColumns+chargeFrom+` WHERE c.token = $1 AND c.is_active = true`, token), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *chargeRepository) ExistsForMonth(ctx context.Context, leaseID int32, month time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM charges WHERE lease_id = $1 AND reference_month = $2)`,
		leaseID, month).Scan(&exists)
	return exists, err
}

// Update rewrites the editable amount fields. Historical rent, number and
// reference month are immutable after creation.
func (r *chargeRepository) Update(ctx context.Context, c *domain.Charge) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charges SET due_date = $1, condo_fee = $2, iptu = $3, admin_fee = $4,
			other_debits = $5, other_credits = $6, discount = $7,
			observations = $8, updated_at = $9
		WHERE id = $10`,
		c.DueDate, c.CondoFee, c.IPTU, c.AdminFee,
		c.OtherDebits, c.OtherCredits, c.Discount,
		c.Observations, time.Now(), c.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chargeRepository) Cancel(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charges SET status = $1, updated_at = $2 WHERE id = $3 AND status <> $1`,
		domain.ChargeStatusCancelled, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chargeRepository) RenewToken(ctx context.Context, id int32, token string, expiresAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charges SET token = $1, token_expires_at = $2, updated_at = $3 WHERE id = $4`,
		token, expiresAt, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chargeRepository) SetLateCharges(ctx context.Context, id int32, lateFee, interest decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charges SET late_fee = $1, interest = $2, updated_at = $3 WHERE id = $4`,
		lateFee, interest, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *chargeRepository) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE charges SET status = $1, updated_at = $2
		WHERE status IN ($3, $4) AND due_date < $5 AND is_active = true`,
		domain.ChargeStatusOverdue, time.Now(),
		domain.ChargeStatusPending, domain.ChargeStatusPartial, today)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const noticeColumns = chargeColumns + `,
	l.contract_number, t.name, COALESCE(t.email, ''), COALESCE(t.phone, ''),
	p.code, p.street || ', ' || p.number || ' - ' || p.city || '/' || p.state`

const noticeFrom = chargeFrom + `
	JOIN leases l ON l.id = c.lease_id
	JOIN tenants t ON t.id = l.tenant_id
	JOIN properties p ON p.id = l.property_id`

func (r *chargeRepository) ListOpen(ctx context.Context) ([]domain.ChargeNotice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noticeColumns+noticeFrom+`
		WHERE c.status IN ($1, $2, $3) AND c.is_active = true
		ORDER BY c.due_date, c.id`,
		domain.ChargeStatusPending, domain.ChargeStatusPartial, domain.ChargeStatusOverdue)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotices(rows)
}

func (r *chargeRepository) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.ChargeNotice, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+noticeColumns+noticeFrom+`
		WHERE c.status IN ($1, $2, $3) AND c.is_active = true
		  AND c.due_date BETWEEN $4 AND $5
		ORDER BY c.due_date, c.id`,
		domain.ChargeStatusPending, domain.ChargeStatusPartial, domain.ChargeStatusOverdue,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotices(rows)
}

func (r *chargeRepository) ListByStatus(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+chargeColumns+chargeFrom+`
		WHERE c.status = $1 AND c.is_active = true
		ORDER BY c.due_date, c.id`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Charge
	for rows.Next() {
		var c domain.Charge
		if err := scanCharge(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// MarkNotified flips the phase flag and appends one log row per channel
// atomically. The guarded UPDATE enforces the flip-once rule: when the
// flag was already set the whole operation aborts with ErrConflict.
func (r *chargeRepository) MarkNotified(ctx context.Context, chargeID int32, phase domain.NotificationPhase, logs ...*domain.NotificationLog) error {
	flagUpdate, args := phaseFlagUpdate(chargeID, phase)
	if flagUpdate == "" {
		return fmt.Errorf("%w: unknown notification phase %q", domain.ErrValidation, phase)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, flagUpdate, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: phase %s already sent for charge %d", domain.ErrConflict, phase, chargeID)
	}

	for _, log := range logs {
		err = tx.QueryRowContext(ctx,
			`INSERT INTO notification_logs (charge_id, phase, channel, recipient, outcome, detail, sent_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			log.ChargeID, log.Phase, log.Channel, log.Recipient, log.Outcome, log.Detail, log.SentAt,
		).Scan(&log.ID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// phaseFlagUpdate builds the guarded flag update for a phase. Overdue
// phases advance overdue_notice_days monotonically instead of a boolean.
func phaseFlagUpdate(chargeID int32, phase domain.NotificationPhase) (string, []any) {
	now := time.Now()
	switch phase {
	case domain.NotificationPhase7D:
		return `UPDATE charges SET sent_7d = true, updated_at = $1 WHERE id = $2 AND sent_7d = false`,
			[]any{now, chargeID}
	case domain.NotificationPhase1D:
		return `UPDATE charges SET sent_1d = true, updated_at = $1 WHERE id = $2 AND sent_1d = false`,
			[]any{now, chargeID}
	case domain.NotificationPhaseDue:
		return `UPDATE charges SET sent_due = true, updated_at = $1 WHERE id = $2 AND sent_due = false`,
			[]any{now, chargeID}
	}
	for _, bucket := range domain.OverdueNoticeBuckets {
		if phase == domain.OverduePhase(bucket) {
			return `UPDATE charges SET overdue_notice_days = $1, updated_at = $2 WHERE id = $3 AND overdue_notice_days < $1`,
				[]any{bucket, now, chargeID}
		}
	}
	return "", nil
}

func scanCharge(row rowScanner, c *domain.Charge) error {
	return row.Scan(&c.ID, &c.LeaseID, &c.Number, &c.ReferenceMonth, &c.DueDate,
		&c.HistoricalRent, &c.CondoFee, &c.IPTU, &c.AdminFee,
		&c.OtherDebits, &c.OtherCredits, &c.Discount, &c.LateFee, &c.Interest,
		&c.PaidAmount, &c.Status,
		&c.Sent7D, &c.Sent1D, &c.SentDue, &c.OverdueNoticeDays,
		&c.Token, &c.TokenExpiresAt, &c.Observations,
		&c.SettledAt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
}

func collectNotices(rows *sql.Rows) ([]domain.ChargeNotice, error) {
	var out []domain.ChargeNotice
	for rows.Next() {
		var n domain.ChargeNotice
		c := &n.Charge
		if err := rows.Scan(&c.ID, &c.LeaseID, &c.Number, &c.ReferenceMonth, &c.DueDate,
			&c.HistoricalRent, &c.CondoFee, &c.IPTU, &c.AdminFee,
			&c.OtherDebits, &c.OtherCredits, &c.Discount, &c.LateFee, &c.Interest,
			&c.PaidAmount, &c.Status,
			&c.Sent7D, &c.Sent1D, &c.SentDue, &c.OverdueNoticeDays,
			&c.Token, &c.TokenExpiresAt, &c.Observations,
			&c.SettledAt, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
			&n.ContractNumber, &n.TenantName, &n.TenantEmail, &n.TenantPhone,
			&n.PropertyCode, &n.PropertyAddress); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
