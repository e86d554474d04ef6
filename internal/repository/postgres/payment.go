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

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

const paymentColumns = `id, charge_id, numero_pagamento, paid_on, paid_amount,
	method, state, confirmed_at, COALESCE(reversal_reason, ''), COALESCE(recorded_by, ''),
	token, token_expires_at, is_active, created_at, updated_at`

// Record applies one payment to a charge: the charge row is locked, the
// payment number minted, the payment inserted as CONFIRMED and the charge
// status recomputed, all within one transaction.
func (r *paymentRepository) Record(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Record", "chargeID", p.ChargeID, "amount", p.PaidAmount)

	prefix := utils.YYYYMM(p.PaidOn)
	now := time.Now()

	var lastErr error
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		err = r.recordInTx(ctx, tx, p, prefix, now)
		if err != nil {
			_ = tx.Rollback()
			if isRetryableViolation(err) {
				lastErr = err
				continue
			}
			logger.ExitMethodWithError("paymentRepository.Record", err, "chargeID", p.ChargeID)
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logger.ExitMethod("paymentRepository.Record", "paymentID", p.ID, "number", p.Number)
		return nil
	}
	err := fmt.Errorf("%w: numero_pagamento for %s: %v", domain.ErrSequenceExhausted, prefix, lastErr)
	logger.ExitMethodWithError("paymentRepository.Record", err, "chargeID", p.ChargeID)
	return err
}

func (r *paymentRepository) recordInTx(ctx context.Context, tx *sql.Tx, p *domain.Payment, prefix string, now time.Time) error {
	charge, err := lockCharge(ctx, tx, p.ChargeID)
	if err != nil {
		return err
	}
	if charge.Status == domain.ChargeStatusCancelled {
		return domain.ErrChargeCancelled
	}

	seq, err := nextSequence(ctx, tx, "payment-"+prefix)
	if err != nil {
		return err
	}
	p.Number = fmt.Sprintf("PAY-%s-%04d", prefix, seq)

	confirmedAt := now
	err = tx.QueryRowContext(ctx,
		`INSERT INTO payments (charge_id, numero_pagamento, paid_on, paid_amount,
			method, state, confirmed_at, recorded_by,
			token, token_expires_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, true, $11, $11)
		RETURNING id, created_at, updated_at`,
		p.ChargeID, p.Number, p.PaidOn, p.PaidAmount,
		p.Method, domain.PaymentStateConfirmed, confirmedAt, p.RecordedBy,
		p.Token, p.TokenExpiresAt, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.State = domain.PaymentStateConfirmed
	p.ConfirmedAt = &confirmedAt
	p.IsActive = true

	return recomputeChargeLocked(ctx, tx, charge, now)
}

// Reverse flips a confirmed payment to REVERSED and recomputes the
// charge, clearing settled_at when the charge is no longer covered.
func (r *paymentRepository) Reverse(ctx context.Context, paymentID int32, reason string) (*domain.Payment, error) {
	logger.EnterMethod("paymentRepository.Reverse", "paymentID", paymentID)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p := &domain.Payment{}
	err = scanPayment(tx.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, paymentID), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.State != domain.PaymentStateConfirmed {
		return nil, fmt.Errorf("%w: payment %s is %s, only CONFIRMED payments can be reversed",
			domain.ErrInvalidState, p.Number, p.State)
	}

	charge, err := lockCharge(ctx, tx, p.ChargeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE payments SET state = $1, reversal_reason = $2, updated_at = $3 WHERE id = $4`,
		domain.PaymentStateReversed, reason, now, paymentID); err != nil {
		return nil, err
	}
	p.State = domain.PaymentStateReversed
	p.ReversalReason = reason

	if err := recomputeChargeLocked(ctx, tx, charge, now); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.ExitMethod("paymentRepository.Reverse", "paymentID", paymentID)
	return p, nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) GetByToken(ctx context.Context, token string) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := scanPayment(r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE token = $1 AND is_active = true`, token), p)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *paymentRepository) ListByCharge(ctx context.Context, chargeID int32) ([]domain.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE charge_id = $1 ORDER BY paid_on, id`,
		chargeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := scanPayment(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *paymentRepository) ConfirmedTotal(ctx context.Context, chargeID int32) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(paid_amount), 0) FROM payments WHERE charge_id = $1 AND state = $2`,
		chargeID, domain.PaymentStateConfirmed).Scan(&total)
	return total, err
}

// lockCharge loads a charge under a row-level exclusive lock. The status
// extension is read separately because FOR UPDATE cannot lock the
// nullable side of an outer join.
func lockCharge(ctx context.Context, tx *sql.Tx, chargeID int32) (*domain.Charge, error) {
	c := &domain.Charge{}
	err := scanCharge(tx.QueryRowContext(ctx,
		`SELECT `+chargeColumns+chargeFrom+` WHERE c.id = $1 FOR UPDATE OF c`, chargeID), c)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// recomputeChargeLocked derives paid_amount, status and settled_at from
// the confirmed payments of an already-locked charge.
func recomputeChargeLocked(ctx context.Context, tx *sql.Tx, c *domain.Charge, now time.Time) error {
	var paid decimal.Decimal
	var lastPaidOn sql.NullTime
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(paid_amount), 0), MAX(paid_on)
		FROM payments WHERE charge_id = $1 AND state = $2`,
		c.ID, domain.PaymentStateConfirmed).Scan(&paid, &lastPaidOn)
	if err != nil {
		return err
	}

	total := c.Total()
	today := utils.DateOnly(now)

	var status domain.ChargeStatus
	switch {
	case paid.GreaterThanOrEqual(total) && total.IsPositive():
		status = domain.ChargeStatusPaid
	case paid.IsPositive():
		status = domain.ChargeStatusPartial
	case utils.DateOnly(c.DueDate).Before(today):
		status = domain.ChargeStatusOverdue
	default:
		status = domain.ChargeStatusPending
	}

	if status == domain.ChargeStatusPaid {
		// Freeze arrears at the date of the covering payment. The
		// COALESCE keeps an existing settled_at untouched (set-once).
		settledAt := now
		if lastPaidOn.Valid {
			settledAt = lastPaidOn.Time
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO charge_status_ext (charge_id, settled_at) VALUES ($1, $2)
			ON CONFLICT (charge_id) DO UPDATE
			SET settled_at = COALESCE(charge_status_ext.settled_at, EXCLUDED.settled_at)`,
			c.ID, settledAt); err != nil {
			return err
		}
	} else {
		// No longer covered: clear settled_at so a later covering
		// payment records its own settlement date.
		if _, err := tx.ExecContext(ctx,
			`UPDATE charge_status_ext SET settled_at = NULL WHERE charge_id = $1`,
			c.ID); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE charges SET paid_amount = $1, status = $2, updated_at = $3 WHERE id = $4`,
		paid, status, now, c.ID)
	if err != nil {
		return err
	}
	c.PaidAmount = paid
	c.Status = status
	return nil
}

func scanPayment(row rowScanner, p *domain.Payment) error {
	return row.Scan(&p.ID, &p.ChargeID, &p.Number, &p.PaidOn, &p.PaidAmount,
		&p.Method, &p.State, &p.ConfirmedAt, &p.ReversalReason, &p.RecordedBy,
		&p.Token, &p.TokenExpiresAt, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
}
