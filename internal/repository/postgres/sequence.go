package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
)

const maxSequenceAttempts = 8

type sequenceRepository struct {
	db *sql.DB
}

func NewSequenceRepository(db *sql.DB) repository.SequenceRepository {
	return &sequenceRepository{db: db}
}

// Next allocates the next counter value in its own transaction, retrying
// on unique-violation and serialization errors.
func (r *sequenceRepository) Next(ctx context.Context, name string) (int, error) {
	var lastErr error
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return 0, err
		}
		value, err := nextSequence(ctx, tx, name)
		if err != nil {
			_ = tx.Rollback()
			if isRetryableViolation(err) {
				lastErr = err
				logger.Warn("sequence allocation retry", "name", name, "attempt", attempt+1, "error", err)
				continue
			}
			return 0, err
		}
		if err := tx.Commit(); err != nil {
			if isRetryableViolation(err) {
				lastErr = err
				continue
			}
			return 0, err
		}
		return value, nil
	}
	return 0, fmt.Errorf("%w: counter %q after %d attempts: %v",
		domain.ErrSequenceExhausted, name, maxSequenceAttempts, lastErr)
}

// nextSequence increments the named counter inside the given transaction,
// holding a row-level exclusive lock so concurrent allocators serialize.
// The row is created at zero when absent.
func nextSequence(ctx context.Context, tx *sql.Tx, name string) (int, error) {
	var current int
	err := tx.QueryRowContext(ctx,
		`SELECT last_value FROM sequence_counters WHERE name = $1 FOR UPDATE`,
		name).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		// Two creators can race here; the unique index rejects the loser
		// and the caller's retry loop picks it up.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sequence_counters (name, last_value) VALUES ($1, 0)`,
			name); err != nil {
			return 0, err
		}
	} else if err != nil {
		return 0, err
	}

	var next int
	err = tx.QueryRowContext(ctx,
		`UPDATE sequence_counters SET last_value = last_value + 1 WHERE name = $1 RETURNING last_value`,
		name).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next, nil
}
