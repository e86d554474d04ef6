package postgres

import (
	"context"
	"database/sql"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type runLogRepository struct {
	db *sql.DB
}

func NewRunLogRepository(db *sql.DB) repository.RunLogRepository {
	return &runLogRepository{db: db}
}

func (r *runLogRepository) Append(ctx context.Context, log *domain.RunLog) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO run_logs (reference_month, created_count, skipped_existing,
			processed_leases, success, message, error_detail, executed_by, executed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`,
		log.ReferenceMonth, log.CreatedCount, log.SkippedExisting,
		log.ProcessedLeases, log.Success, log.Message, log.ErrorDetail,
		log.ExecutedBy, log.ExecutedAt,
	).Scan(&log.ID)
}

func (r *runLogRepository) ListRecent(ctx context.Context, limit int32) ([]domain.RunLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, reference_month, created_count, skipped_existing,
			processed_leases, success, message, COALESCE(error_detail, ''), executed_by, executed_at
		FROM run_logs ORDER BY executed_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunLog
	for rows.Next() {
		var l domain.RunLog
		if err := rows.Scan(&l.ID, &l.ReferenceMonth, &l.CreatedCount, &l.SkippedExisting,
			&l.ProcessedLeases, &l.Success, &l.Message, &l.ErrorDetail,
			&l.ExecutedBy, &l.ExecutedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *runLogRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM run_logs WHERE executed_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
