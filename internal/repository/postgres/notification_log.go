package postgres

import (
	"context"
	"database/sql"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type notificationLogRepository struct {
	db *sql.DB
}

func NewNotificationLogRepository(db *sql.DB) repository.NotificationLogRepository {
	return &notificationLogRepository{db: db}
}

// Append records a send attempt without touching any phase flag. Failed
// sends go through here so the phase stays eligible for retry.
func (r *notificationLogRepository) Append(ctx context.Context, log *domain.NotificationLog) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO notification_logs (charge_id, phase, channel, recipient, outcome, detail, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		log.ChargeID, log.Phase, log.Channel, log.Recipient, log.Outcome, log.Detail, log.SentAt,
	).Scan(&log.ID)
}

func (r *notificationLogRepository) ListByCharge(ctx context.Context, chargeID int32) ([]domain.NotificationLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, charge_id, phase, channel, recipient, outcome, COALESCE(detail, ''), sent_at
		FROM notification_logs WHERE charge_id = $1 ORDER BY sent_at DESC`, chargeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.NotificationLog
	for rows.Next() {
		var l domain.NotificationLog
		if err := rows.Scan(&l.ID, &l.ChargeID, &l.Phase, &l.Channel, &l.Recipient,
			&l.Outcome, &l.Detail, &l.SentAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
