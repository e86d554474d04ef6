package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type propertyRepository struct {
	db *sql.DB
}

func NewPropertyRepository(db *sql.DB) repository.PropertyRepository {
	return &propertyRepository{db: db}
}

const propertyColumns = `id, landlord_id, code, type, status,
	street, number, complement, district, city, state, zip_code,
	condo_fee, is_active, created_at, updated_at`

func (r *propertyRepository) Create(ctx context.Context, p *domain.Property) error {
	query := `INSERT INTO properties (landlord_id, code, type, status,
			street, number, complement, district, city, state, zip_code,
			condo_fee, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, true, $13, $13)
		RETURNING id, created_at, updated_at`
	now := time.Now()
	if p.Status == "" {
		p.Status = domain.PropertyStatusAvailable
	}
	err := r.db.QueryRowContext(ctx, query,
		p.LandlordID, p.Code, p.Type, p.Status,
		p.Address.Street, p.Address.Number, p.Address.Complement, p.Address.District,
		p.Address.City, p.Address.State, p.Address.ZipCode, p.CondoFee, now,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if violatesConstraint(err, "code") {
		return domain.ErrConflict
	}
	if err == nil {
		p.IsActive = true
	}
	return err
}

func (r *propertyRepository) GetByID(ctx context.Context, id int32) (*domain.Property, error) {
	p := &domain.Property{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+propertyColumns+` FROM properties WHERE id = $1`, id,
	).Scan(&p.ID, &p.LandlordID, &p.Code, &p.Type, &p.Status,
		&p.Address.Street, &p.Address.Number, &p.Address.Complement, &p.Address.District,
		&p.Address.City, &p.Address.State, &p.Address.ZipCode,
		&p.CondoFee, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *propertyRepository) Update(ctx context.Context, p *domain.Property) error {
	query := `UPDATE properties SET landlord_id = $1, code = $2, type = $3, status = $4,
			street = $5, number = $6, complement = $7, district = $8, city = $9,
			state = $10, zip_code = $11, condo_fee = $12, updated_at = $13
		WHERE id = $14`
	res, err := r.db.ExecContext(ctx, query,
		p.LandlordID, p.Code, p.Type, p.Status,
		p.Address.Street, p.Address.Number, p.Address.Complement, p.Address.District,
		p.Address.City, p.Address.State, p.Address.ZipCode, p.CondoFee, time.Now(), p.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *propertyRepository) UpdateStatus(ctx context.Context, id int32, status domain.PropertyStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *propertyRepository) ListByLandlord(ctx context.Context, landlordID int32) ([]domain.Property, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+propertyColumns+` FROM properties
		WHERE landlord_id = $1 AND is_active = true ORDER BY code`, landlordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Property
	for rows.Next() {
		var p domain.Property
		if err := rows.Scan(&p.ID, &p.LandlordID, &p.Code, &p.Type, &p.Status,
			&p.Address.Street, &p.Address.Number, &p.Address.Complement, &p.Address.District,
			&p.Address.City, &p.Address.State, &p.Address.ZipCode,
			&p.CondoFee, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepository) Deactivate(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE properties SET is_active = false, status = $1, updated_at = $2 WHERE id = $3`,
		domain.PropertyStatusInactive, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
