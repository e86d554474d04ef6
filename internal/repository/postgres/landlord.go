package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type landlordRepository struct {
	db *sql.DB
}

func NewLandlordRepository(db *sql.DB) repository.LandlordRepository {
	return &landlordRepository{db: db}
}

const landlordColumns = `id, kind, name, tax_id, email, phone,
	street, number, complement, district, city, state, zip_code,
	is_active, created_at, updated_at`

func (r *landlordRepository) Create(ctx context.Context, l *domain.Landlord) error {
	query := `INSERT INTO landlords (kind, name, tax_id, email, phone,
			street, number, complement, district, city, state, zip_code,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, true, $13, $13)
		RETURNING id, created_at, updated_at`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		l.Kind, l.Name, l.TaxID, l.Email, l.Phone,
		l.Address.Street, l.Address.Number, l.Address.Complement, l.Address.District,
		l.Address.City, l.Address.State, l.Address.ZipCode, now,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	if violatesConstraint(err, "tax_id") {
		return domain.ErrConflict
	}
	if err == nil {
		l.IsActive = true
	}
	return err
}

func (r *landlordRepository) GetByID(ctx context.Context, id int32) (*domain.Landlord, error) {
	l := &domain.Landlord{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+landlordColumns+` FROM landlords WHERE id = $1`, id,
	).Scan(&l.ID, &l.Kind, &l.Name, &l.TaxID, &l.Email, &l.Phone,
		&l.Address.Street, &l.Address.Number, &l.Address.Complement, &l.Address.District,
		&l.Address.City, &l.Address.State, &l.Address.ZipCode,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (r *landlordRepository) Update(ctx context.Context, l *domain.Landlord) error {
	query := `UPDATE landlords SET kind = $1, name = $2, tax_id = $3, email = $4, phone = $5,
			street = $6, number = $7, complement = $8, district = $9, city = $10,
			state = $11, zip_code = $12, updated_at = $13
		WHERE id = $14`
	res, err := r.db.ExecContext(ctx, query,
		l.Kind, l.Name, l.TaxID, l.Email, l.Phone,
		l.Address.Street, l.Address.Number, l.Address.Complement, l.Address.District,
		l.Address.City, l.Address.State, l.Address.ZipCode, time.Now(), l.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *landlordRepository) List(ctx context.Context) ([]domain.Landlord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+landlordColumns+` FROM landlords WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Landlord
	for rows.Next() {
		var l domain.Landlord
		if err := rows.Scan(&l.ID, &l.Kind, &l.Name, &l.TaxID, &l.Email, &l.Phone,
			&l.Address.Street, &l.Address.Number, &l.Address.Complement, &l.Address.District,
			&l.Address.City, &l.Address.State, &l.Address.ZipCode,
			&l.IsActive, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *landlordRepository) Deactivate(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE landlords SET is_active = false, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

// requireRow maps zero affected rows to ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
