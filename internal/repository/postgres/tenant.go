package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/repository"
)

type tenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) repository.TenantRepository {
	return &tenantRepository{db: db}
}

const tenantColumns = `id, kind, name, tax_id, email, phone,
	street, number, complement, district, city, state, zip_code,
	guarantor_id, is_active, created_at, updated_at`

func (r *tenantRepository) Create(ctx context.Context, t *domain.Tenant) error {
	query := `INSERT INTO tenants (kind, name, tax_id, email, phone,
			street, number, complement, district, city, state, zip_code,
			guarantor_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, true, $14, $14)
		RETURNING id, created_at, updated_at`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		t.Kind, t.Name, t.TaxID, t.Email, t.Phone,
		t.Address.Street, t.Address.Number, t.Address.Complement, t.Address.District,
		t.Address.City, t.Address.State, t.Address.ZipCode, t.GuarantorID, now,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
	if violatesConstraint(err, "tax_id") {
		return domain.ErrConflict
	}
	if err == nil {
		t.IsActive = true
	}
	return err
}

func (r *tenantRepository) GetByID(ctx context.Context, id int32) (*domain.Tenant, error) {
	t := &domain.Tenant{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id,
	).Scan(&t.ID, &t.Kind, &t.Name, &t.TaxID, &t.Email, &t.Phone,
		&t.Address.Street, &t.Address.Number, &t.Address.Complement, &t.Address.District,
		&t.Address.City, &t.Address.State, &t.Address.ZipCode,
		&t.GuarantorID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *tenantRepository) Update(ctx context.Context, t *domain.Tenant) error {
	query := `UPDATE tenants SET kind = $1, name = $2, tax_id = $3, email = $4, phone = $5,
			street = $6, number = $7, complement = $8, district = $9, city = $10,
			state = $11, zip_code = $12, guarantor_id = $13, updated_at = $14
		WHERE id = $15`
	res, err := r.db.ExecContext(ctx, query,
		t.Kind, t.Name, t.TaxID, t.Email, t.Phone,
		t.Address.Street, t.Address.Number, t.Address.Complement, t.Address.District,
		t.Address.City, t.Address.State, t.Address.ZipCode, t.GuarantorID, time.Now(), t.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *tenantRepository) List(ctx context.Context) ([]domain.Tenant, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tenant
	for rows.Next() {
		var t domain.Tenant
		if err := rows.Scan(&t.ID, &t.Kind, &t.Name, &t.TaxID, &t.Email, &t.Phone,
			&t.Address.Street, &t.Address.Number, &t.Address.Complement, &t.Address.District,
			&t.Address.City, &t.Address.State, &t.Address.ZipCode,
			&t.GuarantorID, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *tenantRepository) Deactivate(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tenants SET is_active = false, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type guarantorRepository struct {
	db *sql.DB
}

func NewGuarantorRepository(db *sql.DB) repository.GuarantorRepository {
	return &guarantorRepository{db: db}
}

func (r *guarantorRepository) Create(ctx context.Context, g *domain.Guarantor) error {
	query := `INSERT INTO guarantors (name, tax_id, email, phone,
			street, number, complement, district, city, state, zip_code,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, true, $12, $12)
		RETURNING id, created_at, updated_at`
	now := time.Now()
	err := r.db.QueryRowContext(ctx, query,
		g.Name, g.TaxID, g.Email, g.Phone,
		g.Address.Street, g.Address.Number, g.Address.Complement, g.Address.District,
		g.Address.City, g.Address.State, g.Address.ZipCode, now,
	).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
	if violatesConstraint(err, "tax_id") {
		return domain.ErrConflict
	}
	if err == nil {
		g.IsActive = true
	}
	return err
}

func (r *guarantorRepository) GetByID(ctx context.Context, id int32) (*domain.Guarantor, error) {
	g := &domain.Guarantor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, tax_id, email, phone,
			street, number, complement, district, city, state, zip_code,
			is_active, created_at, updated_at
		FROM guarantors WHERE id = $1`, id,
	).Scan(&g.ID, &g.Name, &g.TaxID, &g.Email, &g.Phone,
		&g.Address.Street, &g.Address.Number, &g.Address.Complement, &g.Address.District,
		&g.Address.City, &g.Address.State, &g.Address.ZipCode,
		&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *guarantorRepository) Update(ctx context.Context, g *domain.Guarantor) error {
	query := `UPDATE guarantors SET name = $1, tax_id = $2, email = $3, phone = $4,
			street = $5, number = $6, complement = $7, district = $8, city = $9,
			state = $10, zip_code = $11, updated_at = $12
		WHERE id = $13`
	res, err := r.db.ExecContext(ctx, query,
		g.Name, g.TaxID, g.Email, g.Phone,
		g.Address.Street, g.Address.Number, g.Address.Complement, g.Address.District,
		g.Address.City, g.Address.State, g.Address.ZipCode, time.Now(), g.ID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *guarantorRepository) Deactivate(ctx context.Context, id int32) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guarantors SET is_active = false, updated_at = $1 WHERE id = $2`,
		time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res)
}
