package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"habitat-pro/internal/domain"
)

type LandlordRepository interface {
	Create(ctx context.Context, landlord *domain.Landlord) error
	GetByID(ctx context.Context, id int32) (*domain.Landlord, error)
	Update(ctx context.Context, landlord *domain.Landlord) error
	List(ctx context.Context) ([]domain.Landlord, error)
	Deactivate(ctx context.Context, id int32) error
}

type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id int32) (*domain.Tenant, error)
	Update(ctx context.Context, tenant *domain.Tenant) error
	List(ctx context.Context) ([]domain.Tenant, error)
	Deactivate(ctx context.Context, id int32) error
}

type GuarantorRepository interface {
	Create(ctx context.Context, guarantor *domain.Guarantor) error
	GetByID(ctx context.Context, id int32) (*domain.Guarantor, error)
	Update(ctx context.Context, guarantor *domain.Guarantor) error
	Deactivate(ctx context.Context, id int32) error
}

type PropertyRepository interface {
	Create(ctx context.Context, property *domain.Property) error
	GetByID(ctx context.Context, id int32) (*domain.Property, error)
	Update(ctx context.Context, property *domain.Property) error
	UpdateStatus(ctx context.Context, id int32, status domain.PropertyStatus) error
	ListByLandlord(ctx context.Context, landlordID int32) ([]domain.Property, error)
	Deactivate(ctx context.Context, id int32) error
}

type LeaseRepository interface {
	// Create mints the contract number (CTR-YYYY-NNNN) from the sequence
	// allocator and inserts the lease in one transaction.
	Create(ctx context.Context, lease *domain.Lease) error
	GetByID(ctx context.Context, id int32) (*domain.Lease, error)
	Update(ctx context.Context, lease *domain.Lease) error
	ListActive(ctx context.Context) ([]domain.Lease, error)
	// ListExpiringWithoutProposal returns active leases ending on or before
	// the given date that have no open or approved renewal proposal.
	ListExpiringWithoutProposal(ctx context.Context, by time.Time) ([]domain.Lease, error)
}

type ChargeRepository interface {
	// Create inserts the charge in its own transaction, minting the
	// numero_comanda from the charge-YYYYMM sequence. A second charge for
	// the same (lease, reference month) fails with domain.ErrConflict.
	Create(ctx context.Context, charge *domain.Charge) error
	GetByID(ctx context.Context, id int32) (*domain.Charge, error)
	GetByToken(ctx context.Context, token string) (*domain.Charge, error)
	ExistsForMonth(ctx context.Context, leaseID int32, month time.Time) (bool, error)
	Update(ctx context.Context, charge *domain.Charge) error
	Cancel(ctx context.Context, id int32) error
	RenewToken(ctx context.Context, id int32, token string, expiresAt time.Time) error
	// SetLateCharges replaces (never accumulates) the persisted late fee
	// and interest.
	SetLateCharges(ctx context.Context, id int32, lateFee, interest decimal.Decimal) error
	// MarkOverdue flips PENDING or PARTIAL charges past their due date to
	// OVERDUE. Returns how many rows changed.
	MarkOverdue(ctx context.Context, today time.Time) (int64, error)
	ListOpen(ctx context.Context) ([]domain.ChargeNotice, error)
	ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.ChargeNotice, error)
	ListByStatus(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error)
	// MarkNotified flips the phase flag and appends one notification log
	// row per delivery channel in the same transaction.
	MarkNotified(ctx context.Context, chargeID int32, phase domain.NotificationPhase, logs ...*domain.NotificationLog) error
}

type PaymentRepository interface {
	// Record locks the charge row, mints PAY-YYYYMM-NNNN, inserts the
	// payment as CONFIRMED and recomputes the charge status, all in one
	// transaction.
	Record(ctx context.Context, payment *domain.Payment) error
	// Reverse flips CONFIRMED to REVERSED and recomputes the charge
	// status, clearing settled_at when the charge is no longer covered.
	Reverse(ctx context.Context, paymentID int32, reason string) (*domain.Payment, error)
	GetByID(ctx context.Context, id int32) (*domain.Payment, error)
	GetByToken(ctx context.Context, token string) (*domain.Payment, error)
	ListByCharge(ctx context.Context, chargeID int32) ([]domain.Payment, error)
	ConfirmedTotal(ctx context.Context, chargeID int32) (decimal.Decimal, error)
}

type SequenceRepository interface {
	// Next returns the next value of the named counter, creating it at
	// zero when absent. Safe under concurrent callers.
	Next(ctx context.Context, name string) (int, error)
}

type RenewalRepository interface {
	Create(ctx context.Context, proposal *domain.RenewalProposal) error
	GetByID(ctx context.Context, id int32) (*domain.RenewalProposal, error)
	GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error)
	GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error)
	Update(ctx context.Context, proposal *domain.RenewalProposal) error
	HasOpenForLease(ctx context.Context, leaseID int32) (bool, error)
}

type RunLogRepository interface {
	Append(ctx context.Context, log *domain.RunLog) error
	ListRecent(ctx context.Context, limit int32) ([]domain.RunLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

type NotificationLogRepository interface {
	Append(ctx context.Context, log *domain.NotificationLog) error
	ListByCharge(ctx context.Context, chargeID int32) ([]domain.NotificationLog, error)
}
