package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"habitat-pro/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.LandlordRepository
	repository.TenantRepository
	repository.GuarantorRepository
	repository.PropertyRepository
	repository.LeaseRepository
	repository.ChargeRepository
	repository.PaymentRepository
	repository.SequenceRepository
	repository.RenewalRepository
	repository.RunLogRepository
	repository.NotificationLogRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                        db,
		LandlordRepository:        NewLandlordRepository(db),
		TenantRepository:          NewTenantRepository(db),
		GuarantorRepository:       NewGuarantorRepository(db),
		PropertyRepository:        NewPropertyRepository(db),
		LeaseRepository:           NewLeaseRepository(db),
		ChargeRepository:          NewChargeRepository(db),
		PaymentRepository:         NewPaymentRepository(db),
		SequenceRepository:        NewSequenceRepository(db),
		RenewalRepository:         NewRenewalRepository(db),
		RunLogRepository:          NewRunLogRepository(db),
		NotificationLogRepository: NewNotificationLogRepository(db),
	}
}

// isRetryableViolation reports whether the error is a unique violation or
// a serialization failure, the two cases the allocator retries on.
func isRetryableViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" || pqErr.Code == "40001"
	}
	return false
}

// violatesConstraint reports a unique violation on a constraint whose name
// contains the given fragment.
func violatesConstraint(err error, fragment string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return strings.Contains(strings.ToLower(string(pqErr.Constraint)), fragment)
	}
	return false
}
