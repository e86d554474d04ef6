package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type LeaseStatus string

const (
	LeaseStatusDraft      LeaseStatus = "DRAFT"
	LeaseStatusActive     LeaseStatus = "ACTIVE"
	LeaseStatusTerminated LeaseStatus = "TERMINATED"
)

type GuaranteeKind string

const (
	GuaranteeKindNone      GuaranteeKind = "NONE"
	GuaranteeKindGuarantor GuaranteeKind = "GUARANTOR"
	GuaranteeKindDeposit   GuaranteeKind = "DEPOSIT"
	GuaranteeKindInsurance GuaranteeKind = "INSURANCE"
)

type Lease struct {
	ID             int32       `json:"id"`
	PropertyID     int32       `json:"property_id"`
	TenantID       int32       `json:"tenant_id"`
	ContractNumber string      `json:"contract_number"` // CTR-YYYY-NNNN
	Status         LeaseStatus `json:"status"`
	StartDate      time.Time   `json:"start_date"`
	EndDate        time.Time   `json:"end_date"`

	MonthlyRent decimal.Decimal `json:"monthly_rent"`
	DueDay      int             `json:"due_day"` // 1-31, clamped to month length

	Guarantee       GuaranteeKind   `json:"guarantee"`
	GuarantorID     *int32          `json:"guarantor_id,omitempty"`
	DepositMonths   int             `json:"deposit_months,omitempty"`
	DepositValue    decimal.Decimal `json:"deposit_value,omitempty"`
	InsurancePolicy string          `json:"insurance_policy,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DepositTotal returns the cash guarantee owed up front: rent times the
// agreed number of deposit months. Zero for other guarantee kinds.
func (l *Lease) DepositTotal() decimal.Decimal {
	if l.Guarantee != GuaranteeKindDeposit || l.DepositMonths <= 0 {
		return decimal.Zero
	}
	return l.MonthlyRent.Mul(decimal.NewFromInt(int64(l.DepositMonths)))
}

// DaysToExpiry returns how many days remain until the lease end date.
// Negative when the lease has already ended.
func (l *Lease) DaysToExpiry(today time.Time) int {
	return int(l.EndDate.Sub(today).Hours() / 24)
}
