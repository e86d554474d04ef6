package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RenewalStatus string

const (
	RenewalStatusDraft           RenewalStatus = "DRAFT"
	RenewalStatusPendingLandlord RenewalStatus = "PENDING_LANDLORD"
	RenewalStatusPendingTenant   RenewalStatus = "PENDING_TENANT"
	RenewalStatusApproved        RenewalStatus = "APPROVED"
	RenewalStatusRejected        RenewalStatus = "REJECTED"
	RenewalStatusCancelled       RenewalStatus = "CANCELLED"
)

// Terminal reports whether no further transition is possible.
func (s RenewalStatus) Terminal() bool {
	switch s {
	case RenewalStatusApproved, RenewalStatusRejected, RenewalStatusCancelled:
		return true
	}
	return false
}

type RenewalDecision string

const (
	RenewalDecisionApprove RenewalDecision = "APPROVE"
	RenewalDecisionReject  RenewalDecision = "REJECT"
)

// RenewalProposal tracks the two-party approval workflow that precedes a
// follow-on lease. Landlord and tenant each hold an independent token.
type RenewalProposal struct {
	ID      int32 `json:"id"`
	LeaseID int32 `json:"lease_id"` // original lease being renewed

	NewStartDate   time.Time       `json:"new_start_date"`
	NewEndDate     time.Time       `json:"new_end_date"`
	NewMonthlyRent decimal.Decimal `json:"new_monthly_rent"`

	NewGuarantee       GuaranteeKind   `json:"new_guarantee"`
	NewGuarantorID     *int32          `json:"new_guarantor_id,omitempty"`
	NewDepositMonths   int             `json:"new_deposit_months,omitempty"`
	NewDepositValue    decimal.Decimal `json:"new_deposit_value,omitempty"`
	NewInsurancePolicy string          `json:"new_insurance_policy,omitempty"`

	Status RenewalStatus `json:"status"`

	LandlordToken          string     `json:"-"`
	LandlordTokenExpiresAt time.Time  `json:"-"`
	LandlordDecidedAt      *time.Time `json:"landlord_decided_at,omitempty"`
	LandlordIP             string     `json:"landlord_ip,omitempty"`

	TenantToken          string     `json:"-"`
	TenantTokenExpiresAt time.Time  `json:"-"`
	TenantDecidedAt      *time.Time `json:"tenant_decided_at,omitempty"`
	TenantIP             string     `json:"tenant_ip,omitempty"`

	RefusalReason string `json:"refusal_reason,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
