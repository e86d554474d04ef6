package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ChargeStatus string

const (
	ChargeStatusPending   ChargeStatus = "PENDING"
	ChargeStatusPartial   ChargeStatus = "PARTIAL"
	ChargeStatusPaid      ChargeStatus = "PAID"
	ChargeStatusOverdue   ChargeStatus = "OVERDUE"
	ChargeStatusCancelled ChargeStatus = "CANCELLED"
)

// LatePolicy holds the charge penalty configuration. Percentages are
// expressed as plain numbers (10 means 10%).
type LatePolicy struct {
	LateFeePct         decimal.Decimal
	MonthlyInterestPct decimal.Decimal
}

// Charge is the monthly bill (comanda) of one lease for one reference month.
type Charge struct {
	ID             int32     `json:"id"`
	LeaseID        int32     `json:"lease_id"`
	Number         string    `json:"numero_comanda"` // YYYYMM-NNNN
	ReferenceMonth time.Time `json:"reference_month"` // first day of month
	DueDate        time.Time `json:"due_date"`

	// HistoricalRent is the lease rent snapshotted at creation time. All
	// arithmetic uses this value, never the live lease rent.
	HistoricalRent decimal.Decimal `json:"historical_rent"`
	CondoFee       decimal.Decimal `json:"condo_fee"`
	IPTU           decimal.Decimal `json:"iptu"`
	AdminFee       decimal.Decimal `json:"admin_fee"`
	OtherDebits    decimal.Decimal `json:"other_debits"`
	OtherCredits   decimal.Decimal `json:"other_credits"`
	Discount       decimal.Decimal `json:"discount"`
	LateFee        decimal.Decimal `json:"late_fee"`
	Interest       decimal.Decimal `json:"interest"`

	PaidAmount decimal.Decimal `json:"paid_amount"`
	Status     ChargeStatus    `json:"status"`

	// Per-phase notification flags. Each flips false->true at most once.
	Sent7D  bool `json:"sent_7d"`
	Sent1D  bool `json:"sent_1d"`
	SentDue bool `json:"sent_due"`
	// OverdueNoticeDays records the highest overdue bucket already notified
	// (one of 0, 1, 7, 14, 21, 30); it only grows.
	OverdueNoticeDays int `json:"overdue_notice_days"`

	Token          string     `json:"-"`
	TokenExpiresAt time.Time  `json:"-"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
	Observations   string     `json:"observations,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OverdueNoticeBuckets are the days-late thresholds that trigger one
// collection notice each.
var OverdueNoticeBuckets = []int{1, 7, 14, 21, 30}

var hundred = decimal.NewFromInt(100)

// Total computes valor_total: rent plus add-ons plus penalties minus
// credits and discount, clamped at zero.
func (c *Charge) Total() decimal.Decimal {
	total := c.HistoricalRent.
		Add(c.CondoFee).
		Add(c.IPTU).
		Add(c.AdminFee).
		Add(c.OtherDebits).
		Add(c.LateFee).
		Add(c.Interest).
		Sub(c.OtherCredits).
		Sub(c.Discount)
	if total.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return total.Round(2)
}

// Pending returns the amount still owed given the confirmed paid total,
// clamped at zero.
func (c *Charge) Pending(paid decimal.Decimal) decimal.Decimal {
	pending := c.Total().Sub(paid)
	if pending.IsNegative() {
		return decimal.Zero.Round(2)
	}
	return pending.Round(2)
}

// Balance returns paid minus total. Positive means the tenant overpaid
// and holds a credit; negative means the tenant still owes.
func (c *Charge) Balance(paid decimal.Decimal) decimal.Decimal {
	return paid.Sub(c.Total()).Round(2)
}

// IsOpen reports whether the charge can still receive payments and
// penalty recomputation.
func (c *Charge) IsOpen() bool {
	switch c.Status {
	case ChargeStatusPending, ChargeStatusPartial, ChargeStatusOverdue:
		return true
	}
	return false
}

// DaysLate returns the arrears in days. Once the charge is settled the
// anchor freezes at the settlement date, so the value stops growing.
func (c *Charge) DaysLate(today time.Time) int {
	anchor := today
	if c.SettledAt != nil {
		anchor = *c.SettledAt
	}
	days := int(dateOnly(anchor).Sub(dateOnly(c.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// LateCharges computes the late fee and pro-rata interest owed as of
// today. Both are zero when the charge is not past due or not open.
// Callers persist the result wholesale: recomputation replaces previous
// values, it never accumulates them.
func (c *Charge) LateCharges(today time.Time, policy LatePolicy) (lateFee, interest decimal.Decimal) {
	if !c.IsOpen() || !dateOnly(today).After(dateOnly(c.DueDate)) {
		return decimal.Zero.Round(2), decimal.Zero.Round(2)
	}
	daysLate := decimal.NewFromInt(int64(c.DaysLate(today)))
	lateFee = c.HistoricalRent.Mul(policy.LateFeePct).Div(hundred).Round(2)
	interest = c.HistoricalRent.
		Mul(policy.MonthlyInterestPct).
		Div(decimal.NewFromInt(30)).
		Mul(daysLate).
		Div(hundred).
		Round(2)
	return lateFee, interest
}

// PastDue reports whether the due date has passed and the charge is
// neither settled nor cancelled.
func (c *Charge) PastDue(today time.Time) bool {
	if c.Status == ChargeStatusPaid || c.Status == ChargeStatusCancelled {
		return false
	}
	return dateOnly(today).After(dateOnly(c.DueDate))
}

// ChargeNotice is a charge joined with the lease and tenant contact data
// the notification dispatcher needs.
type ChargeNotice struct {
	Charge          Charge `json:"charge"`
	ContractNumber  string `json:"contract_number"`
	TenantName      string `json:"tenant_name"`
	TenantEmail     string `json:"tenant_email"`
	TenantPhone     string `json:"tenant_phone"`
	PropertyCode    string `json:"property_code"`
	PropertyAddress string `json:"property_address"`
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
