package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"habitat-pro/internal/domain"
)

type BillingService interface {
	CreateCharge(ctx context.Context, leaseID int32, month time.Time, dueDate time.Time) (*domain.Charge, error)
	GetCharge(ctx context.Context, id int32) (*domain.Charge, error)
	GetChargeByToken(ctx context.Context, token string) (*domain.Charge, error)
	UpdateCharge(ctx context.Context, charge *domain.Charge) error
	CancelCharge(ctx context.Context, id int32) error
	RenewChargeToken(ctx context.Context, id int32) (string, error)
	ApplyLateCharges(ctx context.Context, chargeID int32) (*domain.Charge, error)
	RefreshOverdue(ctx context.Context) (int, error)
	ListCharges(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error)
}

type PaymentService interface {
	RecordPayment(ctx context.Context, chargeID int32, amount decimal.Decimal, paidOn time.Time, method domain.PaymentMethod, recordedBy string) (*domain.Payment, error)
	ReversePayment(ctx context.Context, paymentID int32, reason, recordedBy string) (*domain.Payment, error)
	GetPayment(ctx context.Context, id int32) (*domain.Payment, error)
	GetReceipt(ctx context.Context, token string) (*domain.Payment, *domain.Charge, error)
	ListPayments(ctx context.Context, chargeID int32) ([]domain.Payment, error)
}

// GenerationService produces the monthly charge batch.
type GenerationService interface {
	Generate(ctx context.Context, month time.Time, executedBy string) (*BatchResult, error)
	NextMonth(now time.Time) time.Time
}

type RenewalService interface {
	CreateProposal(ctx context.Context, proposal *domain.RenewalProposal) (*domain.RenewalProposal, error)
	SubmitToLandlord(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error)
	LandlordDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error)
	TenantDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error)
	CancelProposal(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error)
	GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error)
	GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error)
	DetectExpiring(ctx context.Context, within time.Duration) ([]domain.Lease, error)
}

// NotificationService walks open charges and dispatches due reminders.
type NotificationService interface {
	DispatchDue(ctx context.Context, now time.Time) (*DispatchResult, error)
	DispatchUrgent(ctx context.Context, now time.Time) (*DispatchResult, error)
}

// EmailTransport delivers a single email message.
type EmailTransport interface {
	Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error
}

// MessageTransport produces or pushes an instant message for a phone number.
// In link mode Send returns the prefilled link without contacting anyone.
type MessageTransport interface {
	Send(ctx context.Context, phone, text string) (link string, err error)
}

// DocumentRenderer produces human-facing documents (receipts, proposals).
type DocumentRenderer interface {
	RenderReceipt(ctx context.Context, payment *domain.Payment, charge *domain.Charge) ([]byte, error)
	RenderProposal(ctx context.Context, proposal *domain.RenewalProposal, lease *domain.Lease) ([]byte, error)
}

// BatchResult summarizes a generation run.
type BatchResult struct {
	Month       time.Time
	Created     int
	Skipped     int
	OutOfPeriod int
	Failed      int
	ChargeIDs   []int32
	Errors      []string
}

// DispatchResult summarizes a notification sweep.
type DispatchResult struct {
	Considered int
	Sent       int
	Failed     int
	Skipped    int
}
