package http

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/service"
)

// MockBillingService
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateCharge(ctx context.Context, leaseID int32, month, dueDate time.Time) (*domain.Charge, error) {
	args := m.Called(ctx, leaseID, month, dueDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockBillingService) GetCharge(ctx context.Context, id int32) (*domain.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockBillingService) GetChargeByToken(ctx context.Context, token string) (*domain.Charge, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockBillingService) UpdateCharge(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}
func (m *MockBillingService) CancelCharge(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockBillingService) RenewChargeToken(ctx context.Context, id int32) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}
func (m *MockBillingService) ApplyLateCharges(ctx context.Context, chargeID int32) (*domain.Charge, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockBillingService) RefreshOverdue(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockBillingService) ListCharges(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Charge), args.Error(1)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) RecordPayment(ctx context.Context, chargeID int32, amount decimal.Decimal, paidOn time.Time, method domain.PaymentMethod, recordedBy string) (*domain.Payment, error) {
	args := m.Called(ctx, chargeID, amount, paidOn, method, recordedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) ReversePayment(ctx context.Context, paymentID int32, reason, recordedBy string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, reason, recordedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentService) GetReceipt(ctx context.Context, token string) (*domain.Payment, *domain.Charge, error) {
	args := m.Called(ctx, token)
	var p *domain.Payment
	var c *domain.Charge
	if args.Get(0) != nil {
		p = args.Get(0).(*domain.Payment)
	}
	if args.Get(1) != nil {
		c = args.Get(1).(*domain.Charge)
	}
	return p, c, args.Error(2)
}
func (m *MockPaymentService) ListPayments(ctx context.Context, chargeID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

// MockGenerationService
type MockGenerationService struct {
	mock.Mock
}

func (m *MockGenerationService) Generate(ctx context.Context, month time.Time, executedBy string) (*service.BatchResult, error) {
	args := m.Called(ctx, month, executedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.BatchResult), args.Error(1)
}
func (m *MockGenerationService) NextMonth(now time.Time) time.Time {
	args := m.Called(now)
	return args.Get(0).(time.Time)
}

// MockRenewalService
type MockRenewalService struct {
	mock.Mock
}

func (m *MockRenewalService) CreateProposal(ctx context.Context, proposal *domain.RenewalProposal) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, proposal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) SubmitToLandlord(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) LandlordDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token, decision, reason, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) TenantDecides(ctx context.Context, token string, decision domain.RenewalDecision, reason, ip string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token, decision, reason, ip)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) CancelProposal(ctx context.Context, proposalID int32) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, proposalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalService) DetectExpiring(ctx context.Context, within time.Duration) ([]domain.Lease, error) {
	args := m.Called(ctx, within)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lease), args.Error(1)
}

// MockDocumentRenderer
type MockDocumentRenderer struct {
	mock.Mock
}

func (m *MockDocumentRenderer) RenderReceipt(ctx context.Context, payment *domain.Payment, charge *domain.Charge) ([]byte, error) {
	args := m.Called(ctx, payment, charge)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
func (m *MockDocumentRenderer) RenderProposal(ctx context.Context, proposal *domain.RenewalProposal, lease *domain.Lease) ([]byte, error) {
	args := m.Called(ctx, proposal, lease)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
