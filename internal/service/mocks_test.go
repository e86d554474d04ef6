package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"habitat-pro/internal/domain"
)

// MockChargeRepo
type MockChargeRepo struct {
	mock.Mock
}

func (m *MockChargeRepo) Create(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}
func (m *MockChargeRepo) GetByID(ctx context.Context, id int32) (*domain.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockChargeRepo) GetByToken(ctx context.Context, token string) (*domain.Charge, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Charge), args.Error(1)
}
func (m *MockChargeRepo) ExistsForMonth(ctx context.Context, leaseID int32, month time.Time) (bool, error) {
	args := m.Called(ctx, leaseID, month)
	return args.Bool(0), args.Error(1)
}
func (m *MockChargeRepo) Update(ctx context.Context, charge *domain.Charge) error {
	args := m.Called(ctx, charge)
	return args.Error(0)
}
func (m *MockChargeRepo) Cancel(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
func (m *MockChargeRepo) RenewToken(ctx context.Context, id int32, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}
func (m *MockChargeRepo) SetLateCharges(ctx context.Context, id int32, lateFee, interest decimal.Decimal) error {
	args := m.Called(ctx, id, lateFee, interest)
	return args.Error(0)
}
func (m *MockChargeRepo) MarkOverdue(ctx context.Context, today time.Time) (int64, error) {
	args := m.Called(ctx, today)
	return args.Get(0).(int64), args.Error(1)
}
func (m *MockChargeRepo) ListOpen(ctx context.Context) ([]domain.ChargeNotice, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChargeNotice), args.Error(1)
}
func (m *MockChargeRepo) ListOpenDueBetween(ctx context.Context, from, to time.Time) ([]domain.ChargeNotice, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChargeNotice), args.Error(1)
}
func (m *MockChargeRepo) ListByStatus(ctx context.Context, status domain.ChargeStatus) ([]domain.Charge, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Charge), args.Error(1)
}
func (m *MockChargeRepo) MarkNotified(ctx context.Context, chargeID int32, phase domain.NotificationPhase, logs ...*domain.NotificationLog) error {
	args := m.Called(ctx, chargeID, phase, logs)
	return args.Error(0)
}

// MockLeaseRepo
type MockLeaseRepo struct {
	mock.Mock
}

func (m *MockLeaseRepo) Create(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}
func (m *MockLeaseRepo) GetByID(ctx context.Context, id int32) (*domain.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Lease), args.Error(1)
}
func (m *MockLeaseRepo) Update(ctx context.Context, lease *domain.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}
func (m *MockLeaseRepo) ListActive(ctx context.Context) ([]domain.Lease, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lease), args.Error(1)
}
func (m *MockLeaseRepo) ListExpiringWithoutProposal(ctx context.Context, by time.Time) ([]domain.Lease, error) {
	args := m.Called(ctx, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Lease), args.Error(1)
}

// MockPropertyRepo
type MockPropertyRepo struct {
	mock.Mock
}

func (m *MockPropertyRepo) Create(ctx context.Context, property *domain.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}
func (m *MockPropertyRepo) GetByID(ctx context.Context, id int32) (*domain.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Property), args.Error(1)
}
func (m *MockPropertyRepo) Update(ctx context.Context, property *domain.Property) error {
	args := m.Called(ctx, property)
	return args.Error(0)
}
func (m *MockPropertyRepo) UpdateStatus(ctx context.Context, id int32, status domain.PropertyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
func (m *MockPropertyRepo) ListByLandlord(ctx context.Context, landlordID int32) ([]domain.Property, error) {
	args := m.Called(ctx, landlordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Property), args.Error(1)
}
func (m *MockPropertyRepo) Deactivate(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Record(ctx context.Context, payment *domain.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) Reverse(ctx context.Context, paymentID int32, reason string) (*domain.Payment, error) {
	args := m.Called(ctx, paymentID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id int32) (*domain.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) GetByToken(ctx context.Context, token string) (*domain.Payment, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) ListByCharge(ctx context.Context, chargeID int32) ([]domain.Payment, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}
func (m *MockPaymentRepo) ConfirmedTotal(ctx context.Context, chargeID int32) (decimal.Decimal, error) {
	args := m.Called(ctx, chargeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockRenewalRepo
type MockRenewalRepo struct {
	mock.Mock
}

func (m *MockRenewalRepo) Create(ctx context.Context, proposal *domain.RenewalProposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}
func (m *MockRenewalRepo) GetByID(ctx context.Context, id int32) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalRepo) GetByLandlordToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalRepo) GetByTenantToken(ctx context.Context, token string) (*domain.RenewalProposal, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RenewalProposal), args.Error(1)
}
func (m *MockRenewalRepo) Update(ctx context.Context, proposal *domain.RenewalProposal) error {
	args := m.Called(ctx, proposal)
	return args.Error(0)
}
func (m *MockRenewalRepo) HasOpenForLease(ctx context.Context, leaseID int32) (bool, error) {
	args := m.Called(ctx, leaseID)
	return args.Bool(0), args.Error(1)
}

// MockRunLogRepo
type MockRunLogRepo struct {
	mock.Mock
}

func (m *MockRunLogRepo) Append(ctx context.Context, log *domain.RunLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
func (m *MockRunLogRepo) ListRecent(ctx context.Context, limit int32) ([]domain.RunLog, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RunLog), args.Error(1)
}
func (m *MockRunLogRepo) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationLogRepo
type MockNotificationLogRepo struct {
	mock.Mock
}

func (m *MockNotificationLogRepo) Append(ctx context.Context, log *domain.NotificationLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}
func (m *MockNotificationLogRepo) ListByCharge(ctx context.Context, chargeID int32) ([]domain.NotificationLog, error) {
	args := m.Called(ctx, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NotificationLog), args.Error(1)
}

// MockEmailTransport
type MockEmailTransport struct {
	mock.Mock
}

func (m *MockEmailTransport) Send(ctx context.Context, to, toName, subject, plainText, htmlContent string) error {
	args := m.Called(ctx, to, toName, subject, plainText, htmlContent)
	return args.Error(0)
}

// MockMessageTransport
type MockMessageTransport struct {
	mock.Mock
}

func (m *MockMessageTransport) Send(ctx context.Context, phone, text string) (string, error) {
	args := m.Called(ctx, phone, text)
	return args.String(0), args.Error(1)
}

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
