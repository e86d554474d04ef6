package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/security"
	"habitat-pro/internal/utils"
)

type paymentService struct {
	paymentRepo repository.PaymentRepository
	chargeRepo  repository.ChargeRepository
	tokenDays   int
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	chargeRepo repository.ChargeRepository,
	tokenDays int,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		chargeRepo:  chargeRepo,
		tokenDays:   tokenDays,
	}
}

// RecordPayment validates and books one payment against a charge. The
// repository owns the transaction that mints the number, inserts the row
// and recomputes the charge status.
func (s *paymentService) RecordPayment(ctx context.Context, chargeID int32, amount decimal.Decimal, paidOn time.Time, method domain.PaymentMethod, recordedBy string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.RecordPayment", "chargeID", chargeID, "amount", amount.String())

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive, got %s", domain.ErrValidation, amount)
	}
	if !domain.ValidPaymentMethod(method) {
		return nil, fmt.Errorf("%w: unknown payment method %q", domain.ErrValidation, method)
	}
	today := utils.DateOnly(time.Now())
	paidOn = utils.DateOnly(paidOn)
	if paidOn.After(today) {
		return nil, fmt.Errorf("%w: payment date %s is in the future", domain.ErrValidation, paidOn.Format("2006-01-02"))
	}

	token, expiresAt := security.Mint(s.tokenDays)
	payment := &domain.Payment{
		ChargeID:       chargeID,
		PaidOn:         paidOn,
		PaidAmount:     amount.Round(2),
		Method:         method,
		RecordedBy:     recordedBy,
		Token:          token,
		TokenExpiresAt: expiresAt,
	}
	if err := s.paymentRepo.Record(ctx, payment); err != nil {
		logger.ExitMethodWithError("paymentService.RecordPayment", err, "chargeID", chargeID)
		return nil, err
	}
	logger.ExitMethod("paymentService.RecordPayment", "paymentID", payment.ID, "number", payment.Number)
	return payment, nil
}

// ReversePayment undoes a confirmed payment. The charge status and
// settlement date are recomputed inside the repository transaction, so a
// fully paid charge can reopen.
func (s *paymentService) ReversePayment(ctx context.Context, paymentID int32, reason, recordedBy string) (*domain.Payment, error) {
	logger.EnterMethod("paymentService.ReversePayment", "paymentID", paymentID)

	if reason == "" {
		return nil, fmt.Errorf("%w: a reversal reason is required", domain.ErrValidation)
	}
	payment, err := s.paymentRepo.Reverse(ctx, paymentID, fmt.Sprintf("%s (by %s)", reason, recordedBy))
	if err != nil {
		logger.ExitMethodWithError("paymentService.ReversePayment", err, "paymentID", paymentID)
		return nil, err
	}
	logger.ExitMethod("paymentService.ReversePayment", "paymentID", paymentID)
	return payment, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id int32) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

// GetReceipt resolves the public receipt page by payment token.
func (s *paymentService) GetReceipt(ctx context.Context, token string) (*domain.Payment, *domain.Charge, error) {
	payment, err := s.paymentRepo.GetByToken(ctx, token)
	if err != nil {
		return nil, nil, err
	}
	if err := security.Validate(payment.Token, payment.TokenExpiresAt, token); err != nil {
		if errors.Is(err, domain.ErrTokenExpired) {
			return payment, nil, err
		}
		return nil, nil, domain.ErrNotFound
	}
	if payment.State != domain.PaymentStateConfirmed {
		return nil, nil, fmt.Errorf("%w: payment %s is %s", domain.ErrInvalidState, payment.Number, payment.State)
	}
	charge, err := s.chargeRepo.GetByID(ctx, payment.ChargeID)
	if err != nil {
		return nil, nil, err
	}
	return payment, charge, nil
}

func (s *paymentService) ListPayments(ctx context.Context, chargeID int32) ([]domain.Payment, error) {
	return s.paymentRepo.ListByCharge(ctx, chargeID)
}
