package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodPix      PaymentMethod = "PIX"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodOther    PaymentMethod = "OTHER"
)

func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodOther:
		return true
	}
	return false
}

type PaymentState string

const (
	PaymentStatePending   PaymentState = "PENDING"
	PaymentStateConfirmed PaymentState = "CONFIRMED"
	PaymentStateReversed  PaymentState = "REVERSED"
)

type Payment struct {
	ID             int32           `json:"id"`
	ChargeID       int32           `json:"charge_id"`
	Number         string          `json:"numero_pagamento"` // PAY-YYYYMM-NNNN
	PaidOn         time.Time       `json:"paid_on"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Method         PaymentMethod   `json:"method"`
	State          PaymentState    `json:"state"`
	ConfirmedAt    *time.Time      `json:"confirmed_at,omitempty"`
	ReversalReason string          `json:"reversal_reason,omitempty"`
	RecordedBy     string          `json:"recorded_by"`
	Token          string          `json:"-"`
	TokenExpiresAt time.Time       `json:"-"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
