package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/storage"
)

func TestDocumentRenderer_RenderReceipt(t *testing.T) {
	ctx := context.Background()

	paymentRepo := new(MockPaymentRepo)
	archive, err := storage.NewLocalArchive(t.TempDir())
	assert.NoError(t, err)
	renderer, err := NewDocumentRenderer(paymentRepo, archive)
	assert.NoError(t, err)

	charge := &domain.Charge{
		ID:             55,
		Number:         "202603-0012",
		ReferenceMonth: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		HistoricalRent: decimal.NewFromInt(1000),
		CondoFee:       decimal.NewFromInt(150),
	}
	payment := &domain.Payment{
		Number:     "PAY-202603-0003",
		PaidOn:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		PaidAmount: decimal.NewFromInt(1150),
		Method:     domain.PaymentMethodPix,
		RecordedBy: "ana",
	}
	paymentRepo.On("ConfirmedTotal", ctx, int32(55)).Return(decimal.NewFromInt(1150), nil)

	out, err := renderer.RenderReceipt(ctx, payment, charge)
	assert.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "RECIBO DE PAGAMENTO PAY-202603-0003")
	assert.Contains(t, text, "202603-0012")
	assert.Contains(t, text, "03/2026")
	assert.Contains(t, text, "12/03/2026")
	assert.Contains(t, text, "R$ 1.150,00")
	assert.Contains(t, text, "Saldo:          R$ 0,00")

	// The rendered copy lands in the archive under the payment number.
	exists, size, err := archive.Exists("receipts/PAY-202603-0003.txt")
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.Greater(t, size, int64(0))
}

func TestDocumentRenderer_RenderProposal(t *testing.T) {
	ctx := context.Background()

	archive, err := storage.NewLocalArchive(t.TempDir())
	assert.NoError(t, err)
	renderer, err := NewDocumentRenderer(new(MockPaymentRepo), archive)
	assert.NoError(t, err)

	proposal := &domain.RenewalProposal{
		ID:             11,
		NewStartDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		NewEndDate:     time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC),
		NewMonthlyRent: decimal.NewFromInt(2200),
		NewGuarantee:   domain.GuaranteeKindDeposit,
		Status:         domain.RenewalStatusPendingLandlord,
	}
	lease := &domain.Lease{ContractNumber: "CTR-2025-0007"}

	out, err := renderer.RenderProposal(ctx, proposal, lease)
	assert.NoError(t, err)

	text := string(out)
	assert.Contains(t, text, "CTR-2025-0007")
	assert.Contains(t, text, "01/06/2026 a 31/05/2027")
	assert.Contains(t, text, "R$ 2.200,00")
	assert.Contains(t, text, "DEPOSIT")
}
