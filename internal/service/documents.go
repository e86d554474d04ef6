package service

import (
	"bytes"
	"context"
	"fmt"
	"text/template"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
	"habitat-pro/internal/repository"
	"habitat-pro/internal/storage"
	"habitat-pro/internal/utils"
)

// Rendered documents are archived by their business number so replays
// serve the stored copy even after templates change.

const receiptTemplate = `RECIBO DE PAGAMENTO {{.Number}}
========================================

Comanda:        {{.ChargeNumber}}
Referência:     {{.ReferenceMonth}}
Data do pagamento: {{.PaidOn}}
Forma:          {{.Method}}

Valor pago:     {{.PaidAmount}}
Total da comanda: {{.Total}}
Saldo:          {{.Balance}}

Registrado por: {{.RecordedBy}}
`

const proposalTemplate = `PROPOSTA DE RENOVAÇÃO — CONTRATO {{.ContractNumber}}
========================================

Novo período:   {{.NewStartDate}} a {{.NewEndDate}}
Novo aluguel:   {{.NewMonthlyRent}}
Garantia:       {{.Guarantee}}

Situação:       {{.Status}}
`

type documentRenderer struct {
	paymentRepo repository.PaymentRepository
	archive     storage.DocumentArchive
	receipt     *template.Template
	proposal    *template.Template
}

// NewDocumentRenderer builds the plain-text renderer for receipts and
// renewal proposals.
func NewDocumentRenderer(paymentRepo repository.PaymentRepository, archive storage.DocumentArchive) (DocumentRenderer, error) {
	receipt, err := template.New("receipt").Parse(receiptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse receipt template: %w", err)
	}
	proposal, err := template.New("proposal").Parse(proposalTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse proposal template: %w", err)
	}
	return &documentRenderer{
		paymentRepo: paymentRepo,
		archive:     archive,
		receipt:     receipt,
		proposal:    proposal,
	}, nil
}

func (r *documentRenderer) RenderReceipt(ctx context.Context, payment *domain.Payment, charge *domain.Charge) ([]byte, error) {
	paid, err := r.paymentRepo.ConfirmedTotal(ctx, charge.ID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = r.receipt.Execute(&buf, map[string]string{
		"Number":         payment.Number,
		"ChargeNumber":   charge.Number,
		"ReferenceMonth": charge.ReferenceMonth.Format("01/2006"),
		"PaidOn":         payment.PaidOn.Format("02/01/2006"),
		"Method":         string(payment.Method),
		"PaidAmount":     utils.FormatBRL(payment.PaidAmount),
		"Total":          utils.FormatBRL(charge.Total()),
		"Balance":        utils.FormatBRLSigned(charge.Balance(paid)),
		"RecordedBy":     payment.RecordedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}

	if r.archive != nil {
		key := fmt.Sprintf("receipts/%s.txt", payment.Number)
		if err := r.archive.Save(key, bytes.NewReader(buf.Bytes())); err != nil {
			logger.Error("receipt archival failed", "payment", payment.Number, "error", err)
		}
	}
	return buf.Bytes(), nil
}

func (r *documentRenderer) RenderProposal(ctx context.Context, proposal *domain.RenewalProposal, lease *domain.Lease) ([]byte, error) {
	var buf bytes.Buffer
	err := r.proposal.Execute(&buf, map[string]string{
		"ContractNumber": lease.ContractNumber,
		"NewStartDate":   proposal.NewStartDate.Format("02/01/2006"),
		"NewEndDate":     proposal.NewEndDate.Format("02/01/2006"),
		"NewMonthlyRent": utils.FormatBRL(proposal.NewMonthlyRent),
		"Guarantee":      string(proposal.NewGuarantee),
		"Status":         string(proposal.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render proposal: %w", err)
	}

	if r.archive != nil {
		key := fmt.Sprintf("proposals/%s-%d.txt", lease.ContractNumber, proposal.ID)
		if err := r.archive.Save(key, bytes.NewReader(buf.Bytes())); err != nil {
			logger.Error("proposal archival failed", "proposalID", proposal.ID, "error", err)
		}
	}
	return buf.Bytes(), nil
}
