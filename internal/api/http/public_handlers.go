package http

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/service"
	"habitat-pro/internal/utils"
)

// PublicHandler serves the token-gated pages tenants and landlords reach
// from notification links. No session, no login: the token in the URL is
// the whole credential.
type PublicHandler struct {
	billing  service.BillingService
	payments service.PaymentService
	renewals service.RenewalService
	renderer service.DocumentRenderer
}

func NewPublicHandler(
	billing service.BillingService,
	payments service.PaymentService,
	renewals service.RenewalService,
	renderer service.DocumentRenderer,
) *PublicHandler {
	return &PublicHandler{
		billing:  billing,
		payments: payments,
		renewals: renewals,
		renderer: renderer,
	}
}

// chargeView is the public projection of a charge: totals and dates,
// never tokens or internal flags.
type chargeView struct {
	Number         string `json:"numero_comanda"`
	ReferenceMonth string `json:"referencia"`
	DueDate        string `json:"vencimento"`
	Status         string `json:"status"`
	Rent           string `json:"aluguel"`
	CondoFee       string `json:"condominio,omitempty"`
	IPTU           string `json:"iptu,omitempty"`
	AdminFee       string `json:"taxa_admin,omitempty"`
	LateFee        string `json:"multa,omitempty"`
	Interest       string `json:"juros,omitempty"`
	Discount       string `json:"desconto,omitempty"`
	Total          string `json:"valor_total"`
	PaidAmount     string `json:"valor_pago"`
	DaysLate       int    `json:"dias_atraso,omitempty"`
}

// HandleChargePage serves GET /comanda/{token}/. An unknown token is a
// plain 404; an expired token still answers 200 with an expiry notice so
// the tenant knows to ask for a fresh link.
func (h *PublicHandler) HandleChargePage(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	charge, err := h.billing.GetChargeByToken(r.Context(), token)
	if errors.Is(err, domain.ErrTokenExpired) {
		writeJSON(w, http.StatusOK, map[string]any{
			"expired": true,
			"message": "Este link expirou. Solicite uma nova via à administradora.",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	view := chargeView{
		Number:         charge.Number,
		ReferenceMonth: charge.ReferenceMonth.Format("01/2006"),
		DueDate:        charge.DueDate.Format("02/01/2006"),
		Status:         string(charge.Status),
		Rent:           utils.FormatBRL(charge.HistoricalRent),
		Total:          utils.FormatBRL(charge.Total()),
		PaidAmount:     utils.FormatBRL(charge.PaidAmount),
	}
	if charge.CondoFee.IsPositive() {
		view.CondoFee = utils.FormatBRL(charge.CondoFee)
	}
	if charge.IPTU.IsPositive() {
		view.IPTU = utils.FormatBRL(charge.IPTU)
	}
	if charge.AdminFee.IsPositive() {
		view.AdminFee = utils.FormatBRL(charge.AdminFee)
	}
	if charge.LateFee.IsPositive() {
		view.LateFee = utils.FormatBRL(charge.LateFee)
	}
	if charge.Interest.IsPositive() {
		view.Interest = utils.FormatBRL(charge.Interest)
	}
	if charge.Discount.IsPositive() {
		view.Discount = utils.FormatBRL(charge.Discount)
	}
	if charge.PastDue(time.Now()) {
		view.DaysLate = charge.DaysLate(time.Now())
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleReceiptPage serves GET /recibo/{token}/ as a plain-text receipt.
func (h *PublicHandler) HandleReceiptPage(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	payment, charge, err := h.payments.GetReceipt(r.Context(), token)
	if errors.Is(err, domain.ErrTokenExpired) {
		writeJSON(w, http.StatusOK, map[string]any{
			"expired": true,
			"message": "Este link expirou. Solicite uma nova via à administradora.",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	doc, err := h.renderer.RenderReceipt(r.Context(), payment, charge)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

type renewalView struct {
	Status         string `json:"status"`
	NewStartDate   string `json:"novo_inicio"`
	NewEndDate     string `json:"novo_fim"`
	NewMonthlyRent string `json:"novo_aluguel"`
	Guarantee      string `json:"garantia"`
	RefusalReason  string `json:"motivo_recusa,omitempty"`
}

type decisionRequest struct {
	Decision string `json:"decision"` // APPROVE or REJECT
	Reason   string `json:"reason,omitempty"`
}

// HandleLandlordRenewal serves GET/POST /renovacao/proprietario/{token}/.
func (h *PublicHandler) HandleLandlordRenewal(w http.ResponseWriter, r *http.Request) {
	h.handleRenewal(w, r, true)
}

// HandleTenantRenewal serves GET/POST /renovacao/locatario/{token}/.
func (h *PublicHandler) HandleTenantRenewal(w http.ResponseWriter, r *http.Request) {
	h.handleRenewal(w, r, false)
}

func (h *PublicHandler) handleRenewal(w http.ResponseWriter, r *http.Request, landlord bool) {
	token := mux.Vars(r)["token"]

	if r.Method == http.MethodGet {
		var (
			p   *domain.RenewalProposal
			err error
		)
		if landlord {
			p, err = h.renewals.GetByLandlordToken(r.Context(), token)
		} else {
			p, err = h.renewals.GetByTenantToken(r.Context(), token)
		}
		if errors.Is(err, domain.ErrTokenExpired) {
			writeJSON(w, http.StatusOK, map[string]any{
				"expired": true,
				"message": "Este link expirou. Solicite uma nova via à administradora.",
			})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, proposalView(p))
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	decision := domain.RenewalDecision(req.Decision)
	ip := clientIP(r)

	var (
		p   *domain.RenewalProposal
		err error
	)
	if landlord {
		p, err = h.renewals.LandlordDecides(r.Context(), token, decision, req.Reason, ip)
	} else {
		p, err = h.renewals.TenantDecides(r.Context(), token, decision, req.Reason, ip)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposalView(p))
}

func proposalView(p *domain.RenewalProposal) renewalView {
	return renewalView{
		Status:         string(p.Status),
		NewStartDate:   p.NewStartDate.Format("02/01/2006"),
		NewEndDate:     p.NewEndDate.Format("02/01/2006"),
		NewMonthlyRent: utils.FormatBRL(p.NewMonthlyRent),
		Guarantee:      string(p.NewGuarantee),
		RefusalReason:  p.RefusalReason,
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		// The first entry is the originating client; the rest are proxies.
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
