package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/service"
)

// AdminHandler exposes the back-office REST surface. It sits behind the
// office network's reverse proxy; authentication happens there.
type AdminHandler struct {
	billing    service.BillingService
	payments   service.PaymentService
	generation service.GenerationService
	renewals   service.RenewalService
}

func NewAdminHandler(
	billing service.BillingService,
	payments service.PaymentService,
	generation service.GenerationService,
	renewals service.RenewalService,
) *AdminHandler {
	return &AdminHandler{
		billing:    billing,
		payments:   payments,
		generation: generation,
		renewals:   renewals,
	}
}

type generateRequest struct {
	Month      string `json:"month"` // "2026-09"; empty means next month
	ExecutedBy string `json:"executed_by"`
}

// HandleGenerate runs the monthly charge batch on demand.
func (h *AdminHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	month := h.generation.NextMonth(time.Now())
	if req.Month != "" {
		parsed, err := time.Parse("2006-01", req.Month)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
			return
		}
		month = parsed
	}
	executedBy := req.ExecutedBy
	if executedBy == "" {
		executedBy = "api"
	}

	result, err := h.generation.Generate(r.Context(), month, executedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"month":         result.Month.Format("2006-01"),
		"created":       result.Created,
		"skipped":       result.Skipped,
		"out_of_period": result.OutOfPeriod,
		"failed":        result.Failed,
		"errors":        result.Errors,
	})
}

type createChargeRequest struct {
	LeaseID int32  `json:"lease_id"`
	Month   string `json:"month"`              // "2026-09"
	DueDate string `json:"due_date,omitempty"` // "2026-09-10"; empty uses the lease due day
}

func (h *AdminHandler) HandleCreateCharge(w http.ResponseWriter, r *http.Request) {
	var req createChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	month, err := time.Parse("2006-01", req.Month)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "month must be YYYY-MM"})
		return
	}
	var dueDate time.Time
	if req.DueDate != "" {
		dueDate, err = time.Parse("2006-01-02", req.DueDate)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "due_date must be YYYY-MM-DD"})
			return
		}
	}

	charge, err := h.billing.CreateCharge(r.Context(), req.LeaseID, month, dueDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, charge)
}

func (h *AdminHandler) HandleListCharges(w http.ResponseWriter, r *http.Request) {
	status := domain.ChargeStatus(r.URL.Query().Get("status"))
	if status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status query parameter is required"})
		return
	}
	charges, err := h.billing.ListCharges(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charges)
}

func (h *AdminHandler) HandleGetCharge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	charge, err := h.billing.GetCharge(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, charge)
}

func (h *AdminHandler) HandleCancelCharge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.billing.CancelCharge(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleRenewChargeToken replaces the charge's public token and returns
// the fresh one for re-sending the link.
func (h *AdminHandler) HandleRenewChargeToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	token, err := h.billing.RenewChargeToken(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

type recordPaymentRequest struct {
	Amount     string `json:"amount"`
	PaidOn     string `json:"paid_on"` // "2026-09-10"
	Method     string `json:"method"`
	RecordedBy string `json:"recorded_by"`
}

func (h *AdminHandler) HandleRecordPayment(w http.ResponseWriter, r *http.Request) {
	chargeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount must be a decimal number"})
		return
	}
	paidOn, err := time.Parse("2006-01-02", req.PaidOn)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "paid_on must be YYYY-MM-DD"})
		return
	}

	payment, err := h.payments.RecordPayment(r.Context(), chargeID, amount, paidOn,
		domain.PaymentMethod(req.Method), req.RecordedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payment)
}

func (h *AdminHandler) HandleListPayments(w http.ResponseWriter, r *http.Request) {
	chargeID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	payments, err := h.payments.ListPayments(r.Context(), chargeID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payments)
}

type reverseRequest struct {
	Reason     string `json:"reason"`
	RecordedBy string `json:"recorded_by"`
}

func (h *AdminHandler) HandleReversePayment(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req reverseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	payment, err := h.payments.ReversePayment(r.Context(), paymentID, req.Reason, req.RecordedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payment)
}

func (h *AdminHandler) HandleCreateRenewal(w http.ResponseWriter, r *http.Request) {
	var proposal domain.RenewalProposal
	if err := json.NewDecoder(r.Body).Decode(&proposal); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	created, err := h.renewals.CreateProposal(r.Context(), &proposal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleSubmitRenewal moves a draft proposal to the landlord and returns
// the proposal including the freshly minted landlord token so the office
// can send the link.
func (h *AdminHandler) HandleSubmitRenewal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	proposal, err := h.renewals.SubmitToLandlord(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"proposal":       proposal,
		"landlord_token": proposal.LandlordToken,
	})
}

func (h *AdminHandler) HandleCancelRenewal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	proposal, err := h.renewals.CancelProposal(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int32, bool) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + name})
		return 0, false
	}
	return int32(id), true
}
