package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// NewRouter wires the public token pages and the back-office REST API.
func NewRouter(public *PublicHandler, admin *AdminHandler) *mux.Router {
	r := mux.NewRouter()

	// Public token-gated pages (linked from notifications)
	r.HandleFunc("/comanda/{token}/", public.HandleChargePage).Methods(http.MethodGet)
	r.HandleFunc("/recibo/{token}/", public.HandleReceiptPage).Methods(http.MethodGet)
	r.HandleFunc("/renovacao/proprietario/{token}/", public.HandleLandlordRenewal).
		Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/renovacao/locatario/{token}/", public.HandleTenantRenewal).
		Methods(http.MethodGet, http.MethodPost)

	// Back-office API
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/generation/run", admin.HandleGenerate).Methods(http.MethodPost)
	api.HandleFunc("/charges", admin.HandleCreateCharge).Methods(http.MethodPost)
	api.HandleFunc("/charges", admin.HandleListCharges).Methods(http.MethodGet)
	api.HandleFunc("/charges/{id}", admin.HandleGetCharge).Methods(http.MethodGet)
	api.HandleFunc("/charges/{id}", admin.HandleCancelCharge).Methods(http.MethodDelete)
	api.HandleFunc("/charges/{id}/token", admin.HandleRenewChargeToken).Methods(http.MethodPost)
	api.HandleFunc("/charges/{id}/payments", admin.HandleRecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/charges/{id}/payments", admin.HandleListPayments).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id}/reverse", admin.HandleReversePayment).Methods(http.MethodPost)
	api.HandleFunc("/renewals", admin.HandleCreateRenewal).Methods(http.MethodPost)
	api.HandleFunc("/renewals/{id}/submit", admin.HandleSubmitRenewal).Methods(http.MethodPost)
	api.HandleFunc("/renewals/{id}/cancel", admin.HandleCancelRenewal).Methods(http.MethodPost)

	return r
}
