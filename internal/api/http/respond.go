package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"habitat-pro/internal/domain"
	"habitat-pro/internal/logger"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("response encoding failed", "error", err)
	}
}

// writeError maps domain sentinels onto HTTP statuses. Bad tokens are
// reported as plain 404 so probing reveals nothing about token state.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrBadToken):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrChargeCancelled):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrTokenExpired):
		status = http.StatusGone
	}
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		writeJSON(w, status, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
