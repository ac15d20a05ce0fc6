package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tobiasgatti02/Tolio-sub002/internal/domain"
	"github.com/tobiasgatti02/Tolio-sub002/internal/logger"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

type errorBody struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// jsonError writes a JSON error response with an explicit kind.
func jsonError(w http.ResponseWriter, status int, kind, message string) {
	jsonResponse(w, status, errorBody{Error: message, Kind: kind})
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

// writeDomainError maps the engine's error kinds onto HTTP statuses. The
// kind is always surfaced so callers can distinguish "never applied"
// from "applied, response lost" and retry safely.
func writeDomainError(w http.ResponseWriter, err error) {
	var (
		invalidInput *domain.InvalidInputError
		invalidState *domain.InvalidStateError
		ledgerErr    *domain.LedgerError
	)

	switch {
	case errors.Is(err, domain.ErrDealNotFound), errors.Is(err, domain.ErrAssetNotFound):
		jsonError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		jsonError(w, http.StatusForbidden, "unauthorized", err.Error())
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		jsonError(w, http.StatusConflict, "already_confirmed", err.Error())
	case errors.As(err, &invalidInput):
		jsonError(w, http.StatusBadRequest, "invalid_input", err.Error())
	case errors.As(err, &invalidState):
		jsonError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.As(err, &ledgerErr):
		kind := "ledger_failure"
		if ledgerErr.Partial {
			kind = "ledger_failure_partial_completion"
		}
		jsonError(w, http.StatusBadGateway, kind, err.Error())
	default:
		logger.Error("Unhandled error in HTTP layer", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}
