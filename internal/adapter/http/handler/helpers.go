package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

const internalErrorMessage = "internal server error"

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError renders err. Business errors keep their message and code,
// anything else is masked as INTERNAL_ERROR.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapDomainError(err)

	de, ok := domain.AsError(err)
	if !ok || de.IsInternal() {
		zerolog.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")

		writeJSON(w, status, dto.ErrorResponse{
			Error: internalErrorMessage,
			Code:  string(domain.CodeInternalError),
		})
		return
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error:    de.Message,
		Code:     string(de.Code),
		Category: domain.CategoryBusiness,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch domain.CodeOf(err) {
	case domain.CodeInvalidAccountNumber,
		domain.CodeInvalidInitialBalance,
		domain.CodeInvalidDepositAmount,
		domain.CodeInvalidWithdrawAmount:
		return http.StatusBadRequest
	case domain.CodeAccountNotFound:
		return http.StatusNotFound
	case domain.CodeAccountAlreadyExists:
		return http.StatusConflict
	case domain.CodeInsufficientFunds:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// accountNumberParam parses the {conta} path segment.
func accountNumberParam(r *http.Request) (int64, error) {
	number, err := domain.ParseAccountNumber(chi.URLParam(r, "conta"))
	if err != nil {
		return 0, domain.ErrInvalidAccountNumber.WithCause(err)
	}
	return number, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
