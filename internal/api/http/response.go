package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"propdesk-backend/internal/domain"
	"propdesk-backend/internal/logger"
	"propdesk-backend/internal/service"
)

const kindUnauthorized domain.ErrorKind = "UNAUTHORIZED"

type errorBody struct {
	Kind    domain.ErrorKind  `json:"kind"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

type listResponse struct {
	Items    any   `json:"items"`
	Total    int32 `json:"total"`
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindInvalidInput, domain.KindInvalidRule, domain.KindInvalidAmount:
		return http.StatusBadRequest
	case domain.KindUnknownAgent, domain.KindInvalidTarget, domain.KindMissingAmount:
		return http.StatusUnprocessableEntity
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindRuleInUse, domain.KindDuplicateCommission, domain.KindInvalidTransition, domain.KindActiveRuleExists:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case kindUnauthorized:
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError renders err as a JSON error. Errors without a business kind are
// logged and reported as INTERNAL without their message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidCredentials) || errors.Is(err, service.ErrAccountDisabled) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{Kind: kindUnauthorized, Message: err.Error()}})
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: errorBody{Kind: domain.KindInvalidInput, Message: "validation failed", Fields: fields}})
		return
	}

	var de *domain.Error
	if errors.As(err, &de) {
		writeJSON(w, statusFor(de.Kind), errorResponse{Error: errorBody{Kind: de.Kind, Message: de.Message}})
		return
	}

	logger.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errorBody{Kind: domain.KindInternal, Message: "internal server error"}})
}

func unauthorized(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, errorResponse{Error: errorBody{Kind: kindUnauthorized, Message: message}})
}
