package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/crebit/ramp-service/internal/domain"
	"github.com/crebit/ramp-service/internal/provider"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data"`
	Error   *APIError `json:"error"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func RespondSuccess(w http.ResponseWriter, status int, data any) {
	RespondJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Error:   nil,
	})
}

func RespondAppError(w http.ResponseWriter, appErr *AppError, details any) {
	RespondJSON(w, appErr.Status, APIResponse{
		Success: false,
		Data:    nil,
		Error: &APIError{
			Code:    appErr.Code,
			Message: appErr.Message,
			Details: details,
		},
	})
}

func RespondValidationError(w http.ResponseWriter, fields []FieldError) {
	RespondAppError(w, ErrValidationFailed, fields)
}

// RespondDomainError maps service errors to the response taxonomy. Provider
// rejections pass the upstream status text through as details so callers can
// see what the provider actually said.
func RespondDomainError(w http.ResponseWriter, err error) {
	var apiErr *provider.APIError
	if errors.As(err, &apiErr) {
		RespondAppError(w, ErrProviderError, map[string]any{
			"provider_status": apiErr.Status,
			"provider_body":   json.RawMessage(normalizeBody(apiErr.Body)),
		})
		return
	}

	var appErr *AppError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		appErr = ErrResourceNotFound
	case errors.Is(err, domain.ErrInvalidAmount):
		appErr = ErrInvalidAmount
	case errors.Is(err, domain.ErrInvalidCurrency):
		appErr = ErrInvalidCurrency
	case errors.Is(err, domain.ErrInvalidRequest):
		appErr = ErrInvalidRequest
	default:
		slog.Error("unhandled domain error", "error", err)
		appErr = ErrInternalError
	}

	RespondAppError(w, appErr, nil)
}

// normalizeBody keeps provider bodies embeddable: non-JSON bodies are
// re-quoted as a JSON string.
func normalizeBody(body string) []byte {
	if json.Valid([]byte(body)) {
		return []byte(body)
	}
	quoted, _ := json.Marshal(body)
	return quoted
}
