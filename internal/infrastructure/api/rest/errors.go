package rest

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/ClaraBenejam/PAWSture/internal/ingest"
	"github.com/ClaraBenejam/PAWSture/pkg/models"
)

// APIError is the wire shape for every error response the webhook/introspection
// surface returns.
type APIError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	HTTPStatus int                    `json:"-"`
}

func (e *APIError) Error() string {
	return e.Message
}

func NewAPIError(code, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

func NewAPIErrorWithDetails(code, message string, httpStatus int, details map[string]interface{}) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		Details:    details,
		HTTPStatus: httpStatus,
	}
}

var (
	ErrBadRequest       = NewAPIError("BAD_REQUEST", "Invalid request", http.StatusBadRequest)
	ErrUnauthorized     = NewAPIError("UNAUTHORIZED", "Authentication required", http.StatusUnauthorized)
	ErrNotFound         = NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	ErrValidationFailed = NewAPIError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest)
	ErrInternalServer   = NewAPIError("INTERNAL_ERROR", "Internal server error", http.StatusInternalServerError)
	ErrTooManyRequests  = NewAPIError("RATE_LIMIT_EXCEEDED", "Too many requests", http.StatusTooManyRequests)
	ErrInvalidJSON      = NewAPIError("INVALID_JSON", "Invalid JSON in request body", http.StatusBadRequest)
	ErrInvalidToken     = NewAPIError("INVALID_TOKEN", "Invalid or missing webhook token", http.StatusUnauthorized)
)

// TranslateError maps the taxonomy in pkg/models (spec §7) plus a handful of
// package-local sentinels to a wire-level APIError. Transient failures map to
// 503 so a retrying caller backs off instead of treating them as permanent.
func TranslateError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, models.ErrNotFound):
		return NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	case errors.Is(err, models.ErrTransient):
		return NewAPIError("TRANSIENT", "Upstream store or transport temporarily unavailable", http.StatusServiceUnavailable)
	case errors.Is(err, models.ErrShapeMismatch):
		return NewAPIError("SHAPE_MISMATCH", "Stored row is missing an expected field", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrArithmetic):
		return NewAPIError("ARITHMETIC_ERROR", "Model training failed numerically", http.StatusUnprocessableEntity)
	case errors.Is(err, models.ErrContract):
		return NewAPIError("CONTRACT_VIOLATION", "Malformed request", http.StatusBadRequest)
	case errors.Is(err, models.ErrFatal):
		return NewAPIError("FATAL_CONFIG", "Server misconfigured", http.StatusInternalServerError)
	case errors.Is(err, models.ErrValidationFailed):
		return NewAPIError("VALIDATION_FAILED", "Validation failed", http.StatusBadRequest)
	case errors.Is(err, ingest.ErrUnknownVerb):
		return NewAPIError("UNKNOWN_VERB", "Response verb must be accept, postpone or reject", http.StatusBadRequest)
	case errors.Is(err, sql.ErrNoRows):
		return NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	}

	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		return NewAPIErrorWithDetails("VALIDATION_ERROR", validationErr.Message, http.StatusBadRequest,
			map[string]interface{}{"field": validationErr.Field})
	}

	var validationErrs models.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		details := make(map[string]interface{})
		for _, ve := range validationErrs {
			details[ve.Field] = ve.Message
		}
		return NewAPIErrorWithDetails("VALIDATION_FAILED", validationErrs[0].Message, http.StatusBadRequest, details)
	}

	if errMsg := strings.ToLower(err.Error()); strings.Contains(errMsg, "no rows") || strings.Contains(errMsg, "not found") {
		return NewAPIError("NOT_FOUND", "Resource not found", http.StatusNotFound)
	}

	return NewAPIError("INTERNAL_ERROR", "An unexpected error occurred", http.StatusInternalServerError)
}
