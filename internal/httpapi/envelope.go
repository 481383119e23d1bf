package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
)

const maxBodyBytes = 1 << 20

type envelope struct {
	Success          bool           `json:"success"`
	Result           any            `json:"result,omitempty"`
	Error            *responseError `json:"error,omitempty"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Cached           bool           `json:"cached"`
}

type responseError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Field      string `json:"field,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeResult(w http.ResponseWriter, status int, start time.Time, result any, cached bool) {
	writeJSON(w, status, envelope{
		Success:          true,
		Result:           result,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		Cached:           cached,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	status, body := mapError(err)
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", err, "status", status)
	}
	writeJSON(w, status, envelope{
		Success:          false,
		Error:            body,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	})
}

// mapError turns err into a status code and the error body. Errors that are
// not AppErrors are reported as INTERNAL without their details.
func mapError(err error) (int, *responseError) {
	var appErr *domainErrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError, &responseError{
			Code:    string(domainErrors.TypeInternal),
			Message: "internal server error",
		}
	}

	body := &responseError{
		Code:       string(appErr.Type),
		Message:    appErr.Message,
		Suggestion: appErr.Suggestion,
	}
	if field, ok := appErr.Context["field"].(string); ok {
		body.Field = field
	}

	switch appErr.Type {
	case domainErrors.TypeValidation:
		if appErr.Err != nil {
			body.Message = fmt.Sprintf("%s: %v", appErr.Message, appErr.Err)
		}
		return http.StatusBadRequest, body
	case domainErrors.TypeNotFound:
		return http.StatusNotFound, body
	case domainErrors.TypeRateLimit:
		return http.StatusTooManyRequests, body
	case domainErrors.TypeAI:
		if errors.Is(err, domainErrors.ErrQuotaExceeded) ||
			errors.Is(err, domainErrors.ErrGeminiQuotaExceeded) ||
			errors.Is(err, domainErrors.ErrAINotConfigured) {
			return http.StatusServiceUnavailable, body
		}
		return http.StatusInternalServerError, body
	default:
		return http.StatusInternalServerError, body
	}
}

// decode reads a JSON body of at most 1MB into dst, rejecting unknown
// fields.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domainErrors.NewValidationError("body", "request body exceeds 1MB")
		}
		return domainErrors.ErrInvalidRequest.
			WithError(err).
			WithContext("field", "body").
			WithSuggestion("Send a JSON object with the documented fields")
	}
	return nil
}
