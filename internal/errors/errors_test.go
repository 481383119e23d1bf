package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestAppError_WithError(t *testing.T) {
	baseErr := errors.New("original error")
	appErr := ErrAIGeneration.WithError(baseErr)

	if appErr.Err != baseErr {
		t.Errorf("Expected underlying error to be %v, got %v", baseErr, appErr.Err)
	}

	if appErr.Type != TypeAI {
		t.Errorf("Expected type %s, got %s", TypeAI, appErr.Type)
	}
}

func TestAppError_WithContext(t *testing.T) {
	appErr := ErrInvalidFeedback.WithContext("field", "rating").WithContext("value", 9)

	if appErr.Context["field"] != "rating" {
		t.Errorf("Expected field context 'rating', got %v", appErr.Context["field"])
	}

	if appErr.Context["value"] != 9 {
		t.Errorf("Expected value context 9, got %v", appErr.Context["value"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		contains []string
	}{
		{
			name: "Simple error without underlying error",
			err:  ErrEmptyTechnicians,
			contains: []string{
				"VALIDATION",
				"No technicians available",
			},
		},
		{
			name: "Error with underlying error",
			err:  ErrGeminiQuotaExceeded.WithError(errors.New("resource exhausted")),
			contains: []string{
				"AI",
				"Gemini API quota exceeded",
				"resource exhausted",
			},
		},
		{
			name: "Validation error names the field",
			err:  NewValidationError("title", "title is required"),
			contains: []string{
				"VALIDATION",
				"title is required",
				"field=title",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errMsg := tt.err.Error()
			for _, substr := range tt.contains {
				if !strings.Contains(errMsg, substr) {
					t.Errorf("Expected error message to contain %q, got: %s", substr, errMsg)
				}
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := ErrCacheUnavailable.WithError(baseErr)

	unwrapped := appErr.Unwrap()
	if unwrapped != baseErr {
		t.Errorf("Expected unwrapped error to be %v, got %v", baseErr, unwrapped)
	}

	if !errors.Is(appErr, baseErr) {
		t.Error("errors.Is should work with AppError")
	}
}

func TestAppError_Is_PredefinedCopies(t *testing.T) {
	wrapped := ErrQuotaExceeded.WithError(errors.New("over budget")).WithContext("limit", 1.0)

	if !errors.Is(wrapped, ErrQuotaExceeded) {
		t.Error("copies of a predefined error should match it with errors.Is")
	}

	if errors.Is(wrapped, ErrAIGeneration) {
		t.Error("different predefined errors should not match")
	}
}

func TestAppError_As(t *testing.T) {
	var err error = NewValidationError("rating", "rating must be between 1 and 5")

	var appErr *AppError
	if !errors.As(err, &appErr) {
		t.Fatal("errors.As should extract the AppError")
	}
	if appErr.Type != TypeValidation {
		t.Errorf("Expected type %s, got %s", TypeValidation, appErr.Type)
	}
}

func TestAppError_ChainedContext(t *testing.T) {
	appErr := ErrStoreUnavailable.
		WithError(errors.New("connection refused")).
		WithContext("table", "feedback").
		WithContext("operation", "insert")

	if appErr.Context["table"] != "feedback" {
		t.Errorf("Expected table context, got %v", appErr.Context["table"])
	}

	if appErr.Context["operation"] != "insert" {
		t.Errorf("Expected operation context, got %v", appErr.Context["operation"])
	}

	// Ensure we didn't modify the original error
	if ErrStoreUnavailable.Context != nil {
		t.Error("Original error should not have context")
	}
}
