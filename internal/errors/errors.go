package errors

import "fmt"

// ErrorType defines the category of the error
type ErrorType string

const (
	TypeConfiguration ErrorType = "CONFIGURATION"
	TypeAI            ErrorType = "AI"
	TypeCache         ErrorType = "CACHE"
	TypeStore         ErrorType = "STORE"
	TypeValidation    ErrorType = "VALIDATION"
	TypeNotFound      ErrorType = "NOT_FOUND"
	TypeRateLimit     ErrorType = "RATE_LIMIT"
	TypeInternal      ErrorType = "INTERNAL"
)

// AppError represents a domain-level error with a type and an underlying error
type AppError struct {
	Type       ErrorType
	Message    string
	Context    map[string]interface{}
	Err        error
	Suggestion string
}

func (e *AppError) Error() string {
	var msg string
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	} else {
		msg = fmt.Sprintf("%s: %s", e.Type, e.Message)
	}

	if e.Context != nil {
		if field, ok := e.Context["field"].(string); ok && field != "" {
			msg += fmt.Sprintf(" [field=%s]", field)
		}
	}

	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is reports whether target is an AppError with the same type and message.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Message == t.Message
}

// WithError creates a new AppError with an underlying error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        err,
		Suggestion: e.Suggestion,
	}
}

// WithContext creates a new AppError with additional context
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	ctx := make(map[string]interface{})
	for k, v := range e.Context {
		ctx[k] = v
	}
	ctx[key] = value
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    ctx,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

func (e *AppError) WithSuggestion(suggestion string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    e.Message,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: suggestion,
	}
}

// NewAppError creates a new AppError
func NewAppError(t ErrorType, msg string, err error) *AppError {
	return &AppError{
		Type:    t,
		Message: msg,
		Err:     err,
	}
}

// NewValidationError creates a VALIDATION error pointing at a request field
func NewValidationError(field, msg string) *AppError {
	return ErrInvalidRequest.WithContext("field", field).withMessage(msg)
}

func (e *AppError) withMessage(msg string) *AppError {
	return &AppError{
		Type:       e.Type,
		Message:    msg,
		Context:    e.Context,
		Err:        e.Err,
		Suggestion: e.Suggestion,
	}
}

// Configuration errors
var (
	ErrAPIKeyMissing = NewAppError(TypeConfiguration, "AI API key is missing", nil).
				WithSuggestion("Set GEMINI_API_KEY in the environment or in the .env file")

	ErrConfigInvalid = NewAppError(TypeConfiguration, "Configuration is invalid", nil).
				WithSuggestion("Run: mateticket doctor")
)

// AI errors
var (
	ErrQuotaExceeded = NewAppError(TypeAI, "AI daily budget exceeded", nil).
				WithSuggestion("Raise AI_BUDGET_DAILY_USD or wait for the budget to reset")

	ErrAIGeneration = NewAppError(TypeAI, "AI generation failed", nil).
			WithSuggestion("Try again or check your API key configuration")

	ErrInvalidAIOutput = NewAppError(TypeAI, "invalid AI output format", nil).
				WithSuggestion("This is likely a temporary issue, please try again")

	ErrAINotConfigured = NewAppError(TypeAI, "AI provider is not configured", nil).
				WithSuggestion("Set GEMINI_API_KEY to enable AI analysis")
)

// Gemini/AI specific errors
var (
	ErrGeminiAPIKeyInvalid = NewAppError(TypeAI, "Gemini API key is invalid", nil).
				WithSuggestion("Get a valid API key at: https://aistudio.google.com/app/apikey")

	ErrGeminiQuotaExceeded = NewAppError(TypeAI, "Gemini API quota exceeded", nil).
				WithSuggestion("Wait for quota to reset or upgrade your Gemini plan")
)

// Cache and store errors
var (
	ErrCacheUnavailable = NewAppError(TypeCache, "cache is unavailable", nil).
				WithSuggestion("Check REDIS_HOST and REDIS_PORT, or unset REDIS_HOST to use the in-memory cache")

	ErrStoreUnavailable = NewAppError(TypeStore, "database is unavailable", nil).
				WithSuggestion("Check DATABASE_URL and that Postgres is reachable")
)

// Request errors
var (
	ErrInvalidRequest = NewAppError(TypeValidation, "invalid request", nil)

	ErrEmptyTechnicians = NewAppError(TypeValidation, "No technicians available", nil).
				WithSuggestion("Provide at least one technician")

	ErrEmptyTickets = NewAppError(TypeValidation, "No tickets to assign", nil).
			WithSuggestion("Provide at least one pending ticket")

	ErrInvalidFeedback = NewAppError(TypeValidation, "invalid feedback", nil)

	ErrFeedbackNotFound = NewAppError(TypeNotFound, "feedback not found", nil)

	ErrRateLimited = NewAppError(TypeRateLimit, "Rate limit exceeded", nil).
			WithSuggestion("Wait for the window to reset before retrying")
)
