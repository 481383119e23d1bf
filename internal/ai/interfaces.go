package ai

import (
	"context"

	"github.com/thomas-vilte/mateticket/internal/models"
)

// TicketAnalyzer is the AI side of the ticket services.
type TicketAnalyzer interface {
	// ClassifyTicket asks the model for category, urgency and impact.
	ClassifyTicket(ctx context.Context, req models.TriageRequest) (*models.Classification, error)

	// PredictSLA asks the model for a breach probability of the ticket.
	PredictSLA(ctx context.Context, req models.SLARequest) (*models.SLAAssessment, error)

	// SuggestResolution asks the model for resolution suggestions, given the
	// similar tickets already found.
	SuggestResolution(ctx context.Context, req models.ResolutionRequest, similar []models.SimilarTicket) (*models.AIResolutionSet, error)

	// Ping makes a minimal request to check the provider is reachable.
	Ping(ctx context.Context) error
}

// CostAwareAIProvider defines the interface for AI providers that support cost tracking.
type CostAwareAIProvider interface {
	// CountTokens counts the tokens of a prompt without making the actual model call.
	CountTokens(ctx context.Context, prompt string) (int, error)

	// GetModelName returns the name of the current model (e.g.: "gemini-1.5-flash")
	GetModelName() string

	// GetProviderName returns the name of the provider (e.g.: "gemini")
	GetProviderName() string
}

// CallObserver is told about every wrapped AI call.
type CallObserver interface {
	ObserveAICall(operation, outcome string, costUSD float64)
}

// Outcomes reported to a CallObserver.
const (
	OutcomeSuccess        = "success"
	OutcomeCacheHit       = "cache_hit"
	OutcomeError          = "error"
	OutcomeBudgetExceeded = "budget_exceeded"
)
