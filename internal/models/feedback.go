package models

import "time"

type FeedbackType string

const (
	FeedbackTriageAccuracy          FeedbackType = "triage_accuracy"
	FeedbackSLAPrediction           FeedbackType = "sla_prediction"
	FeedbackResolutionEffectiveness FeedbackType = "resolution_effectiveness"
	FeedbackWorkloadOptimization    FeedbackType = "workload_optimization"
)

var FeedbackTypes = []FeedbackType{
	FeedbackTriageAccuracy, FeedbackSLAPrediction, FeedbackResolutionEffectiveness, FeedbackWorkloadOptimization,
}

func (t FeedbackType) Valid() bool { return contains(FeedbackTypes, t) }

type (
	Feedback struct {
		FeedbackID           string         `json:"feedback_id"`
		Type                 FeedbackType   `json:"feedback_type"`
		TicketID             string         `json:"ticket_id"`
		Rating               int            `json:"rating"`
		Comment              string         `json:"comment,omitempty"`
		PredictionConfidence *float64       `json:"prediction_confidence,omitempty"`
		UserID               string         `json:"user_id,omitempty"`
		Metadata             map[string]any `json:"metadata,omitempty"`
		CreatedAt            time.Time      `json:"created_at"`
	}

	// ModelMetrics is the running aggregate of feedback for one type.
	ModelMetrics struct {
		TotalFeedback      int            `json:"total_feedback"`
		AverageRating      float64        `json:"average_rating"`
		RatingDistribution map[string]int `json:"rating_distribution"`
		ConfidenceAccuracy float64        `json:"confidence_accuracy"`
		ConfidenceSamples  int            `json:"confidence_samples"`
		LastUpdated        time.Time      `json:"last_updated"`
	}

	TypePerformance struct {
		TotalFeedback      int            `json:"total_feedback"`
		AverageRating      float64        `json:"average_rating"`
		RatingDistribution map[string]int `json:"rating_distribution"`
		Trend              string         `json:"trend"`
	}

	PerformanceReport struct {
		PeriodDays         int                              `json:"period_days"`
		TotalFeedback      int                              `json:"total_feedback"`
		AverageRating      float64                          `json:"average_rating"`
		ConfidenceAccuracy float64                          `json:"confidence_accuracy"`
		ByType             map[FeedbackType]TypePerformance `json:"by_type"`
		Recommendations    []string                         `json:"recommendations"`
		GeneratedAt        time.Time                        `json:"generated_at"`
	}
)
