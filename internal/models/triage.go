package models

import "time"

// Where a result came from.
const (
	SourceAI            = "ai"
	SourceKeyword       = "keyword"
	SourceHistorical    = "historical_ticket"
	SourceKnowledgeBase = "knowledge_base"
)

type (
	// TriageRequest is a ticket to classify.
	TriageRequest struct {
		TicketID     string       `json:"ticket_id"`
		Title        string       `json:"title"`
		Description  string       `json:"description"`
		CustomerTier CustomerTier `json:"customer_tier,omitempty"`
		CreatedAt    *time.Time   `json:"created_at,omitempty"`
	}

	// TriageResult is the classification of a ticket.
	TriageResult struct {
		TicketID                  string   `json:"ticket_id"`
		Category                  Category `json:"category"`
		Priority                  Priority `json:"priority"`
		Urgency                   Urgency  `json:"urgency"`
		Impact                    Impact   `json:"impact"`
		Confidence                float64  `json:"confidence_score"`
		Reasoning                 string   `json:"reasoning"`
		SuggestedTechnicianSkills []string `json:"suggested_technician_skills"`
		EstimatedResolutionTime   int      `json:"estimated_resolution_time"`
		KeywordsMatched           []string `json:"keywords_matched,omitempty"`
		Source                    string   `json:"source"`
		Cached                    bool     `json:"cached"`
	}

	// Classification is the raw, unvalidated answer of the AI classifier.
	Classification struct {
		Category                  string   `json:"category"`
		Urgency                   string   `json:"urgency"`
		Impact                    string   `json:"impact"`
		Confidence                *float64 `json:"confidence_score"`
		Reasoning                 string   `json:"reasoning"`
		SuggestedTechnicianSkills []string `json:"suggested_technician_skills"`
		EstimatedResolutionTime   *int     `json:"estimated_resolution_time"`
		KeyIndicators             []string `json:"key_indicators"`

		Usage *TokenUsage `json:"-"`
	}
)
