package models

import "time"

type (
	// HistoricalTicket is a resolved ticket kept for similarity lookups.
	HistoricalTicket struct {
		TicketID              string    `json:"ticket_id" yaml:"ticket_id"`
		Title                 string    `json:"title" yaml:"title"`
		Description           string    `json:"description" yaml:"description"`
		Category              Category  `json:"category" yaml:"category"`
		Resolution            string    `json:"resolution" yaml:"resolution"`
		ResolutionSteps       []string  `json:"resolution_steps" yaml:"resolution_steps"`
		ResolutionTimeMinutes int       `json:"resolution_time_minutes" yaml:"resolution_time_minutes"`
		TechnicianID          string    `json:"technician_id,omitempty" yaml:"technician_id"`
		CustomerSatisfaction  float64   `json:"customer_satisfaction,omitempty" yaml:"customer_satisfaction"`
		Tags                  []string  `json:"tags" yaml:"tags"`
		CreatedAt             time.Time `json:"created_at" yaml:"created_at"`
		ResolvedAt            time.Time `json:"resolved_at" yaml:"resolved_at"`
	}

	// KnowledgeArticle is a knowledge base entry.
	KnowledgeArticle struct {
		ArticleID        string    `json:"article_id" yaml:"article_id"`
		Title            string    `json:"title" yaml:"title"`
		Content          string    `json:"content" yaml:"content"`
		Category         Category  `json:"category" yaml:"category"`
		Steps            []string  `json:"steps,omitempty" yaml:"steps"`
		Tags             []string  `json:"tags" yaml:"tags"`
		LastUpdated      time.Time `json:"last_updated" yaml:"last_updated"`
		ViewCount        int       `json:"view_count" yaml:"view_count"`
		HelpfulnessScore float64   `json:"helpfulness_score" yaml:"helpfulness_score"`
	}

	ResolutionRequest struct {
		TicketID             string   `json:"ticket_id"`
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Category             Category `json:"category,omitempty"`
		MaxSuggestions       int      `json:"max_suggestions,omitempty"`
		IncludeKnowledgeBase *bool    `json:"include_knowledge_base,omitempty"`
	}

	ResolutionStep struct {
		StepNumber          int      `json:"step_number"`
		Description         string   `json:"description"`
		ExpectedOutcome     string   `json:"expected_outcome,omitempty"`
		TroubleshootingTips []string `json:"troubleshooting_tips,omitempty"`
	}

	ResolutionSuggestion struct {
		SuggestionID         string           `json:"suggestion_id"`
		Title                string           `json:"title"`
		Description          string           `json:"description"`
		Confidence           float64          `json:"confidence_score"`
		Similarity           float64          `json:"similarity_score"`
		SourceType           string           `json:"source_type"`
		SourceID             string           `json:"source_id,omitempty"`
		Steps                []ResolutionStep `json:"resolution_steps"`
		EstimatedTimeMinutes int              `json:"estimated_time_minutes,omitempty"`
		RequiredSkills       []string         `json:"required_skills"`
		SuccessRate          float64          `json:"success_rate,omitempty"`
		KnowledgeReferences  []string         `json:"knowledge_base_references,omitempty"`
		Tags                 []string         `json:"tags,omitempty"`
	}

	SimilarTicket struct {
		TicketID          string   `json:"ticket_id"`
		Similarity        float64  `json:"similarity_score"`
		Title             string   `json:"title"`
		Category          Category `json:"category"`
		ResolutionSummary string   `json:"resolution_summary"`
	}

	ArticleMatch struct {
		ArticleID        string   `json:"article_id"`
		Title            string   `json:"title"`
		Category         Category `json:"category"`
		Relevance        float64  `json:"relevance_score"`
		HelpfulnessScore float64  `json:"helpfulness_score"`
	}

	ResolutionResult struct {
		TicketID          string                 `json:"ticket_id"`
		Suggestions       []ResolutionSuggestion `json:"suggestions"`
		SimilarTickets    []SimilarTicket        `json:"similar_tickets"`
		KnowledgeArticles []ArticleMatch         `json:"knowledge_articles"`
		Cached            bool                   `json:"cached"`
	}

	// AIResolution is one suggestion produced by the AI resolver.
	AIResolution struct {
		Title                string   `json:"title"`
		Description          string   `json:"description"`
		Steps                []string `json:"steps"`
		Confidence           float64  `json:"confidence_score"`
		EstimatedTimeMinutes int      `json:"estimated_time_minutes"`
		RequiredSkills       []string `json:"required_skills"`
	}

	AIResolutionSet struct {
		Suggestions []AIResolution `json:"suggestions"`
		Usage       *TokenUsage    `json:"-"`
	}
)
