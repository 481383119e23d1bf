package models

import "time"

type (
	// SLARequest describes the state of a ticket whose SLA risk is assessed.
	SLARequest struct {
		TicketID                   string       `json:"ticket_id"`
		Title                      string       `json:"title,omitempty"`
		Description                string       `json:"description,omitempty"`
		Priority                   Priority     `json:"priority"`
		Category                   Category     `json:"category,omitempty"`
		Status                     TicketStatus `json:"status"`
		CustomerTier               CustomerTier `json:"customer_tier,omitempty"`
		CreatedAt                  time.Time    `json:"created_at"`
		SLADeadline                *time.Time   `json:"sla_deadline,omitempty"`
		CurrentTime                *time.Time   `json:"current_time,omitempty"`
		TimeSpentMinutes           float64      `json:"time_spent"`
		AssignedTechnicianID       string       `json:"assigned_technician_id,omitempty"`
		TechnicianWorkload         *float64     `json:"technician_current_workload,omitempty"`
		TechnicianSkillLevel       *float64     `json:"technician_skill_level,omitempty"`
		EscalationLevel            int          `json:"escalation_level"`
		EstimatedResolutionMinutes *float64     `json:"estimated_resolution_time,omitempty"`
	}

	// SLAPrediction is the breach risk assessment for a ticket.
	SLAPrediction struct {
		TicketID                   string             `json:"ticket_id"`
		BreachProbability          float64            `json:"breach_probability"`
		RiskLevel                  RiskLevel          `json:"risk_level"`
		Confidence                 float64            `json:"confidence_score"`
		EstimatedCompletionTime    *time.Time         `json:"estimated_completion_time,omitempty"`
		TimeRemainingMinutes       int                `json:"time_remaining_minutes"`
		EstimatedResolutionMinutes int                `json:"estimated_resolution_minutes"`
		RiskFactors                []string           `json:"primary_risk_factors"`
		RiskFactorScores           map[string]float64 `json:"risk_factor_scores,omitempty"`
		Recommendations            []string           `json:"recommended_actions"`
		EscalationRecommended      bool               `json:"escalation_recommended"`
		ReassignmentRecommended    bool               `json:"reassignment_recommended"`
		ModelVersion               string             `json:"model_version"`
		Cached                     bool               `json:"cached"`
	}

	// SLAAssessment is the raw answer of the AI SLA assessor.
	SLAAssessment struct {
		BreachProbability        *float64 `json:"breach_probability"`
		RiskLevel                string   `json:"risk_level"`
		EstimatedCompletionHours *float64 `json:"estimated_completion_hours"`
		Confidence               *float64 `json:"confidence_score"`
		RiskFactors              []string `json:"risk_factors"`
		Recommendations          []string `json:"recommended_actions"`

		Usage *TokenUsage `json:"-"`
	}
)
