package models

// Optimization goals accepted by the advanced optimizer.
const (
	GoalEfficiency       = "efficiency"
	GoalBalance          = "balance"
	GoalSLACompliance    = "sla_compliance"
	GoalSkillDevelopment = "skill_development"
	GoalWellness         = "wellness"
)

// Goals lists every optimization goal.
var Goals = []string{GoalEfficiency, GoalBalance, GoalSLACompliance, GoalSkillDevelopment, GoalWellness}

type (
	// Technician is a member of the support team. Zero or nil fields take the
	// optimizer defaults.
	Technician struct {
		TechnicianID        string             `json:"technician_id"`
		Name                string             `json:"name,omitempty"`
		Skills              []string           `json:"skills"`
		SkillLevels         map[string]float64 `json:"skill_levels,omitempty"`
		CurrentWorkload     float64            `json:"current_workload"`
		MaxCapacity         float64            `json:"max_capacity,omitempty"`
		ExperienceLevel     *float64           `json:"experience_level,omitempty"`
		PerformanceRating   *float64           `json:"performance_rating,omitempty"`
		AvailabilityHours   *float64           `json:"availability_hours,omitempty"`
		PreferredCategories []Category         `json:"preferred_ticket_types,omitempty"`
		BurnoutRisk         *float64           `json:"burnout_risk_score,omitempty"`
		LearningGoals       []string           `json:"learning_goals,omitempty"`
		CollaborationScore  *float64           `json:"collaboration_score,omitempty"`
	}

	// PendingTicket is a ticket waiting for an assignee.
	PendingTicket struct {
		TicketID            string   `json:"ticket_id"`
		Title               string   `json:"title,omitempty"`
		Category            Category `json:"category,omitempty"`
		Priority            Priority `json:"priority,omitempty"`
		RequiredSkills      []string `json:"required_skills"`
		ComplexityScore     *float64 `json:"complexity_score,omitempty"`
		EstimatedMinutes    float64  `json:"estimated_time,omitempty"`
		SLAHours            float64  `json:"sla_hours,omitempty"`
		LearningOpportunity bool     `json:"learning_opportunity,omitempty"`
	}

	WorkloadRequest struct {
		Technicians       []Technician    `json:"technicians"`
		PendingTickets    []PendingTicket `json:"pending_tickets"`
		OptimizationGoals []string        `json:"optimization_goals,omitempty"`
	}

	Assignment struct {
		TicketID                string  `json:"ticket_id"`
		RecommendedTechnicianID string  `json:"recommended_technician_id"`
		Confidence              float64 `json:"confidence_score"`
		SkillMatch              float64 `json:"skill_match_score"`
		Reasoning               string  `json:"reasoning"`
	}

	CapacityRecommendation struct {
		TechnicianID      string `json:"technician_id"`
		RecommendedAction string `json:"recommended_action"`
		Impact            string `json:"impact"`
	}

	WorkloadAnalysis struct {
		Overutilized            []string                 `json:"overutilized_technicians"`
		Underutilized           []string                 `json:"underutilized_technicians"`
		CapacityRecommendations []CapacityRecommendation `json:"capacity_recommendations"`
	}

	WorkloadResult struct {
		Recommendations []Assignment     `json:"recommendations"`
		Analysis        WorkloadAnalysis `json:"workload_analysis"`
		Metadata        WorkloadMetadata `json:"metadata"`
	}

	WorkloadMetadata struct {
		TechniciansAnalyzed int `json:"technicians_analyzed"`
		TicketsProcessed    int `json:"tickets_processed"`
		AssignmentsMade     int `json:"assignments_made"`
	}
)

type (
	AlternativeTechnician struct {
		TechnicianID string  `json:"technician_id"`
		Score        float64 `json:"score"`
		Reasoning    string  `json:"reasoning"`
	}

	OptimizedAssignment struct {
		TicketID            string                  `json:"ticket_id"`
		TechnicianID        string                  `json:"technician_id"`
		Confidence          float64                 `json:"confidence_score"`
		Reasoning           string                  `json:"reasoning"`
		EstimatedMinutes    float64                 `json:"estimated_completion_time"`
		SkillMatch          float64                 `json:"skill_match_score"`
		WorkloadImpact      float64                 `json:"workload_impact"`
		SLARisk             float64                 `json:"sla_risk_score"`
		LearningValue       float64                 `json:"learning_value"`
		RequiredSkills      []string                `json:"required_skills,omitempty"`
		ComplexityScore     float64                 `json:"complexity_score"`
		Alternatives        []AlternativeTechnician `json:"alternative_technicians"`
		OptimizationApplied bool                    `json:"optimization_applied"`
		AssignmentType      string                  `json:"assignment_type"`
	}

	TechnicianUtilization struct {
		Utilization         float64 `json:"current_utilization"`
		AssignedTickets     int     `json:"assigned_tickets"`
		TotalEstimatedHours float64 `json:"total_estimated_hours"`
		CapacityRemaining   float64 `json:"capacity_remaining"`
	}

	UtilizationAlert struct {
		TechnicianID      string  `json:"technician_id"`
		Utilization       float64 `json:"utilization"`
		RiskLevel         string  `json:"risk_level,omitempty"`
		Opportunity       string  `json:"opportunity,omitempty"`
		RecommendedAction string  `json:"recommended_action"`
	}

	DistributionAnalysis struct {
		BalanceScore            float64                          `json:"overall_balance_score"`
		UtilizationDistribution map[string]TechnicianUtilization `json:"utilization_distribution"`
		Overutilized            []UtilizationAlert               `json:"overutilized_technicians"`
		Underutilized           []UtilizationAlert               `json:"underutilized_technicians"`
	}

	ConfidenceMetrics struct {
		Average      float64        `json:"average_confidence"`
		Min          float64        `json:"min_confidence"`
		Max          float64        `json:"max_confidence"`
		High         int            `json:"high_confidence_assignments"`
		Low          int            `json:"low_confidence_assignments"`
		Distribution map[string]int `json:"confidence_distribution"`
	}

	Scenario struct {
		Name           string             `json:"scenario_name"`
		Description    string             `json:"description"`
		Weights        map[string]float64 `json:"optimization_weights"`
		EstimatedScore float64            `json:"estimated_score"`
		TradeOffs      []string           `json:"trade_offs"`
	}

	AdvancedWorkloadResult struct {
		Assignments       []OptimizedAssignment `json:"assignments"`
		Analysis          DistributionAnalysis  `json:"workload_analysis"`
		OptimizationScore float64               `json:"optimization_score"`
		Weights           map[string]float64    `json:"optimization_weights"`
		ConfidenceMetrics ConfidenceMetrics     `json:"confidence_metrics"`
		Alternatives      []Scenario            `json:"alternatives"`
	}
)

type (
	// TrendsRequest pairs the team with assignments already made.
	TrendsRequest struct {
		Technicians        []Technician          `json:"technicians"`
		CurrentAssignments []OptimizedAssignment `json:"current_assignments"`
	}

	// TeamRequest is the input of the team dynamics analysis.
	TeamRequest struct {
		Technicians []Technician          `json:"technicians"`
		Assignments []OptimizedAssignment `json:"assignments"`
	}

	Forecast struct {
		PredictedWorkload float64 `json:"predicted_workload"`
		Utilization       float64 `json:"utilization_percentage"`
		Trend             string  `json:"trend"`
		RiskLevel         string  `json:"risk_level"`
	}

	CapacityAlert struct {
		TechnicianID         string  `json:"technician_id"`
		AlertType            string  `json:"alert_type"`
		Severity             string  `json:"severity"`
		PredictedUtilization float64 `json:"predicted_utilization"`
		RecommendedAction    string  `json:"recommended_action"`
	}

	Bottleneck struct {
		Skill                string `json:"skill"`
		Demand               int    `json:"demand"`
		AvailableTechnicians int    `json:"available_technicians"`
		RiskLevel            string `json:"risk_level"`
		Recommendation       string `json:"recommendation"`
	}

	TrendPrediction struct {
		NextWeekForecast map[string]Forecast `json:"next_week_forecast"`
		CapacityAlerts   []CapacityAlert     `json:"capacity_alerts"`
		Bottlenecks      []Bottleneck        `json:"bottleneck_predictions"`
	}

	Collaborator struct {
		TechnicianID        string   `json:"technician_id"`
		CollaborationScore  float64  `json:"collaboration_score"`
		ComplementarySkills []string `json:"complementary_skills"`
	}

	CollaborationOpportunity struct {
		TicketID          string         `json:"ticket_id"`
		PrimaryTechnician string         `json:"primary_technician"`
		Collaborators     []Collaborator `json:"potential_collaborators"`
	}

	Mentorship struct {
		MentorID         string   `json:"mentor_id"`
		MenteeID         string   `json:"mentee_id"`
		SkillsToTransfer []string `json:"skills_to_transfer"`
		Score            float64  `json:"mentorship_score"`
	}

	TeamInsights struct {
		CollaborationOpportunities []CollaborationOpportunity `json:"collaboration_opportunities"`
		Mentorships                []Mentorship               `json:"mentorship_recommendations"`
		BalanceScore               float64                    `json:"team_balance_score"`
	}

	// WellnessRequest carries the team and, optionally, a trend prediction
	// to check for upcoming overload.
	WellnessRequest struct {
		Technicians []Technician     `json:"technicians"`
		Predictions *TrendPrediction `json:"workload_predictions,omitempty"`
	}

	WellnessRecommendation struct {
		TechnicianID    string   `json:"technician_id"`
		Type            string   `json:"recommendation_type"`
		Priority        string   `json:"priority"`
		Description     string   `json:"description"`
		SpecificActions []string `json:"specific_actions"`
		ExpectedImpact  string   `json:"expected_impact"`
	}
)
