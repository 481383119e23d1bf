package workload

import (
	"context"
	"sort"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	alertUtilization      = 90.0
	bottleneckMinDemand   = 3
	bottleneckMinCoverage = 2

	collaborationComplexity = 7.0
	minCollaborationScore   = 0.3
	maxCollaborators        = 2
	seniorExperience        = 7.0
	juniorExperience        = 4.0

	burnoutUtilization     = 85.0
	burnoutRiskThreshold   = 0.7
	developmentUtilization = 75.0
)

func forecastRisk(utilization float64) string {
	switch {
	case utilization > 95:
		return "critical"
	case utilization > 85:
		return "high"
	case utilization > 70:
		return "medium"
	default:
		return "low"
	}
}

// PredictTrends projects next week's workload from the assignments already
// made and flags skills too few technicians can cover.
func (o *Optimizer) PredictTrends(ctx context.Context, req models.TrendsRequest) (*models.TrendPrediction, error) {
	if len(req.Technicians) == 0 {
		return nil, domainErrors.ErrEmptyTechnicians
	}

	out := &models.TrendPrediction{
		NextWeekForecast: make(map[string]models.Forecast, len(req.Technicians)),
		CapacityAlerts:   []models.CapacityAlert{},
		Bottlenecks:      []models.Bottleneck{},
	}

	minutes := make(map[string]float64)
	for _, a := range req.CurrentAssignments {
		est := a.EstimatedMinutes
		if est <= 0 {
			est = defaultEstimatedMinutes
		}
		minutes[a.TechnicianID] += est
	}

	techs := make([]technician, 0, len(req.Technicians))
	for _, t := range req.Technicians {
		tech := newTechnician(t)
		techs = append(techs, tech)

		predicted := tech.currentWorkload + minutes[tech.id]/60
		utilization := predicted / tech.maxCapacity * 100

		trend := "stable"
		if predicted > tech.currentWorkload {
			trend = "increasing"
		}
		out.NextWeekForecast[tech.id] = models.Forecast{
			PredictedWorkload: predicted,
			Utilization:       utilization,
			Trend:             trend,
			RiskLevel:         forecastRisk(utilization),
		}

		if utilization > alertUtilization {
			out.CapacityAlerts = append(out.CapacityAlerts, models.CapacityAlert{
				TechnicianID:         tech.id,
				AlertType:            "overutilization_risk",
				Severity:             "high",
				PredictedUtilization: utilization,
				RecommendedAction:    "redistribute_workload",
			})
		}
	}

	demand := make(map[string]int)
	for _, a := range req.CurrentAssignments {
		for _, skill := range unique(a.RequiredSkills) {
			demand[skill]++
		}
	}
	skills := make([]string, 0, len(demand))
	for skill := range demand {
		skills = append(skills, skill)
	}
	sort.Strings(skills)

	for _, skill := range skills {
		available := 0
		for _, tech := range techs {
			if tech.has(skill) {
				available++
			}
		}
		if demand[skill] > bottleneckMinDemand && available < bottleneckMinCoverage {
			out.Bottlenecks = append(out.Bottlenecks, models.Bottleneck{
				Skill:                skill,
				Demand:               demand[skill],
				AvailableTechnicians: available,
				RiskLevel:            "high",
				Recommendation:       "cross_train_technicians",
			})
		}
	}

	logger.FromContext(ctx).Info("workload trends predicted",
		"technicians", len(techs),
		"alerts", len(out.CapacityAlerts),
		"bottlenecks", len(out.Bottlenecks))

	return out, nil
}

// AnalyzeTeam looks for help on complex tickets, mentor and mentee pairs and
// how evenly skills are spread across the team.
func (o *Optimizer) AnalyzeTeam(ctx context.Context, req models.TeamRequest) (*models.TeamInsights, error) {
	if len(req.Technicians) == 0 {
		return nil, domainErrors.ErrEmptyTechnicians
	}

	techs := make([]technician, 0, len(req.Technicians))
	byID := make(map[string]technician, len(req.Technicians))
	for _, t := range req.Technicians {
		tech := newTechnician(t)
		techs = append(techs, tech)
		byID[tech.id] = tech
	}

	out := &models.TeamInsights{
		CollaborationOpportunities: []models.CollaborationOpportunity{},
		Mentorships:                []models.Mentorship{},
	}

	for _, a := range req.Assignments {
		if a.ComplexityScore <= collaborationComplexity {
			continue
		}
		primary, ok := byID[a.TechnicianID]
		if !ok || len(a.RequiredSkills) == 0 {
			continue
		}
		required := unique(a.RequiredSkills)

		var collaborators []models.Collaborator
		for _, tech := range techs {
			if tech.id == primary.id {
				continue
			}
			shared := intersect(tech.skills, required)
			if len(shared) == 0 {
				continue
			}
			score := float64(len(shared)) / float64(len(required))
			if score <= minCollaborationScore {
				continue
			}
			complementary := difference(tech.skills, primary.skills)
			if complementary == nil {
				complementary = []string{}
			}
			collaborators = append(collaborators, models.Collaborator{
				TechnicianID:        tech.id,
				CollaborationScore:  score,
				ComplementarySkills: complementary,
			})
		}
		if len(collaborators) == 0 {
			continue
		}

		sort.SliceStable(collaborators, func(i, j int) bool {
			return collaborators[i].CollaborationScore > collaborators[j].CollaborationScore
		})
		if len(collaborators) > maxCollaborators {
			collaborators = collaborators[:maxCollaborators]
		}
		out.CollaborationOpportunities = append(out.CollaborationOpportunities, models.CollaborationOpportunity{
			TicketID:          a.TicketID,
			PrimaryTechnician: primary.id,
			Collaborators:     collaborators,
		})
	}

	for _, senior := range techs {
		if senior.experience <= seniorExperience {
			continue
		}
		for _, junior := range techs {
			if junior.experience >= juniorExperience {
				continue
			}
			transfer := intersect(senior.skills, junior.learningGoals)
			if len(transfer) == 0 {
				continue
			}
			out.Mentorships = append(out.Mentorships, models.Mentorship{
				MentorID:         senior.id,
				MenteeID:         junior.id,
				SkillsToTransfer: transfer,
				Score:            float64(len(transfer)) / float64(max(1, len(junior.learningGoals))),
			})
		}
	}

	coverage := make(map[string]int)
	for _, tech := range techs {
		for _, skill := range unique(tech.skills) {
			coverage[skill]++
		}
	}
	if len(coverage) > 0 {
		counts := make([]float64, 0, len(coverage))
		for _, n := range coverage {
			counts = append(counts, float64(n))
		}
		out.BalanceScore = max(0, 1-variance(counts)/10)
	}

	logger.FromContext(ctx).Info("team dynamics analyzed",
		"technicians", len(techs),
		"collaborations", len(out.CollaborationOpportunities),
		"mentorships", len(out.Mentorships))

	return out, nil
}

// WellnessRecommendations suggests workload reductions, development time and
// rebalancing ahead of a predicted overload.
func (o *Optimizer) WellnessRecommendations(ctx context.Context, req models.WellnessRequest) ([]models.WellnessRecommendation, error) {
	if len(req.Technicians) == 0 {
		return nil, domainErrors.ErrEmptyTechnicians
	}

	out := []models.WellnessRecommendation{}
	for _, t := range req.Technicians {
		tech := newTechnician(t)
		utilization := tech.currentWorkload / tech.maxCapacity * 100

		if utilization > burnoutUtilization || tech.burnoutRisk > burnoutRiskThreshold {
			out = append(out, models.WellnessRecommendation{
				TechnicianID: tech.id,
				Type:         "workload_reduction",
				Priority:     "high",
				Description:  "Reduce workload to prevent burnout",
				SpecificActions: []string{
					"Redistribute 2-3 non-critical tickets",
					"Schedule wellness check-in",
					"Consider flexible working hours",
				},
				ExpectedImpact: "Reduce burnout risk by 30%",
			})
		}

		if len(tech.learningGoals) > 0 && utilization < developmentUtilization {
			out = append(out, models.WellnessRecommendation{
				TechnicianID: tech.id,
				Type:         "skill_development",
				Priority:     "medium",
				Description:  "Opportunity for skill development",
				SpecificActions: []string{
					"Assign tickets involving " + tech.learningGoals[0],
					"Pair with senior technician for mentoring",
					"Allocate time for training",
				},
				ExpectedImpact: "Improve skill proficiency and job satisfaction",
			})
		}

		if req.Predictions != nil {
			if f, ok := req.Predictions.NextWeekForecast[tech.id]; ok && f.Utilization > alertUtilization {
				out = append(out, models.WellnessRecommendation{
					TechnicianID: tech.id,
					Type:         "proactive_rebalancing",
					Priority:     "medium",
					Description:  "Predicted overutilization next week",
					SpecificActions: []string{
						"Preemptively redistribute upcoming tickets",
						"Consider temporary capacity increase",
						"Schedule workload review meeting",
					},
					ExpectedImpact: "Prevent future burnout and maintain quality",
				})
			}
		}
	}

	logger.FromContext(ctx).Info("wellness recommendations generated",
		"technicians", len(req.Technicians),
		"count", len(out))

	return out, nil
}
