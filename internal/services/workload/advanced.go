package workload

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	maxAlternatives        = 3
	strongAlternativeScore = 0.6
	assignmentType         = "ai_optimized"
)

// DefaultWeights returns the goal weights used when no goal is requested.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		models.GoalEfficiency:       0.3,
		models.GoalBalance:          0.25,
		models.GoalSLACompliance:    0.25,
		models.GoalSkillDevelopment: 0.1,
		models.GoalWellness:         0.1,
	}
}

// weightsFor splits the weight evenly between the requested goals and gives
// every other goal a tenth of that share.
func weightsFor(goals []string) (map[string]float64, error) {
	if len(goals) == 0 {
		return DefaultWeights(), nil
	}
	for _, g := range goals {
		if !slices.Contains(models.Goals, g) {
			return nil, domainErrors.NewValidationError("optimization_goals", fmt.Sprintf("unknown goal %q", g))
		}
	}

	base := 1 / float64(len(goals))
	weights := make(map[string]float64, len(models.Goals))
	for _, g := range models.Goals {
		if slices.Contains(goals, g) {
			weights[g] = base
		} else {
			weights[g] = 0.1 * base
		}
	}
	return weights, nil
}

// OptimizeAdvanced scores every technician for every ticket on skills,
// workload, experience and availability, adjusted by the requested goals.
func (o *Optimizer) OptimizeAdvanced(ctx context.Context, req models.WorkloadRequest) (*models.AdvancedWorkloadResult, error) {
	log := logger.FromContext(ctx)

	if err := validateRequest(req.Technicians, req.PendingTickets); err != nil {
		return nil, err
	}
	weights, err := weightsFor(req.OptimizationGoals)
	if err != nil {
		return nil, err
	}

	techs := make([]technician, 0, len(req.Technicians))
	for _, t := range req.Technicians {
		techs = append(techs, newTechnician(t))
	}
	tickets := make([]ticket, 0, len(req.PendingTickets))
	for _, p := range req.PendingTickets {
		tickets = append(tickets, newTicket(p))
	}
	slices.SortStableFunc(tickets, byUrgency)

	addedMinutes := make(map[string]float64, len(techs))
	assignments := make([]models.OptimizedAssignment, 0, len(tickets))
	for _, tk := range tickets {
		a := bestTechnician(tk, techs, addedMinutes, weights)
		addedMinutes[a.TechnicianID] += tk.estimatedMinutes
		assignments = append(assignments, a)
	}

	result := &models.AdvancedWorkloadResult{
		Assignments:       assignments,
		Analysis:          analyzeDistribution(techs, assignments),
		OptimizationScore: optimizationScore(assignments, weights),
		Weights:           weights,
		ConfidenceMetrics: confidenceMetrics(assignments),
		Alternatives:      scenarios(weights),
	}

	log.Info("advanced workload optimization completed",
		"technicians", len(techs),
		"tickets", len(tickets),
		"optimization_score", result.OptimizationScore,
		"balance_score", result.Analysis.BalanceScore)

	return result, nil
}

func bestTechnician(tk ticket, techs []technician, addedMinutes map[string]float64, weights map[string]float64) models.OptimizedAssignment {
	var (
		best         *technician
		bestScore    = math.Inf(-1)
		alternatives []models.AlternativeTechnician
	)

	for i := range techs {
		tech := &techs[i]
		score := compositeScore(*tech, tk, addedMinutes[tech.id], weights)

		if score > bestScore {
			if best != nil {
				alternatives = append(alternatives, models.AlternativeTechnician{
					TechnicianID: best.id,
					Score:        bestScore,
					Reasoning:    "Previous best candidate",
				})
			}
			best, bestScore = tech, score
		} else if score > strongAlternativeScore {
			alternatives = append(alternatives, models.AlternativeTechnician{
				TechnicianID: tech.id,
				Score:        score,
				Reasoning:    "Strong alternative candidate",
			})
		}
	}

	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}
	if alternatives == nil {
		alternatives = []models.AlternativeTechnician{}
	}

	added := addedMinutes[best.id]
	return models.OptimizedAssignment{
		TicketID:            tk.id,
		TechnicianID:        best.id,
		Confidence:          clamp01(min(0.95, bestScore)),
		Reasoning:           reasoning(*best, tk),
		EstimatedMinutes:    tk.estimatedMinutes,
		SkillMatch:          skillMatch(*best, tk),
		WorkloadImpact:      min(1, (best.currentWorkload+(added+tk.estimatedMinutes)/60)/best.maxCapacity),
		SLARisk:             slaRisk(*best, tk),
		LearningValue:       learningValue(*best, tk),
		RequiredSkills:      tk.requiredSkills,
		ComplexityScore:     tk.complexity,
		Alternatives:        alternatives,
		OptimizationApplied: true,
		AssignmentType:      assignmentType,
	}
}

func compositeScore(tech technician, tk ticket, addedMinutes float64, weights map[string]float64) float64 {
	score := skillMatch(tech, tk)*0.4 +
		workloadScore(tech, addedMinutes)*0.3 +
		min(1, tech.experience/10)*0.2 +
		availabilityScore(tech, tk)*0.1

	if weights[models.GoalWellness] > 0.2 {
		score *= 1 - tech.burnoutRisk*0.3
	}
	if weights[models.GoalSkillDevelopment] > 0.2 && tk.learningOpportunity && len(intersect(tk.requiredSkills, tech.learningGoals)) > 0 {
		score *= 1.2
	}
	return score
}

// skillMatch is the basic overlap plus a bonus for the technician's level in
// the overlapping skills.
func skillMatch(tech technician, tk ticket) float64 {
	if len(tk.requiredSkills) == 0 {
		return 0.5
	}
	overlap := intersect(unique(tk.requiredSkills), tech.skills)
	basic := float64(len(overlap)) / float64(len(unique(tk.requiredSkills)))
	if len(overlap) == 0 {
		return basic
	}

	var levels float64
	for _, skill := range overlap {
		levels += tech.skillLevels[skill]
	}
	return min(1, basic+levels/(float64(len(overlap))*10))
}

// workloadScore prefers technicians between half and 80% utilization.
func workloadScore(tech technician, addedMinutes float64) float64 {
	utilization := (tech.currentWorkload + addedMinutes/60) / tech.maxCapacity
	switch {
	case utilization < 0.5:
		return 0.7
	case utilization < 0.8:
		return 1
	case utilization < 0.9:
		return 0.6
	default:
		return 0.2
	}
}

func availabilityScore(tech technician, tk ticket) float64 {
	score := min(1, tech.availabilityHours/defaultAvailabilityHours)
	if tech.prefers(tk.category) {
		score *= 1.1
	}
	return min(1, score)
}

// slaRisk is the share of the SLA window the ticket needs, inflated for
// technicians with a lower performance rating.
func slaRisk(tech technician, tk ticket) float64 {
	if tk.slaHours <= 0 {
		return 1
	}
	pressure := (tk.estimatedMinutes / 60) / tk.slaHours
	return clamp01(pressure * (2 - tech.performance/5))
}

func learningValue(tech technician, tk ticket) float64 {
	if !tk.learningOpportunity {
		return 0
	}
	if overlap := intersect(tk.requiredSkills, tech.learningGoals); len(overlap) > 0 {
		return float64(len(overlap)) / float64(max(1, len(tech.learningGoals)))
	}
	if fresh := difference(tk.requiredSkills, tech.skills); len(fresh) > 0 && len(fresh) <= 2 {
		return 0.3
	}
	return 0
}

func reasoning(tech technician, tk ticket) string {
	var reasons []string

	match := skillMatch(tech, tk)
	switch {
	case match > 0.8:
		reasons = append(reasons, fmt.Sprintf("Excellent skill match (%d%%)", int(match*100)))
	case match > 0.6:
		reasons = append(reasons, fmt.Sprintf("Good skill match (%d%%)", int(match*100)))
	}

	utilization := tech.currentWorkload / tech.maxCapacity
	switch {
	case utilization < 0.7:
		reasons = append(reasons, "Available capacity")
	case utilization < 0.85:
		reasons = append(reasons, "Manageable workload")
	}

	if tech.experience > 7 {
		reasons = append(reasons, "High experience level")
	}
	if tech.prefers(tk.category) {
		reasons = append(reasons, "Matches preferences")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Best available option")
	}
	return strings.Join(reasons, ", ")
}

func analyzeDistribution(techs []technician, assignments []models.OptimizedAssignment) models.DistributionAnalysis {
	analysis := models.DistributionAnalysis{
		UtilizationDistribution: make(map[string]models.TechnicianUtilization, len(techs)),
		Overutilized:            []models.UtilizationAlert{},
		Underutilized:           []models.UtilizationAlert{},
	}

	minutes := make(map[string]float64)
	count := make(map[string]int)
	for _, a := range assignments {
		minutes[a.TechnicianID] += a.EstimatedMinutes
		count[a.TechnicianID]++
	}

	utilizations := make([]float64, 0, len(techs))
	for _, tech := range techs {
		hours := minutes[tech.id] / 60
		load := tech.currentWorkload + hours
		utilization := load / tech.maxCapacity * 100
		utilizations = append(utilizations, utilization)

		analysis.UtilizationDistribution[tech.id] = models.TechnicianUtilization{
			Utilization:         utilization,
			AssignedTickets:     count[tech.id],
			TotalEstimatedHours: hours,
			CapacityRemaining:   max(0, tech.maxCapacity-load),
		}

		switch {
		case utilization > 85:
			risk := "medium"
			if utilization > 95 {
				risk = "high"
			}
			analysis.Overutilized = append(analysis.Overutilized, models.UtilizationAlert{
				TechnicianID:      tech.id,
				Utilization:       utilization,
				RiskLevel:         risk,
				RecommendedAction: "redistribute_workload",
			})
		case utilization < 50:
			analysis.Underutilized = append(analysis.Underutilized, models.UtilizationAlert{
				TechnicianID:      tech.id,
				Utilization:       utilization,
				Opportunity:       "can_take_more_tickets",
				RecommendedAction: "assign_additional_work",
			})
		}
	}

	analysis.BalanceScore = max(0, 1-variance(utilizations)/1000)
	return analysis
}

func optimizationScore(assignments []models.OptimizedAssignment, weights map[string]float64) float64 {
	skills := make([]float64, 0, len(assignments))
	impacts := make([]float64, 0, len(assignments))
	sla := make([]float64, 0, len(assignments))
	for _, a := range assignments {
		skills = append(skills, a.SkillMatch)
		impacts = append(impacts, a.WorkloadImpact)
		sla = append(sla, 1-a.SLARisk)
	}

	return mean(skills)*weights[models.GoalEfficiency] +
		(1-variance(impacts))*weights[models.GoalBalance] +
		mean(sla)*weights[models.GoalSLACompliance]
}

func confidenceMetrics(assignments []models.OptimizedAssignment) models.ConfidenceMetrics {
	m := models.ConfidenceMetrics{
		Distribution: map[string]int{"excellent": 0, "good": 0, "fair": 0, "poor": 0},
	}
	if len(assignments) == 0 {
		return m
	}

	m.Min = math.Inf(1)
	var sum float64
	for _, a := range assignments {
		c := a.Confidence
		sum += c
		m.Min = min(m.Min, c)
		m.Max = max(m.Max, c)
		if c > 0.8 {
			m.High++
		}
		if c < 0.6 {
			m.Low++
		}
		switch {
		case c > 0.9:
			m.Distribution["excellent"]++
		case c > 0.7:
			m.Distribution["good"]++
		case c > 0.5:
			m.Distribution["fair"]++
		default:
			m.Distribution["poor"]++
		}
	}
	m.Average = sum / float64(len(assignments))
	return m
}

func scenarios(weights map[string]float64) []models.Scenario {
	with := func(overrides map[string]float64) map[string]float64 {
		w := maps.Clone(weights)
		maps.Copy(w, overrides)
		return w
	}

	return []models.Scenario{
		{
			Name:           "Balance Focused",
			Description:    "Prioritizes even workload distribution across team",
			Weights:        with(map[string]float64{models.GoalBalance: 0.5, models.GoalEfficiency: 0.3}),
			EstimatedScore: 0.85,
			TradeOffs:      []string{"May sacrifice some efficiency for better balance"},
		},
		{
			Name:           "SLA Focused",
			Description:    "Minimizes SLA breach risk above all else",
			Weights:        with(map[string]float64{models.GoalSLACompliance: 0.5, models.GoalEfficiency: 0.3}),
			EstimatedScore: 0.92,
			TradeOffs:      []string{"May overload experienced technicians"},
		},
		{
			Name:           "Development Focused",
			Description:    "Maximizes learning opportunities and skill development",
			Weights:        with(map[string]float64{models.GoalSkillDevelopment: 0.4, models.GoalWellness: 0.3}),
			EstimatedScore: 0.78,
			TradeOffs:      []string{"May take longer to complete some tickets"},
		},
	}
}
