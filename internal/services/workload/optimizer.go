package workload

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	overutilizedPercent  = 90.0
	underutilizedPercent = 60.0
)

// Optimizer assigns pending tickets to technicians. It keeps no state
// between calls.
type Optimizer struct{}

func NewOptimizer() *Optimizer {
	return &Optimizer{}
}

// Optimize assigns every ticket to the technician with the best mix of skill
// match and spare capacity, charging each assignment against that
// technician's running workload.
func (o *Optimizer) Optimize(ctx context.Context, req models.WorkloadRequest) (*models.WorkloadResult, error) {
	log := logger.FromContext(ctx)

	if err := validateRequest(req.Technicians, req.PendingTickets); err != nil {
		return nil, err
	}

	techs := make([]technician, 0, len(req.Technicians))
	workload := make(map[string]float64, len(req.Technicians))
	for _, t := range req.Technicians {
		tech := newTechnician(t)
		techs = append(techs, tech)
		workload[tech.id] = tech.currentWorkload
	}

	tickets := make([]ticket, 0, len(req.PendingTickets))
	for _, p := range req.PendingTickets {
		tickets = append(tickets, newTicket(p))
	}
	slices.SortStableFunc(tickets, byUrgency)

	result := &models.WorkloadResult{
		Recommendations: []models.Assignment{},
		Analysis: models.WorkloadAnalysis{
			Overutilized:            []string{},
			Underutilized:           []string{},
			CapacityRecommendations: []models.CapacityRecommendation{},
		},
	}

	for _, tk := range tickets {
		var (
			best      *technician
			bestScore = math.Inf(-1)
			bestMatch float64
		)
		for i := range techs {
			match := basicSkillMatch(techs[i].skills, tk.requiredSkills)
			spare := 1 - workload[techs[i].id]/techs[i].maxCapacity
			score := match*0.7 + spare*0.3
			if score > bestScore {
				best, bestScore, bestMatch = &techs[i], score, match
			}
		}

		workload[best.id] += tk.estimatedMinutes / 60
		result.Recommendations = append(result.Recommendations, models.Assignment{
			TicketID:                tk.id,
			RecommendedTechnicianID: best.id,
			Confidence:              clamp01(min(0.95, bestScore)),
			SkillMatch:              bestMatch,
			Reasoning:               fmt.Sprintf("Best skill match (%d%%) with optimal workload balance", int(bestMatch*100)),
		})
	}

	for _, tech := range techs {
		utilization := workload[tech.id] / tech.maxCapacity * 100
		switch {
		case utilization > overutilizedPercent:
			result.Analysis.Overutilized = append(result.Analysis.Overutilized, tech.id)
			result.Analysis.CapacityRecommendations = append(result.Analysis.CapacityRecommendations, models.CapacityRecommendation{
				TechnicianID:      tech.id,
				RecommendedAction: "reduce_workload",
				Impact:            "high",
			})
		case utilization < underutilizedPercent:
			result.Analysis.Underutilized = append(result.Analysis.Underutilized, tech.id)
			result.Analysis.CapacityRecommendations = append(result.Analysis.CapacityRecommendations, models.CapacityRecommendation{
				TechnicianID:      tech.id,
				RecommendedAction: "assign_more_tickets",
				Impact:            "medium",
			})
		}
	}

	result.Metadata = models.WorkloadMetadata{
		TechniciansAnalyzed: len(techs),
		TicketsProcessed:    len(tickets),
		AssignmentsMade:     len(result.Recommendations),
	}

	log.Info("workload optimized",
		"technicians", len(techs),
		"tickets", len(tickets),
		"overutilized", len(result.Analysis.Overutilized))

	return result, nil
}

func validateRequest(techs []models.Technician, tickets []models.PendingTicket) error {
	if len(techs) == 0 {
		return domainErrors.ErrEmptyTechnicians
	}
	if len(tickets) == 0 {
		return domainErrors.ErrEmptyTickets
	}

	seen := make(map[string]struct{}, len(techs))
	for i, t := range techs {
		id := strings.TrimSpace(t.TechnicianID)
		if id == "" {
			return domainErrors.NewValidationError(fmt.Sprintf("technicians[%d].technician_id", i), "technician_id is required")
		}
		if _, dup := seen[id]; dup {
			return domainErrors.NewValidationError(fmt.Sprintf("technicians[%d].technician_id", i), "duplicate technician_id "+id)
		}
		seen[id] = struct{}{}
		if t.CurrentWorkload < 0 || t.MaxCapacity < 0 {
			return domainErrors.NewValidationError(fmt.Sprintf("technicians[%d]", i), "workload and capacity cannot be negative")
		}
	}
	for i, p := range tickets {
		if strings.TrimSpace(p.TicketID) == "" {
			return domainErrors.NewValidationError(fmt.Sprintf("pending_tickets[%d].ticket_id", i), "ticket_id is required")
		}
		if p.Priority != "" && !p.Priority.Valid() {
			return domainErrors.NewValidationError(fmt.Sprintf("pending_tickets[%d].priority", i), "unknown priority")
		}
		if p.EstimatedMinutes < 0 {
			return domainErrors.NewValidationError(fmt.Sprintf("pending_tickets[%d].estimated_time", i), "estimated time cannot be negative")
		}
	}
	return nil
}

// basicSkillMatch is the share of required skills the technician has, or
// 0.5 when nothing is required.
func basicSkillMatch(skills, required []string) float64 {
	if len(required) == 0 {
		return 0.5
	}
	return float64(len(intersect(required, skills))) / float64(len(unique(required)))
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
