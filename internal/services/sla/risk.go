package sla

import (
	"context"
	"sort"
	"time"

	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/models"
)

func riskLevelFor(p float64, status models.TicketStatus) models.RiskLevel {
	if status.IsFinal() {
		return models.RiskLow
	}
	switch {
	case p >= 0.9:
		return models.RiskCritical
	case p >= 0.8:
		return models.RiskHigh
	case p >= 0.6:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}

type riskFactor struct {
	id      string
	message string
	score   float64
}

// analyzeRiskFactors returns every factor that applies, strongest first.
func analyzeRiskFactors(ctx context.Context, req models.SLARequest, f Features) []riskFactor {
	var factors []riskFactor
	add := func(id, msgID string, score float64, data map[string]interface{}) {
		factors = append(factors, riskFactor{id: id, message: i18n.T(ctx, msgID, data), score: score})
	}

	if f.TimeRemainingRatio < 0.2 {
		add("time_remaining", "sla_risk_time_remaining", 1-f.TimeRemainingRatio, nil)
	}
	if f.ProgressRatio < 0.3 && f.TimeRemainingRatio < 0.5 {
		add("slow_progress", "sla_risk_slow_progress", 0.8, nil)
	}
	if !f.IsAssigned {
		add("unassigned", "sla_risk_unassigned", 0.9, nil)
	}
	if f.Workload > 0.8 {
		add("high_workload", "sla_risk_high_workload", f.Workload, nil)
	}
	if f.CategoryComplexity > 0.8 {
		add("complexity", "sla_risk_complexity", f.CategoryComplexity, nil)
	}
	if f.PriorityScore >= 3 {
		add("priority", "sla_risk_priority", float64(f.PriorityScore)/4, nil)
	}
	if req.EscalationLevel > 0 {
		add("escalation", "sla_risk_escalation", min(1, float64(req.EscalationLevel)/3),
			map[string]interface{}{"Level": req.EscalationLevel})
	}
	if f.RemainingMinutes > 0 && f.BusinessHoursRemaining < 8 {
		add("business_hours", "sla_risk_business_hours", 0.7, nil)
	}

	sort.SliceStable(factors, func(i, j int) bool { return factors[i].score > factors[j].score })
	return factors
}

func recommendations(ctx context.Context, req models.SLARequest, f Features, p float64) []string {
	var out []string
	add := func(msgID string) {
		out = append(out, i18n.T(ctx, msgID, nil))
	}

	unassigned := req.AssignedTechnicianID == ""
	busy := req.TechnicianWorkload != nil && *req.TechnicianWorkload > 0.9

	if p > 0.8 {
		add("sla_action_escalate")
	}
	if p > 0.7 && unassigned {
		add("sla_action_assign")
	}
	if p > 0.6 && busy {
		add("sla_action_reassign")
	}
	if f.CategoryComplexity > 0.8 {
		add("sla_action_specialist")
	}
	if f.TimeRemainingRatio < 0.2 {
		add("sla_action_focus")
	}
	if p > 0.5 && (req.Priority == models.PriorityHigh || req.Priority == models.PriorityCritical) {
		add("sla_action_notify_customer")
	}
	if len(out) == 0 {
		add("sla_action_monitor")
	}
	return out
}

// estimateCompletion returns the remaining effort in minutes and when the
// ticket should be done.
func estimateCompletion(f Features, now time.Time) (int, time.Time) {
	remaining := f.EstimatedTotalMinutes * (1 - f.ProgressRatio)
	remaining *= 1 + (f.Workload - 0.5)
	remaining *= 1 - ((f.SkillMatch*10 - 5) / 10 * 0.3)
	remaining = max(0, remaining)

	minutes := int(remaining)
	return minutes, now.Add(time.Duration(minutes) * time.Minute)
}
