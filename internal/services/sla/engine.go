package sla

import (
	"math"

	"github.com/thomas-vilte/mateticket/internal/models"
)

// Engine turns a ticket and its features into a breach probability.
type Engine interface {
	Predict(req models.SLARequest, f Features) (probability, confidence float64)
	Version() string
}

var priorityMultiplier = map[models.Priority]float64{
	models.PriorityLow:      0.8,
	models.PriorityMedium:   1.0,
	models.PriorityHigh:     1.2,
	models.PriorityCritical: 1.4,
}

var statusMultiplier = map[models.TicketStatus]float64{
	models.StatusOpen:            1.3,
	models.StatusInProgress:      1.0,
	models.StatusPendingCustomer: 0.7,
	models.StatusResolved:        0,
	models.StatusClosed:          0,
}

// RulesEngine scores time pressure with fixed multipliers.
type RulesEngine struct{}

func (RulesEngine) Version() string { return "rules-1.0" }

func (RulesEngine) Predict(req models.SLARequest, f Features) (float64, float64) {
	p := min(1, math.Pow(max(0, f.TimeProgress), 1.5))

	if m, ok := priorityMultiplier[req.Priority]; ok {
		p *= m
	}
	if m, ok := statusMultiplier[req.Status]; ok {
		p *= m
	}
	if req.EscalationLevel > 0 {
		p *= 1 + float64(req.EscalationLevel)*0.2
	}
	if req.TechnicianWorkload != nil && *req.TechnicianWorkload > 0.8 {
		p *= 1.3
	}

	return clamp01(p), 0.6
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return max(0, min(1, v))
}
