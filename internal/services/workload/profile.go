package workload

import (
	"slices"

	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	defaultMaxCapacity       = 40.0
	defaultSkillLevel        = 5.0
	defaultExperience        = 5.0
	defaultPerformanceRating = 3.5
	defaultAvailabilityHours = 8.0
	defaultBurnoutRisk       = 0.3
	defaultCollaboration     = 0.7
	defaultComplexity        = 5.0
	defaultEstimatedMinutes  = 120.0
	defaultSLAHours          = 24.0
)

// technician is a Technician with every default applied.
type technician struct {
	id                string
	skills            []string
	skillLevels       map[string]float64
	currentWorkload   float64
	maxCapacity       float64
	experience        float64
	performance       float64
	availabilityHours float64
	preferred         []models.Category
	burnoutRisk       float64
	learningGoals     []string
	collaboration     float64
}

type ticket struct {
	id                  string
	category            models.Category
	priority            models.Priority
	requiredSkills      []string
	complexity          float64
	estimatedMinutes    float64
	slaHours            float64
	learningOpportunity bool
}

func orDefault(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func newTechnician(t models.Technician) technician {
	capacity := t.MaxCapacity
	if capacity <= 0 {
		capacity = defaultMaxCapacity
	}

	levels := make(map[string]float64, len(t.Skills))
	for _, skill := range t.Skills {
		level, ok := t.SkillLevels[skill]
		if !ok {
			level = defaultSkillLevel
		}
		levels[skill] = level
	}

	return technician{
		id:                t.TechnicianID,
		skills:            t.Skills,
		skillLevels:       levels,
		currentWorkload:   t.CurrentWorkload,
		maxCapacity:       capacity,
		experience:        orDefault(t.ExperienceLevel, defaultExperience),
		performance:       orDefault(t.PerformanceRating, defaultPerformanceRating),
		availabilityHours: orDefault(t.AvailabilityHours, defaultAvailabilityHours),
		preferred:         t.PreferredCategories,
		burnoutRisk:       orDefault(t.BurnoutRisk, defaultBurnoutRisk),
		learningGoals:     t.LearningGoals,
		collaboration:     orDefault(t.CollaborationScore, defaultCollaboration),
	}
}

func newTicket(p models.PendingTicket) ticket {
	t := ticket{
		id:                  p.TicketID,
		category:            p.Category,
		priority:            p.Priority,
		requiredSkills:      p.RequiredSkills,
		complexity:          orDefault(p.ComplexityScore, defaultComplexity),
		estimatedMinutes:    p.EstimatedMinutes,
		slaHours:            p.SLAHours,
		learningOpportunity: p.LearningOpportunity,
	}
	if t.category == "" {
		t.category = models.CategoryOther
	}
	if t.priority == "" {
		t.priority = models.PriorityMedium
	}
	if t.estimatedMinutes <= 0 {
		t.estimatedMinutes = defaultEstimatedMinutes
	}
	if t.slaHours == 0 {
		t.slaHours = defaultSLAHours
	}
	return t
}

func (t technician) prefers(c models.Category) bool {
	return slices.Contains(t.preferred, c)
}

func (t technician) has(skill string) bool {
	return slices.Contains(t.skills, skill)
}

// byUrgency orders tickets critical first and, within a priority, by the
// closest SLA deadline.
func byUrgency(a, b ticket) int {
	if pa, pb := a.priority.Score(), b.priority.Score(); pa != pb {
		return pb - pa
	}
	switch {
	case a.slaHours < b.slaHours:
		return -1
	case a.slaHours > b.slaHours:
		return 1
	}
	return 0
}

func intersect(a, b []string) []string {
	var out []string
	for _, v := range a {
		if slices.Contains(b, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func unique(a []string) []string {
	var out []string
	for _, v := range a {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func difference(a, b []string) []string {
	var out []string
	for _, v := range a {
		if !slices.Contains(b, v) && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// variance is the population variance of values.
func variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		sum += (v - mean) * (v - mean)
	}
	return sum / float64(len(values))
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
