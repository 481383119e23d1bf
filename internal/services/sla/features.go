package sla

import (
	"time"

	"github.com/thomas-vilte/mateticket/internal/models"
)

var categoryComplexity = map[models.Category]float64{
	models.CategoryHardware: 0.8,
	models.CategorySoftware: 0.6,
	models.CategoryNetwork:  0.9,
	models.CategorySecurity: 0.95,
	models.CategoryEmail:    0.4,
	models.CategoryPrinter:  0.5,
	models.CategoryPhone:    0.3,
	models.CategoryAccess:   0.7,
	models.CategoryBackup:   0.6,
	models.CategoryOther:    0.5,
}

var defaultResolutionMinutes = map[models.Priority]float64{
	models.PriorityCritical: 60,
	models.PriorityHigh:     240,
	models.PriorityMedium:   480,
	models.PriorityLow:      1440,
}

const (
	defaultSLAWindow    = 24 * time.Hour
	defaultSkillLevel   = 5.0
	defaultWorkload     = 0.5
	businessHoursPerDay = 40.0 / 168.0
)

// Features is what the engines look at.
type Features struct {
	TimeRemainingRatio     float64
	TimeProgress           float64
	ProgressRatio          float64
	BusinessHoursRemaining float64
	PriorityScore          int
	TierScore              int
	CategoryComplexity     float64
	SkillMatch             float64
	Workload               float64
	IsAssigned             bool
	IsBusinessHours        bool
	EscalationLevel        int

	EstimatedTotalMinutes float64
	RemainingMinutes      float64
}

// Vector is the numeric form used by the boosted model.
func (f Features) Vector() []float64 {
	return []float64{
		f.TimeRemainingRatio,
		f.ProgressRatio,
		f.BusinessHoursRemaining,
		float64(f.PriorityScore),
		float64(f.TierScore),
		f.CategoryComplexity,
		f.SkillMatch,
		f.Workload,
		boolToFloat(f.IsAssigned),
		boolToFloat(f.IsBusinessHours),
		float64(f.EscalationLevel),
	}
}

func complexityOf(c models.Category) float64 {
	if v, ok := categoryComplexity[c]; ok {
		return v
	}
	return 0.5
}

// estimatedResolution is the expected total effort of a ticket in minutes.
func estimatedResolution(req models.SLARequest) float64 {
	if req.EstimatedResolutionMinutes != nil && *req.EstimatedResolutionMinutes > 0 {
		return *req.EstimatedResolutionMinutes
	}
	base, ok := defaultResolutionMinutes[req.Priority]
	if !ok {
		base = defaultResolutionMinutes[models.PriorityMedium]
	}
	if req.Category != "" {
		base *= 0.5 + complexityOf(req.Category)
	}
	return base
}

func deadlineOf(req models.SLARequest) time.Time {
	if req.SLADeadline != nil {
		return *req.SLADeadline
	}
	return req.CreatedAt.Add(defaultSLAWindow)
}

func extractFeatures(req models.SLARequest, now time.Time) Features {
	deadline := deadlineOf(req)

	total := deadline.Sub(req.CreatedAt).Seconds()
	elapsed := now.Sub(req.CreatedAt).Seconds()
	remaining := deadline.Sub(now).Seconds()

	f := Features{
		PriorityScore:      req.Priority.Score(),
		TierScore:          req.CustomerTier.Score(),
		CategoryComplexity: complexityOf(req.Category),
		SkillMatch:         defaultSkillLevel / 10,
		Workload:           defaultWorkload,
		IsAssigned:         req.AssignedTechnicianID != "",
		IsBusinessHours:    isBusinessHours(now),
		EscalationLevel:    req.EscalationLevel,
		RemainingMinutes:   remaining / 60,
		TimeProgress:       1,
	}

	if total > 0 {
		f.TimeRemainingRatio = max(0, remaining/total)
		f.TimeProgress = elapsed / total
	}

	f.EstimatedTotalMinutes = estimatedResolution(req)
	if f.EstimatedTotalMinutes > 0 {
		f.ProgressRatio = min(1, req.TimeSpentMinutes/f.EstimatedTotalMinutes)
	}

	f.BusinessHoursRemaining = (remaining / 3600) * businessHoursPerDay

	if req.TechnicianSkillLevel != nil {
		f.SkillMatch = *req.TechnicianSkillLevel / 10
	}
	if req.TechnicianWorkload != nil {
		f.Workload = *req.TechnicianWorkload
	}

	return f
}

// isBusinessHours is Monday to Friday, 09:00-17:00 UTC.
func isBusinessHours(t time.Time) bool {
	t = t.UTC()
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday && t.Hour() >= 9 && t.Hour() < 17
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
