package triage

import (
	"context"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/thomas-vilte/mateticket/internal/cache"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	cachePrefix = "triage"
	cacheTTL    = time.Hour

	maxTitleLength       = 200
	maxDescriptionLength = 5000

	ageEscalationThreshold = 24 * time.Hour
)

// classifier is the AI dependency of the Service.
type classifier interface {
	ClassifyTicket(ctx context.Context, req models.TriageRequest) (*models.Classification, error)
}

type Service struct {
	ai    classifier
	cache cache.Store
	now   func() time.Time
}

type Option func(*Service)

// WithClassifier enables the AI path. Without it every ticket goes through
// the keyword classifier.
func WithClassifier(c classifier) Option {
	return func(s *Service) {
		s.ai = c
	}
}

func WithCache(store cache.Store) Option {
	return func(s *Service) {
		s.cache = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryStore()
	}
	return s
}

// Triage classifies a ticket and derives its priority.
func (s *Service) Triage(ctx context.Context, req models.TriageRequest) (*models.TriageResult, error) {
	log := logger.FromContext(ctx)

	if err := validate(&req); err != nil {
		return nil, err
	}

	key := cache.Key(cachePrefix, req.Title, req.Description, string(req.CustomerTier),
		strconv.FormatBool(s.aged(req)))
	var cached models.TriageResult
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		log.Info("returning cached triage result",
			"ticket_id", req.TicketID)
		cached.TicketID = req.TicketID
		cached.Cached = true
		return &cached, nil
	} else if err != nil {
		log.Warn("triage cache read failed",
			"ticket_id", req.TicketID,
			"error", err)
	}

	text := strings.ToLower(req.Title + " " + req.Description)

	var result *models.TriageResult
	if s.ai != nil {
		cls, err := s.ai.ClassifyTicket(ctx, req)
		if err != nil {
			log.Warn("AI classification failed, using keyword classifier",
				"ticket_id", req.TicketID,
				"error", err)
		} else {
			result = s.fromClassification(cls, req, text)
		}
	}
	if result == nil {
		result = classifyByKeywords(req, text)
	}

	enhance(result, req.CustomerTier)
	result.TicketID = req.TicketID
	result.Priority = PriorityFor(result.Urgency, result.Impact)

	if err := s.cache.Set(ctx, key, result, cacheTTL); err != nil {
		log.Warn("failed to cache triage result",
			"ticket_id", req.TicketID,
			"error", err)
	}

	log.Info("ticket triaged",
		"ticket_id", req.TicketID,
		"category", result.Category,
		"priority", result.Priority,
		"source", result.Source)

	return result, nil
}

// HealthCheck triages a fixed ticket without touching the cache.
func (s *Service) HealthCheck(ctx context.Context) error {
	probe := NewService(WithClassifier(s.ai), WithClock(s.now))
	_, err := probe.Triage(ctx, models.TriageRequest{
		TicketID:    "health-check",
		Title:       "Test ticket",
		Description: "This is a test ticket for health check",
	})
	return err
}

// aged reports whether the ticket has been open longer than the age
// escalation threshold.
func (s *Service) aged(req models.TriageRequest) bool {
	return req.CreatedAt != nil && s.now().Sub(*req.CreatedAt) > ageEscalationThreshold
}

func validate(req *models.TriageRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)

	switch {
	case req.Title == "":
		return domainErrors.NewValidationError("title", "title is required")
	case utf8.RuneCountInString(req.Title) > maxTitleLength:
		return domainErrors.NewValidationError("title", "title must be at most 200 characters")
	case req.Description == "":
		return domainErrors.NewValidationError("description", "description is required")
	case utf8.RuneCountInString(req.Description) > maxDescriptionLength:
		return domainErrors.NewValidationError("description", "description must be at most 5000 characters")
	}

	if req.CustomerTier != "" && !req.CustomerTier.Valid() {
		return domainErrors.NewValidationError("customer_tier", "unknown customer tier")
	}
	return nil
}

func (s *Service) fromClassification(cls *models.Classification, req models.TriageRequest, text string) *models.TriageResult {
	confidence := 0.5
	if cls.Confidence != nil {
		confidence = *cls.Confidence
	}

	category, ok := models.ParseCategory(cls.Category)
	if !ok {
		category = models.CategoryOther
		confidence *= 0.8
	}
	urgency, ok := models.ParseUrgency(cls.Urgency)
	if !ok {
		urgency = models.UrgencyMedium
	}
	impact, ok := models.ParseImpact(cls.Impact)
	if !ok {
		impact = models.ImpactMedium
	}

	minutes := defaultResolutionMinutes
	if cls.EstimatedResolutionTime != nil && *cls.EstimatedResolutionTime > 0 {
		minutes = *cls.EstimatedResolutionTime
	}

	reasoning := strings.TrimSpace(cls.Reasoning)
	if reasoning == "" {
		reasoning = "AI classification"
	}

	skills := cls.SuggestedTechnicianSkills
	if len(skills) == 0 {
		skills = SkillsFor(category)
	}

	boost, matched := keywordBoost(text, category)
	confidence = min(0.95, clamp01(confidence)+boost)

	if s.aged(req) && urgency == models.UrgencyLow {
		urgency = models.UrgencyMedium
		reasoning += " (escalated due to age)"
	}

	return &models.TriageResult{
		Category:                  category,
		Urgency:                   urgency,
		Impact:                    impact,
		Confidence:                confidence,
		Reasoning:                 reasoning,
		SuggestedTechnicianSkills: skills,
		EstimatedResolutionTime:   minutes,
		KeywordsMatched:           matched,
		Source:                    models.SourceAI,
	}
}

func classifyByKeywords(req models.TriageRequest, text string) *models.TriageResult {
	category := models.CategoryOther
	confidence := 0.3
	var matched []string

	bestScore := 0.0
	for _, c := range models.Categories {
		keywords := categoryKeywords[c]
		if len(keywords) == 0 {
			continue
		}
		hits := matchKeywords(text, c)
		score := float64(len(hits)) / float64(len(keywords))
		if score > bestScore {
			bestScore, category, matched = score, c, hits
		}
	}
	if bestScore > 0 {
		confidence = min(0.8, bestScore*2)
	}

	urgency := models.UrgencyMedium
	impact := models.ImpactMedium
	if containsAny(text, urgentKeywords) || category == models.CategorySecurity {
		urgency = models.UrgencyUrgent
		impact = models.ImpactHigh
	}
	if req.CustomerTier.IsPremium() && urgency == models.UrgencyLow {
		urgency = models.UrgencyMedium
	}

	return &models.TriageResult{
		Category:                  category,
		Urgency:                   urgency,
		Impact:                    impact,
		Confidence:                confidence,
		Reasoning:                 "Rule-based classification using keyword analysis",
		SuggestedTechnicianSkills: SkillsFor(category),
		EstimatedResolutionTime:   estimateMinutes(category, urgency),
		KeywordsMatched:           matched,
		Source:                    models.SourceKeyword,
	}
}

// enhance applies the tier and category rules shared by both paths.
func enhance(r *models.TriageResult, tier models.CustomerTier) {
	if tier.IsPremium() {
		if r.Urgency == models.UrgencyMedium {
			r.Urgency = models.UrgencyHigh
		}
		if r.Impact == models.ImpactLow {
			r.Impact = models.ImpactMedium
		}
	}

	if r.Category == models.CategorySecurity {
		r.Urgency = models.UrgencyUrgent
		if r.Impact == models.ImpactLow {
			r.Impact = models.ImpactMedium
		}
	}
}

func clamp01(v float64) float64 {
	return max(0, min(1, v))
}
