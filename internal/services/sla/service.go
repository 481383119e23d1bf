package sla

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thomas-vilte/mateticket/internal/cache"
	"github.com/thomas-vilte/mateticket/internal/config"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	cachePrefix = "sla_prediction"
	cacheTTL    = 300 * time.Second

	engineWeight = 0.6
	aiWeight     = 0.4

	fallbackProbability = 0.7
	fallbackConfidence  = 0.3

	maxRiskFactors = 3
)

// assessor is the AI dependency of the Service.
type assessor interface {
	PredictSLA(ctx context.Context, req models.SLARequest) (*models.SLAAssessment, error)
}

type Service struct {
	engine Engine
	ai     assessor
	cache  cache.Store
	now    func() time.Time
}

type Option func(*Service)

func WithEngine(e Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithAssessor blends an AI prediction into every engine prediction.
func WithAssessor(a assessor) Option {
	return func(s *Service) {
		s.ai = a
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
	if s.engine == nil {
		s.engine = RulesEngine{}
	}
	if s.cache == nil {
		s.cache = cache.NewMemoryStore()
	}
	return s
}

// EngineFor returns the engine named by the sla_model setting.
func EngineFor(cfg *config.Config) Engine {
	if cfg.SLAModel == config.SLAModelGBR {
		return NewGBREngine(DefaultGBROptions())
	}
	return RulesEngine{}
}

var errInvalidWindow = errors.New("sla deadline is before ticket creation")

// Predict estimates how likely the ticket is to miss its SLA deadline.
func (s *Service) Predict(ctx context.Context, req models.SLARequest) (*models.SLAPrediction, error) {
	log := logger.FromContext(ctx)

	if err := validate(&req); err != nil {
		return nil, err
	}

	deadline := deadlineOf(req)
	key := fmt.Sprintf("%s:%s:%d", cachePrefix, req.TicketID, deadline.Unix())

	var cached models.SLAPrediction
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		log.Info("returning cached SLA prediction",
			"ticket_id", req.TicketID)
		cached.Cached = true
		return &cached, nil
	} else if err != nil {
		log.Warn("SLA cache read failed",
			"ticket_id", req.TicketID,
			"error", err)
	}

	now := s.now()
	if req.CurrentTime != nil {
		now = *req.CurrentTime
	}

	prediction, err := s.predict(ctx, req, now)
	if err != nil {
		log.Error("SLA prediction failed, returning conservative estimate",
			"ticket_id", req.TicketID,
			"error", err)
		return fallback(ctx, req.TicketID, s.engine.Version()), nil
	}

	if err := s.cache.Set(ctx, key, prediction, cacheTTL); err != nil {
		log.Warn("failed to cache SLA prediction",
			"ticket_id", req.TicketID,
			"error", err)
	}

	log.Info("SLA predicted",
		"ticket_id", req.TicketID,
		"breach_probability", prediction.BreachProbability,
		"risk_level", prediction.RiskLevel,
		"model", prediction.ModelVersion)

	return prediction, nil
}

func (s *Service) predict(ctx context.Context, req models.SLARequest, now time.Time) (*models.SLAPrediction, error) {
	if deadlineOf(req).Before(req.CreatedAt) {
		return nil, errInvalidWindow
	}

	f := extractFeatures(req, now)
	p, confidence := s.engine.Predict(req, f)
	version := s.engine.Version()

	if s.ai != nil && !req.Status.IsFinal() {
		assessment, err := s.ai.PredictSLA(ctx, req)
		if err != nil {
			logger.FromContext(ctx).Warn("AI SLA assessment failed, using engine only",
				"ticket_id", req.TicketID,
				"error", err)
		} else if assessment.BreachProbability != nil {
			p = engineWeight*p + aiWeight*clamp01(*assessment.BreachProbability)
			if assessment.Confidence != nil {
				confidence = max(confidence, clamp01(*assessment.Confidence))
			}
			version += "+gemini"
		}
	}
	p = clamp01(p)

	minutes, completion := estimateCompletion(f, now)

	factors := analyzeRiskFactors(ctx, req, f)
	scores := make(map[string]float64, len(factors))
	messages := make([]string, 0, maxRiskFactors)
	for i, rf := range factors {
		scores[rf.id] = rf.score
		if i < maxRiskFactors {
			messages = append(messages, rf.message)
		}
	}

	busy := req.TechnicianWorkload != nil && *req.TechnicianWorkload > 0.9

	return &models.SLAPrediction{
		TicketID:                   req.TicketID,
		BreachProbability:          p,
		RiskLevel:                  riskLevelFor(p, req.Status),
		Confidence:                 confidence,
		EstimatedCompletionTime:    &completion,
		TimeRemainingMinutes:       int(max(0, f.RemainingMinutes)),
		EstimatedResolutionMinutes: minutes,
		RiskFactors:                messages,
		RiskFactorScores:           scores,
		Recommendations:            recommendations(ctx, req, f, p),
		EscalationRecommended:      p > 0.8,
		ReassignmentRecommended:    p > 0.85 && busy,
		ModelVersion:               version,
	}, nil
}

func fallback(ctx context.Context, ticketID, version string) *models.SLAPrediction {
	return &models.SLAPrediction{
		TicketID:          ticketID,
		BreachProbability: fallbackProbability,
		RiskLevel:         models.RiskHigh,
		Confidence:        fallbackConfidence,
		RiskFactors:       []string{i18n.T(ctx, "sla_risk_prediction_error", nil)},
		RiskFactorScores:  map[string]float64{"prediction_error": 1},
		Recommendations:   []string{i18n.T(ctx, "sla_action_manual_review", nil)},
		ModelVersion:      version,
	}
}

// HealthCheck runs a prediction for a synthetic ticket without the cache or AI.
func (s *Service) HealthCheck(ctx context.Context) error {
	probe := NewService(WithEngine(s.engine), WithClock(s.now))
	now := s.now()
	_, err := probe.Predict(ctx, models.SLARequest{
		TicketID:  "health-check",
		Priority:  models.PriorityMedium,
		Status:    models.StatusOpen,
		CreatedAt: now.Add(-time.Hour),
	})
	return err
}

func validate(req *models.SLARequest) error {
	req.TicketID = strings.TrimSpace(req.TicketID)

	switch {
	case req.TicketID == "":
		return domainErrors.NewValidationError("ticket_id", "ticket_id is required")
	case req.CreatedAt.IsZero():
		return domainErrors.NewValidationError("created_at", "created_at is required")
	case !req.Priority.Valid():
		return domainErrors.NewValidationError("priority", "unknown priority")
	case !req.Status.Valid():
		return domainErrors.NewValidationError("status", "unknown status")
	case req.Category != "" && !req.Category.Valid():
		return domainErrors.NewValidationError("category", "unknown category")
	case req.CustomerTier != "" && !req.CustomerTier.Valid():
		return domainErrors.NewValidationError("customer_tier", "unknown customer tier")
	case req.TimeSpentMinutes < 0:
		return domainErrors.NewValidationError("time_spent", "time spent cannot be negative")
	case req.EscalationLevel < 0:
		return domainErrors.NewValidationError("escalation_level", "escalation level cannot be negative")
	}

	if w := req.TechnicianWorkload; w != nil && (*w < 0 || *w > 1) {
		return domainErrors.NewValidationError("technician_current_workload", "workload must be between 0 and 1")
	}
	if sk := req.TechnicianSkillLevel; sk != nil && (*sk < 0 || *sk > 10) {
		return domainErrors.NewValidationError("technician_skill_level", "skill level must be between 0 and 10")
	}
	return nil
}
