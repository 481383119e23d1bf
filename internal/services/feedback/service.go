package feedback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/thomas-vilte/mateticket/internal/cache"
	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
)

const (
	feedbackTTL = 30 * 24 * time.Hour
	reportTTL   = time.Hour

	maxListed        = 1000
	maxCommentLength = 2000

	defaultDays = 30
	maxDays     = 365

	minTrendSamples = 10
	trendThreshold  = 0.2

	lowRating             = 3.5
	lowConfidenceAccuracy = 0.7
)

// Archive keeps feedback beyond the cache TTL.
type Archive interface {
	ArchiveFeedback(ctx context.Context, fb models.Feedback) error
}

type Service struct {
	store   cache.Store
	archive Archive
	now     func() time.Time
	newID   func() string

	// mu serializes the read-modify-write of lists and running metrics.
	mu sync.Mutex
}

type Option func(*Service)

func WithStore(store cache.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

func WithArchive(a Archive) Option {
	return func(s *Service) {
		s.archive = a
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = cache.NewMemoryStore()
	}
	return s
}

func itemKey(id string) string { return "feedback:" + id }

func listKey(t models.FeedbackType) string { return "feedback_list:" + string(t) }

func metricsKey(t models.FeedbackType) string { return "model_metrics:" + string(t) }

func reportKey(days int) string { return fmt.Sprintf("ai_metrics:%ddays", days) }

// confidenceAccuracy is 1 minus the distance between the predicted
// confidence and the rating scaled to [0,1].
func confidenceAccuracy(confidence float64, rating int) float64 {
	return 1 - math.Abs(confidence-float64(rating)/5)
}

// Submit stores a feedback item and folds it into the running metrics of
// its type.
func (s *Service) Submit(ctx context.Context, fb models.Feedback) (*models.Feedback, error) {
	log := logger.FromContext(ctx)

	if err := validate(fb); err != nil {
		return nil, err
	}

	fb.FeedbackID = s.newID()
	fb.CreatedAt = s.now().UTC()
	fb.Comment = strings.TrimSpace(fb.Comment)

	if err := s.store.Set(ctx, itemKey(fb.FeedbackID), fb, feedbackTTL); err != nil {
		return nil, domainErrors.ErrCacheUnavailable.WithError(err)
	}

	s.mu.Lock()
	err := s.appendToList(ctx, fb)
	if err == nil {
		err = s.updateMetrics(ctx, fb)
	}
	s.mu.Unlock()
	if err != nil {
		return nil, domainErrors.ErrCacheUnavailable.WithError(err)
	}

	if s.archive != nil {
		if err := s.archive.ArchiveFeedback(ctx, fb); err != nil {
			log.Warn("feedback archive failed",
				"feedback_id", fb.FeedbackID,
				"error", err)
		}
	}

	log.Info("feedback collected",
		"feedback_id", fb.FeedbackID,
		"type", fb.Type,
		"ticket_id", fb.TicketID,
		"rating", fb.Rating)

	return &fb, nil
}

func (s *Service) appendToList(ctx context.Context, fb models.Feedback) error {
	var ids []string
	if _, err := s.store.Get(ctx, listKey(fb.Type), &ids); err != nil {
		return err
	}
	ids = append(ids, fb.FeedbackID)
	if len(ids) > maxListed {
		ids = ids[len(ids)-maxListed:]
	}
	return s.store.Set(ctx, listKey(fb.Type), ids, feedbackTTL)
}

func (s *Service) updateMetrics(ctx context.Context, fb models.Feedback) error {
	var m models.ModelMetrics
	if _, err := s.store.Get(ctx, metricsKey(fb.Type), &m); err != nil {
		return err
	}
	if m.RatingDistribution == nil {
		m.RatingDistribution = emptyDistribution()
	}

	m.AverageRating = (m.AverageRating*float64(m.TotalFeedback) + float64(fb.Rating)) / float64(m.TotalFeedback+1)
	m.TotalFeedback++
	m.RatingDistribution[strconv.Itoa(fb.Rating)]++
	if fb.PredictionConfidence != nil {
		acc := confidenceAccuracy(*fb.PredictionConfidence, fb.Rating)
		m.ConfidenceAccuracy = (m.ConfidenceAccuracy*float64(m.ConfidenceSamples) + acc) / float64(m.ConfidenceSamples+1)
		m.ConfidenceSamples++
	}
	m.LastUpdated = fb.CreatedAt

	return s.store.Set(ctx, metricsKey(fb.Type), m, feedbackTTL)
}

// Get returns a single feedback item.
func (s *Service) Get(ctx context.Context, id string) (*models.Feedback, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domainErrors.NewValidationError("feedback_id", "feedback_id is required")
	}

	var fb models.Feedback
	found, err := s.store.Get(ctx, itemKey(id), &fb)
	if err != nil {
		return nil, domainErrors.ErrCacheUnavailable.WithError(err)
	}
	if !found {
		return nil, domainErrors.ErrFeedbackNotFound.WithContext("feedback_id", id)
	}
	return &fb, nil
}

// Metrics returns the running aggregate of one feedback type since it was
// first collected.
func (s *Service) Metrics(ctx context.Context, t models.FeedbackType) (*models.ModelMetrics, error) {
	if !t.Valid() {
		return nil, domainErrors.NewValidationError("feedback_type", fmt.Sprintf("unknown feedback type %q", t))
	}

	m := models.ModelMetrics{RatingDistribution: emptyDistribution()}
	if _, err := s.store.Get(ctx, metricsKey(t), &m); err != nil {
		return nil, domainErrors.ErrCacheUnavailable.WithError(err)
	}
	return &m, nil
}

// PerformanceMetrics reports ratings, trends and confidence calibration over
// the last days days. Zero days means the default window.
func (s *Service) PerformanceMetrics(ctx context.Context, days int) (*models.PerformanceReport, error) {
	log := logger.FromContext(ctx)

	if days == 0 {
		days = defaultDays
	}
	if days < 1 || days > maxDays {
		return nil, domainErrors.NewValidationError("days", fmt.Sprintf("days must be between 1 and %d", maxDays))
	}

	var cached models.PerformanceReport
	if found, err := s.store.Get(ctx, reportKey(days), &cached); err != nil {
		log.Warn("performance report cache lookup failed", "error", err)
	} else if found {
		return &cached, nil
	}

	now := s.now().UTC()
	cutoff := now.Add(-time.Duration(days) * 24 * time.Hour)

	report := &models.PerformanceReport{
		PeriodDays:      days,
		ByType:          make(map[models.FeedbackType]models.TypePerformance, len(models.FeedbackTypes)),
		Recommendations: []string{},
		GeneratedAt:     now,
	}

	var (
		ratingSum     int
		accuracySum   float64
		accuracyCount int
	)
	for _, t := range models.FeedbackTypes {
		items, err := s.recent(ctx, t, cutoff)
		if err != nil {
			return nil, domainErrors.ErrCacheUnavailable.WithError(err)
		}

		perf := typePerformance(items)
		report.ByType[t] = perf
		report.TotalFeedback += perf.TotalFeedback

		for _, fb := range items {
			ratingSum += fb.Rating
			if fb.PredictionConfidence != nil {
				accuracySum += confidenceAccuracy(*fb.PredictionConfidence, fb.Rating)
				accuracyCount++
			}
		}

		if perf.TotalFeedback > 0 && perf.AverageRating < lowRating {
			report.Recommendations = append(report.Recommendations, improvementFor(t))
		}
	}

	if report.TotalFeedback > 0 {
		report.AverageRating = float64(ratingSum) / float64(report.TotalFeedback)
	}
	if accuracyCount > 0 {
		report.ConfidenceAccuracy = accuracySum / float64(accuracyCount)
		if report.ConfidenceAccuracy < lowConfidenceAccuracy {
			report.Recommendations = append(report.Recommendations,
				"Improve confidence score calibration: AI confidence does not align with observed ratings")
		}
	}

	if err := s.store.Set(ctx, reportKey(days), report, reportTTL); err != nil {
		log.Warn("performance report cache write failed", "error", err)
	}

	log.Info("performance metrics calculated",
		"days", days,
		"total", report.TotalFeedback,
		"recommendations", len(report.Recommendations))

	return report, nil
}

// recent loads the listed feedback of a type created at or after cutoff,
// oldest first. Expired items are skipped.
func (s *Service) recent(ctx context.Context, t models.FeedbackType, cutoff time.Time) ([]models.Feedback, error) {
	var ids []string
	if _, err := s.store.Get(ctx, listKey(t), &ids); err != nil {
		return nil, err
	}

	items := make([]models.Feedback, 0, len(ids))
	for _, id := range ids {
		var fb models.Feedback
		found, err := s.store.Get(ctx, itemKey(id), &fb)
		if err != nil {
			return nil, err
		}
		if found && !fb.CreatedAt.Before(cutoff) {
			items = append(items, fb)
		}
	}

	slices.SortStableFunc(items, func(a, b models.Feedback) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return items, nil
}

func typePerformance(items []models.Feedback) models.TypePerformance {
	perf := models.TypePerformance{
		TotalFeedback:      len(items),
		RatingDistribution: emptyDistribution(),
		Trend:              trend(items),
	}
	if len(items) == 0 {
		return perf
	}

	var sum int
	for _, fb := range items {
		sum += fb.Rating
		perf.RatingDistribution[strconv.Itoa(fb.Rating)]++
	}
	perf.AverageRating = float64(sum) / float64(len(items))
	return perf
}

// trend compares the average rating of the older half of items with the
// newer half.
func trend(items []models.Feedback) string {
	if len(items) < minTrendSamples {
		return "insufficient_data"
	}

	mid := len(items) / 2
	change := averageRating(items[mid:]) - averageRating(items[:mid])
	switch {
	case change > trendThreshold:
		return "improving"
	case change < -trendThreshold:
		return "declining"
	default:
		return "stable"
	}
}

func averageRating(items []models.Feedback) float64 {
	var sum int
	for _, fb := range items {
		sum += fb.Rating
	}
	return float64(sum) / float64(len(items))
}

func improvementFor(t models.FeedbackType) string {
	switch t {
	case models.FeedbackTriageAccuracy:
		return "Improve ticket classification: consider more diverse category examples"
	case models.FeedbackSLAPrediction:
		return "Enhance SLA prediction: include more historical data and technician workload factors"
	case models.FeedbackResolutionEffectiveness:
		return "Improve resolution suggestions: expand the knowledge base and similarity matching"
	default:
		return "Review workload optimization weights against technician feedback"
	}
}

func emptyDistribution() map[string]int {
	return map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
}

func invalid(field, msg string) error {
	return domainErrors.ErrInvalidFeedback.
		WithError(errors.New(msg)).
		WithContext("field", field)
}

func validate(fb models.Feedback) error {
	if !fb.Type.Valid() {
		return invalid("feedback_type", fmt.Sprintf("unknown feedback type %q", fb.Type))
	}
	if strings.TrimSpace(fb.TicketID) == "" {
		return invalid("ticket_id", "ticket_id is required")
	}
	if fb.Rating < 1 || fb.Rating > 5 {
		return invalid("rating", "rating must be between 1 and 5")
	}
	if c := fb.PredictionConfidence; c != nil && (*c < 0 || *c > 1) {
		return invalid("prediction_confidence", "prediction_confidence must be between 0 and 1")
	}
	if utf8.RuneCountInString(fb.Comment) > maxCommentLength {
		return invalid("comment", fmt.Sprintf("comment cannot exceed %d characters", maxCommentLength))
	}
	return nil
}
