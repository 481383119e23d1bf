package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	domainErrors "github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/health"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/ratelimit"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "mateticket"

type (
	triager interface {
		Triage(ctx context.Context, req models.TriageRequest) (*models.TriageResult, error)
	}

	slaPredictor interface {
		Predict(ctx context.Context, req models.SLARequest) (*models.SLAPrediction, error)
	}

	resolutionService interface {
		Suggest(ctx context.Context, req models.ResolutionRequest) (*models.ResolutionResult, error)
		RecordResolution(ctx context.Context, ticket models.HistoricalTicket) error
	}

	workloadOptimizer interface {
		Optimize(ctx context.Context, req models.WorkloadRequest) (*models.WorkloadResult, error)
		OptimizeAdvanced(ctx context.Context, req models.WorkloadRequest) (*models.AdvancedWorkloadResult, error)
		PredictTrends(ctx context.Context, req models.TrendsRequest) (*models.TrendPrediction, error)
		AnalyzeTeam(ctx context.Context, req models.TeamRequest) (*models.TeamInsights, error)
		WellnessRecommendations(ctx context.Context, req models.WellnessRequest) ([]models.WellnessRecommendation, error)
	}

	feedbackService interface {
		Submit(ctx context.Context, fb models.Feedback) (*models.Feedback, error)
		Get(ctx context.Context, id string) (*models.Feedback, error)
		Metrics(ctx context.Context, t models.FeedbackType) (*models.ModelMetrics, error)
		PerformanceMetrics(ctx context.Context, days int) (*models.PerformanceReport, error)
	}

	costReporter interface {
		Summary(ctx context.Context) (*cost.Summary, error)
	}

	healthChecker interface {
		Check(ctx context.Context) health.Report
		Ready(ctx context.Context) (health.Report, bool)
		Live() health.Liveness
	}
)

// Deps are the services behind the routes. Metrics, Limiter and
// Translations are optional.
type Deps struct {
	Triage     triager
	SLA        slaPredictor
	Resolution resolutionService
	Workload   workloadOptimizer
	Feedback   feedbackService
	Costs      costReporter
	Health     healthChecker

	Metrics      *telemetry.Metrics
	Limiter      *ratelimit.Limiter
	Translations *i18n.Translations

	Version   string
	AIEnabled bool
}

type Handler struct {
	triage     triager
	sla        slaPredictor
	resolution resolutionService
	workload   workloadOptimizer
	feedback   feedbackService
	costs      costReporter
	health     healthChecker

	metrics      *telemetry.Metrics
	limiter      *ratelimit.Limiter
	translations *i18n.Translations

	version   string
	aiEnabled bool
	now       func() time.Time
	mux       *http.ServeMux
}

func NewHandler(deps Deps) *Handler {
	h := &Handler{
		triage:       deps.Triage,
		sla:          deps.SLA,
		resolution:   deps.Resolution,
		workload:     deps.Workload,
		feedback:     deps.Feedback,
		costs:        deps.Costs,
		health:       deps.Health,
		metrics:      deps.Metrics,
		limiter:      deps.Limiter,
		translations: deps.Translations,
		version:      deps.Version,
		aiEnabled:    deps.AIEnabled,
		now:          time.Now,
		mux:          http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /{$}", h.handleRoot)

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /health/detailed", h.handleHealthDetailed)
	h.mux.HandleFunc("GET /health/ready", h.handleReady)
	h.mux.HandleFunc("GET /health/live", h.handleLive)
	if h.metrics != nil {
		h.mux.Handle("GET /metrics", h.metrics.Handler())
	}

	h.mux.HandleFunc("POST /ai/triage", h.handleTriage)
	h.mux.HandleFunc("POST /ai/predict-sla", h.handlePredictSLA)
	h.mux.HandleFunc("POST /ai/suggest-resolution", h.handleSuggestResolution)
	h.mux.HandleFunc("POST /ai/resolutions", h.handleRecordResolution)

	h.mux.HandleFunc("POST /ai/optimize-workload", h.handleOptimizeWorkload)
	h.mux.HandleFunc("POST /ai/optimize-workload/advanced", h.handleOptimizeAdvanced)
	h.mux.HandleFunc("POST /ai/workload/trends", h.handleWorkloadTrends)
	h.mux.HandleFunc("POST /ai/workload/team", h.handleTeamInsights)
	h.mux.HandleFunc("POST /ai/workload/wellness", h.handleWellness)

	h.mux.HandleFunc("POST /ai/feedback", h.handleSubmitFeedback)
	h.mux.HandleFunc("GET /ai/feedback/{id}", h.handleGetFeedback)
	h.mux.HandleFunc("GET /ai/metrics", h.handlePerformanceMetrics)
	h.mux.HandleFunc("GET /ai/metrics/{type}", h.handleModelMetrics)

	h.mux.HandleFunc("GET /ai/costs", h.handleCosts)
}

// Routes returns the mux wrapped in the middleware chain: tracing, logging,
// language negotiation and rate limiting, outermost first.
func (h *Handler) Routes() http.Handler {
	var handler http.Handler = h.mux
	handler = h.rateLimitMiddleware(handler)
	handler = h.i18nMiddleware(handler)
	handler = h.loggingMiddleware(handler)
	return otelhttp.NewHandler(handler, serviceName)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"service":    serviceName,
		"version":    h.version,
		"status":     "running",
		"ai_enabled": h.aiEnabled,
		"endpoints": []string{
			"/health", "/metrics",
			"/ai/triage", "/ai/predict-sla", "/ai/suggest-resolution", "/ai/optimize-workload",
			"/ai/feedback", "/ai/metrics", "/ai/costs",
		},
	}
	if h.translations != nil {
		info["languages"] = h.translations.SupportedLanguages()
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"status":    report.Status,
		"timestamp": report.Timestamp,
		"version":   h.version,
	})
}

func (h *Handler) handleHealthDetailed(w http.ResponseWriter, r *http.Request) {
	report := h.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (h *Handler) handleReady(w http.ResponseWriter, r *http.Request) {
	report, ready := h.health.Ready(r.Context())
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{
		"ready":  ready,
		"status": report.Status,
		"checks": report.Checks,
	})
}

func (h *Handler) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.health.Live())
}

func (h *Handler) handleTriage(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.TriageRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.triage.Triage(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, res.Cached)
}

func (h *Handler) handlePredictSLA(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.SLARequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.sla.Predict(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, res.Cached)
}

func (h *Handler) handleSuggestResolution(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.ResolutionRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.resolution.Suggest(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, res.Cached)
}

func (h *Handler) handleRecordResolution(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var ticket models.HistoricalTicket
	if err := decode(w, r, &ticket); err != nil {
		writeError(w, r, start, err)
		return
	}

	if err := h.resolution.RecordResolution(r.Context(), ticket); err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusCreated, start, map[string]string{"ticket_id": ticket.TicketID}, false)
}

func (h *Handler) handleOptimizeWorkload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.WorkloadRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.workload.Optimize(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleOptimizeAdvanced(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.WorkloadRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.workload.OptimizeAdvanced(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleWorkloadTrends(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.TrendsRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.workload.PredictTrends(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleTeamInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.TeamRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.workload.AnalyzeTeam(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleWellness(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.WellnessRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.workload.WellnessRecommendations(r.Context(), req)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleSubmitFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var fb models.Feedback
	if err := decode(w, r, &fb); err != nil {
		writeError(w, r, start, err)
		return
	}

	res, err := h.feedback.Submit(r.Context(), fb)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusCreated, start, res, false)
}

func (h *Handler) handleGetFeedback(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := h.feedback.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handlePerformanceMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var days int
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, start, domainErrors.NewValidationError("days", "days must be an integer"))
			return
		}
		days = n
	}

	res, err := h.feedback.PerformanceMetrics(r.Context(), days)
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleModelMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := h.feedback.Metrics(r.Context(), models.FeedbackType(r.PathValue("type")))
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}

func (h *Handler) handleCosts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := h.costs.Summary(r.Context())
	if err != nil {
		writeError(w, r, start, err)
		return
	}
	writeResult(w, http.StatusOK, start, res, false)
}
