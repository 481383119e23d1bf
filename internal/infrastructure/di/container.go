package di

import (
	"context"
	"fmt"
	"time"

	"github.com/thomas-vilte/mateticket/internal/ai"
	"github.com/thomas-vilte/mateticket/internal/ai/gemini"
	"github.com/thomas-vilte/mateticket/internal/cache"
	"github.com/thomas-vilte/mateticket/internal/config"
	"github.com/thomas-vilte/mateticket/internal/health"
	"github.com/thomas-vilte/mateticket/internal/httpapi"
	"github.com/thomas-vilte/mateticket/internal/i18n"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/ratelimit"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/services/feedback"
	"github.com/thomas-vilte/mateticket/internal/services/resolution"
	"github.com/thomas-vilte/mateticket/internal/services/sla"
	"github.com/thomas-vilte/mateticket/internal/services/triage"
	"github.com/thomas-vilte/mateticket/internal/services/workload"
	"github.com/thomas-vilte/mateticket/internal/similarity"
	"github.com/thomas-vilte/mateticket/internal/store/postgres"
	"github.com/thomas-vilte/mateticket/internal/telemetry"
	"github.com/thomas-vilte/mateticket/internal/version"
)

// Container owns the long lived dependencies of the service. Services are
// built lazily on first use and shared afterwards.
type Container struct {
	config       *config.Config
	translations *i18n.Translations

	// Infrastructure
	metrics  *telemetry.Metrics
	cache    cache.Store
	sweeper  cache.Sweeper
	db       *postgres.Store
	client   *gemini.Client
	analyzer *gemini.TicketAnalyzer
	costs    *cost.Manager

	// Services (lazy initialized)
	triage     *triage.Service
	sla        *sla.Service
	resolution *resolution.Service
	feedback   *feedback.Service
	checker    *health.Checker
}

func NewContainer(cfg *config.Config, trans *i18n.Translations) *Container {
	return &Container{
		config:       cfg,
		translations: trans,
	}
}

// Init connects the cache, the database and Gemini. Redis and Postgres
// failures fall back to in-memory implementations; a missing API key
// leaves the AI features off.
func (c *Container) Init(ctx context.Context) error {
	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("error registering metrics: %w", err)
	}
	c.metrics = metrics
	store := cache.New(ctx, c.config)
	if sweeper, ok := store.(cache.Sweeper); ok {
		c.sweeper = sweeper
	}
	c.cache = telemetry.InstrumentStore(store, metrics)

	var activity cost.ActivityStore = cost.NewMemoryActivityStore()
	if c.config.DatabaseURL != "" {
		db, err := openDatabase(ctx, c.config.DatabaseURL)
		if err != nil {
			logger.Warn(ctx, "database unavailable, using in-memory history",
				"error", err)
		} else {
			c.db = db
			activity = db
		}
	}
	c.costs = cost.NewManager(activity, c.config.Gemini.BudgetDaily)

	if !c.config.AIEnabled() {
		logger.Info(ctx, "gemini API key not configured, AI features disabled")
		return nil
	}

	client, err := gemini.NewClient(ctx, c.config)
	if err != nil {
		logger.Warn(ctx, "gemini client could not be created, AI features disabled",
			"error", err)
		return nil
	}
	c.client = client

	wrapper := ai.NewCostAwareWrapper(ai.WrapperConfig{
		Provider:  client,
		Cache:     c.cache,
		CacheTTL:  c.config.CacheTTL,
		Manager:   c.costs,
		AutoRoute: c.config.Gemini.AutoRoute,
		Observer:  metrics,
	})
	c.analyzer = gemini.NewTicketAnalyzer(client, wrapper, c.config.Language)

	return nil
}

func openDatabase(ctx context.Context, dsn string) (*postgres.Store, error) {
	db, err := postgres.Open(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}
	seed, err := resolution.LoadSeed()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Seed(ctx, seed); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (c *Container) AIEnabled() bool {
	return c.analyzer != nil
}

func (c *Container) GetTriageService() *triage.Service {
	if c.triage != nil {
		return c.triage
	}

	opts := []triage.Option{triage.WithCache(c.cache)}
	if c.analyzer != nil {
		opts = append(opts, triage.WithClassifier(c.analyzer))
	}
	c.triage = triage.NewService(opts...)
	return c.triage
}

func (c *Container) GetSLAService() *sla.Service {
	if c.sla != nil {
		return c.sla
	}

	opts := []sla.Option{sla.WithEngine(sla.EngineFor(c.config)), sla.WithCache(c.cache)}
	if c.analyzer != nil {
		opts = append(opts, sla.WithAssessor(c.analyzer))
	}
	c.sla = sla.NewService(opts...)
	return c.sla
}

func (c *Container) GetResolutionService() (*resolution.Service, error) {
	if c.resolution != nil {
		return c.resolution, nil
	}

	opts := []resolution.Option{resolution.WithCache(c.cache)}
	if c.db != nil {
		opts = append(opts, resolution.WithRepository(c.db))
	}
	if c.analyzer != nil {
		embedder := similarity.NewGeminiEmbedder(c.client, c.cache)
		opts = append(opts,
			resolution.WithResolver(c.analyzer),
			resolution.WithSearcher(similarity.NewSearcher(embedder)))
	}

	svc, err := resolution.NewService(opts...)
	if err != nil {
		return nil, fmt.Errorf("error creating resolution service: %w", err)
	}
	c.resolution = svc
	return c.resolution, nil
}

func (c *Container) GetFeedbackService() *feedback.Service {
	if c.feedback != nil {
		return c.feedback
	}

	opts := []feedback.Option{feedback.WithStore(c.cache)}
	if c.db != nil {
		opts = append(opts, feedback.WithArchive(c.db))
	}
	c.feedback = feedback.NewService(opts...)
	return c.feedback
}

// GetHealthChecker returns the checker behind /health and the doctor command.
func (c *Container) GetHealthChecker() (*health.Checker, error) {
	if c.checker != nil {
		return c.checker, nil
	}

	resolutionSvc, err := c.GetResolutionService()
	if err != nil {
		return nil, err
	}

	opts := []health.Option{
		health.WithCheck("cache", c.cache.Ping),
		health.WithCheck("triage", c.GetTriageService().HealthCheck),
		health.WithCheck("sla", c.GetSLAService().HealthCheck),
		health.WithCheck("resolution", resolutionSvc.HealthCheck),
	}
	if c.analyzer != nil {
		opts = append(opts, health.WithCheck("gemini", c.analyzer.Ping))
	} else {
		opts = append(opts, health.WithDisabled("gemini"))
	}
	if c.db != nil {
		opts = append(opts, health.WithCheck("database", c.db.Ping))
	} else {
		opts = append(opts, health.WithDisabled("database"))
	}

	c.checker = health.NewChecker(opts...)
	return c.checker, nil
}

// GetHandler wires every service into the HTTP API.
func (c *Container) GetHandler() (*httpapi.Handler, error) {
	resolutionSvc, err := c.GetResolutionService()
	if err != nil {
		return nil, err
	}
	checker, err := c.GetHealthChecker()
	if err != nil {
		return nil, err
	}

	return httpapi.NewHandler(httpapi.Deps{
		Triage:       c.GetTriageService(),
		SLA:          c.GetSLAService(),
		Resolution:   resolutionSvc,
		Workload:     workload.NewOptimizer(),
		Feedback:     c.GetFeedbackService(),
		Costs:        c.costs,
		Health:       checker,
		Metrics:      c.metrics,
		Limiter:      ratelimit.New(c.cache, c.config.RateLimit.Requests, c.config.RateLimitWindow()),
		Translations: c.translations,
		Version:      version.Version,
		AIEnabled:    c.AIEnabled(),
	}), nil
}

// Close releases the cache and database connections.
func (c *Container) Close() {
	if c.cache != nil {
		if err := c.cache.Close(); err != nil {
			logger.Warn(context.Background(), "error closing cache", "error", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
}

const cacheSweepInterval = time.Minute

// RunCacheJanitor periodically drops expired entries from the in-memory
// cache until ctx is done. Redis expires keys on its own, so it returns
// immediately there.
func (c *Container) RunCacheJanitor(ctx context.Context) {
	c.runCacheJanitor(ctx, cacheSweepInterval)
}

func (c *Container) runCacheJanitor(ctx context.Context, every time.Duration) {
	if c.sweeper == nil {
		return
	}
	cache.RunJanitor(ctx, c.sweeper, every)
}
