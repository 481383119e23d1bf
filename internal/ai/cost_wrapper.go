package ai

import (
	"context"
	"time"

	"github.com/thomas-vilte/mateticket/internal/cache"
	"github.com/thomas-vilte/mateticket/internal/errors"
	"github.com/thomas-vilte/mateticket/internal/logger"
	"github.com/thomas-vilte/mateticket/internal/models"
	"github.com/thomas-vilte/mateticket/internal/services/cost"
	"github.com/thomas-vilte/mateticket/internal/services/routing"
)

// GenerateFunc calls the model and returns the raw response text.
type GenerateFunc func(ctx context.Context, model string, prompt string) (string, *models.TokenUsage, error)

type CostAwareWrapper struct {
	provider              CostAwareAIProvider
	calculator            *cost.Calculator
	manager               *cost.Manager
	cache                 cache.Store
	cacheTTL              time.Duration
	modelSelector         *routing.ModelSelector
	autoRoute             bool
	estimatedOutputTokens int
	observer              CallObserver
}

type WrapperConfig struct {
	Provider              CostAwareAIProvider
	Cache                 cache.Store
	CacheTTL              time.Duration
	Manager               *cost.Manager
	AutoRoute             bool
	EstimatedOutputTokens int
	Observer              CallObserver
}

const defaultResponseTTL = 24 * time.Hour

// NewCostAwareWrapper creates a provider-agnostic wrapper. A nil Cache or
// Manager gets an in-memory one.
func NewCostAwareWrapper(cfg WrapperConfig) *CostAwareWrapper {
	store := cfg.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}
	manager := cfg.Manager
	if manager == nil {
		manager = cost.NewManager(nil, 0)
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultResponseTTL
	}

	return &CostAwareWrapper{
		provider:              cfg.Provider,
		calculator:            cost.NewCalculator(),
		manager:               manager,
		cache:                 store,
		cacheTTL:              ttl,
		modelSelector:         routing.NewModelSelector(cfg.Provider.GetModelName()),
		autoRoute:             cfg.AutoRoute,
		estimatedOutputTokens: cfg.EstimatedOutputTokens,
		observer:              cfg.Observer,
	}
}

// WrapGenerate runs generateFn behind the response cache, the model router
// and the daily budget, and records what the call cost.
func (w *CostAwareWrapper) WrapGenerate(
	ctx context.Context,
	command string,
	prompt string,
	generateFn GenerateFunc,
) (string, *models.TokenUsage, error) {
	startTime := time.Now()
	log := logger.FromContext(ctx)

	providerName := w.provider.GetProviderName()
	originalModel := w.provider.GetModelName()
	modelToUse := originalModel

	cacheKey := "ai:" + cache.GenerateHash(providerName+originalModel+prompt)

	var cached string
	if hit, err := w.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		log.Debug("ai response cache hit",
			"command", command,
			"cache_key", cacheKey)

		durationMs := time.Since(startTime).Milliseconds()
		if err := w.manager.SaveActivity(ctx, cost.ActivityRecord{
			Timestamp:  time.Now(),
			Command:    command,
			Provider:   providerName,
			Model:      originalModel,
			DurationMs: durationMs,
			CacheHit:   true,
			Hash:       cacheKey,
		}); err != nil {
			log.Warn("failed to record ai activity",
				"command", command,
				"error", err)
		}

		w.observe(command, OutcomeCacheHit, 0)
		return cached, &models.TokenUsage{
			CacheHit:   true,
			DurationMs: durationMs,
			Model:      originalModel,
		}, nil
	} else if err != nil {
		log.Warn("ai response cache unavailable",
			"command", command,
			"error", err)
	}

	var inputTokens int
	if tokens, err := w.provider.CountTokens(ctx, prompt); err == nil {
		inputTokens = tokens
	} else {
		log.Debug("token count failed, estimating cost without it",
			"command", command,
			"error", err)
	}

	if suggested := w.modelSelector.SelectBestModel(command, inputTokens); suggested != originalModel {
		log.Debug("model router suggestion",
			"command", command,
			"current", originalModel,
			"suggested", suggested,
			"rationale", w.modelSelector.GetRationale(suggested),
			"applied", w.autoRoute)
		if w.autoRoute {
			modelToUse = suggested
		}
	}

	estimatedCost := w.calculator.EstimateCost(providerName, modelToUse, inputTokens, w.estimatedOutputTokens)

	budgetStatus, err := w.manager.CheckBudget(ctx, estimatedCost)
	if err != nil {
		w.observe(command, OutcomeError, 0)
		return "", nil, err
	}
	if budgetStatus.IsExceeded {
		log.Warn("ai daily budget exceeded",
			"command", command,
			"today_total_usd", budgetStatus.TodayTotal,
			"limit_usd", budgetStatus.Limit)
		w.observe(command, OutcomeBudgetExceeded, 0)
		return "", nil, errors.ErrQuotaExceeded
	}

	resp, usage, err := generateFn(ctx, modelToUse, prompt)
	if err != nil {
		w.observe(command, OutcomeError, 0)
		return "", nil, err
	}

	if err := w.cache.Set(ctx, cacheKey, resp, w.cacheTTL); err != nil {
		log.Warn("failed to cache ai response",
			"command", command,
			"error", err)
	}

	if usage == nil {
		usage = &models.TokenUsage{InputTokens: inputTokens}
	}
	usage.Model = modelToUse
	usage.CostUSD = w.calculator.EstimateCost(providerName, modelToUse, usage.InputTokens, usage.OutputTokens)
	usage.DurationMs = time.Since(startTime).Milliseconds()
	usage.CacheHit = false

	if err := w.manager.SaveActivity(ctx, cost.ActivityRecord{
		Timestamp:    time.Now(),
		Command:      command,
		Provider:     providerName,
		Model:        modelToUse,
		TokensInput:  usage.InputTokens,
		TokensOutput: usage.OutputTokens,
		CostUSD:      usage.CostUSD,
		DurationMs:   usage.DurationMs,
		Hash:         cacheKey,
	}); err != nil {
		log.Warn("failed to record ai activity",
			"command", command,
			"error", err)
	}

	w.observe(command, OutcomeSuccess, usage.CostUSD)
	return resp, usage, nil
}

// Manager exposes the cost manager for reporting.
func (w *CostAwareWrapper) Manager() *cost.Manager {
	return w.manager
}

func (w *CostAwareWrapper) observe(command, outcome string, costUSD float64) {
	if w.observer != nil {
		w.observer.ObserveAICall(command, outcome, costUSD)
	}
}
