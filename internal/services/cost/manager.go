package cost

import (
	"context"
	"fmt"
	"time"

	"github.com/thomas-vilte/mateticket/internal/logger"
)

type BudgetStatus struct {
	IsExceeded   bool    `json:"is_exceeded"`
	PercentUsed  float64 `json:"percent_used"`
	TodayTotal   float64 `json:"today_total_usd"`
	Estimated    float64 `json:"estimated_usd"`
	Limit        float64 `json:"limit_usd"`
	IsWarning    bool    `json:"is_warning"`
	WarningLevel int     `json:"warning_level,omitempty"` // 50, 75, 90
}

// Summary is the spend report served by the costs endpoint.
type Summary struct {
	DailyTotal   float64            `json:"daily_total_usd"`
	MonthlyTotal float64            `json:"monthly_total_usd"`
	BudgetDaily  float64            `json:"budget_daily_usd"`
	PercentUsed  float64            `json:"percent_used"`
	CallsToday   int                `json:"calls_today"`
	CacheHits    int                `json:"cache_hits_today"`
	ByModel      map[string]float64 `json:"by_model_usd"`
	ByCommand    map[string]int     `json:"calls_by_operation"`
}

type Manager struct {
	store       ActivityStore
	budgetDaily float64
	now         func() time.Time
}

// NewManager tracks spend in store. A budgetDaily of 0 disables the limit.
func NewManager(store ActivityStore, budgetDaily float64) *Manager {
	if store == nil {
		store = NewMemoryActivityStore()
	}
	return &Manager{
		store:       store,
		budgetDaily: budgetDaily,
		now:         time.Now,
	}
}

// SaveActivity saves an activity record
func (m *Manager) SaveActivity(ctx context.Context, record ActivityRecord) error {
	logger.Debug(ctx, "saving activity record",
		"command", record.Command,
		"model", record.Model,
		"tokens_input", record.TokensInput,
		"tokens_output", record.TokensOutput,
		"cost_usd", record.CostUSD,
		"cache_hit", record.CacheHit)

	if err := m.store.SaveActivity(ctx, record); err != nil {
		return fmt.Errorf("error saving activity: %w", err)
	}
	return nil
}

// CheckBudget checks if the estimated cost exceeds the daily budget
func (m *Manager) CheckBudget(ctx context.Context, estimatedCost float64) (*BudgetStatus, error) {
	if m.budgetDaily <= 0 {
		return &BudgetStatus{Estimated: estimatedCost}, nil
	}

	todayTotal, err := m.GetDailyTotal(ctx)
	if err != nil {
		return nil, err
	}

	percentUsed := (todayTotal / m.budgetDaily) * 100
	newPercent := ((todayTotal + estimatedCost) / m.budgetDaily) * 100

	status := &BudgetStatus{
		IsExceeded:  newPercent > 100,
		PercentUsed: percentUsed,
		TodayTotal:  todayTotal,
		Estimated:   estimatedCost,
		Limit:       m.budgetDaily,
	}

	switch {
	case percentUsed >= 90:
		status.IsWarning, status.WarningLevel = true, 90
	case percentUsed >= 75:
		status.IsWarning, status.WarningLevel = true, 75
	case percentUsed >= 50:
		status.IsWarning, status.WarningLevel = true, 50
	}

	if status.IsWarning {
		logger.Warn(ctx, "AI budget usage is high",
			"percent_used", percentUsed,
			"limit_usd", m.budgetDaily)
	}

	return status, nil
}

// GetDailyTotal returns the spend since local midnight.
func (m *Manager) GetDailyTotal(ctx context.Context) (float64, error) {
	return m.totalSince(ctx, startOfDay(m.now()))
}

// GetMonthlyTotal returns the spend since the first of the month.
func (m *Manager) GetMonthlyTotal(ctx context.Context) (float64, error) {
	now := m.now()
	return m.totalSince(ctx, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
}

func (m *Manager) Summary(ctx context.Context) (*Summary, error) {
	now := m.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	dayStart := startOfDay(now)

	records, err := m.store.ListActivity(ctx, monthStart)
	if err != nil {
		return nil, fmt.Errorf("error listing activity: %w", err)
	}

	s := &Summary{
		BudgetDaily: m.budgetDaily,
		ByModel:     make(map[string]float64),
		ByCommand:   make(map[string]int),
	}
	for _, r := range records {
		s.MonthlyTotal += r.CostUSD
		if r.Timestamp.Before(dayStart) {
			continue
		}
		s.DailyTotal += r.CostUSD
		s.CallsToday++
		if r.CacheHit {
			s.CacheHits++
		}
		s.ByModel[r.Model] += r.CostUSD
		s.ByCommand[r.Command]++
	}
	if m.budgetDaily > 0 {
		s.PercentUsed = (s.DailyTotal / m.budgetDaily) * 100
	}
	return s, nil
}

func (m *Manager) totalSince(ctx context.Context, since time.Time) (float64, error) {
	records, err := m.store.ListActivity(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("error listing activity: %w", err)
	}

	var total float64
	for _, r := range records {
		total += r.CostUSD
	}
	return total, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
