package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestChecker_Check(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		status Status
	}{
		{
			name:   "all healthy",
			opts:   []Option{WithCheck("cache", ok), WithCheck("triage", ok)},
			status: StatusHealthy,
		},
		{
			name:   "half failing is degraded",
			opts:   []Option{WithCheck("cache", ok), WithCheck("database", failing)},
			status: StatusDegraded,
		},
		{
			name:   "most failing is unhealthy",
			opts:   []Option{WithCheck("cache", failing), WithCheck("database", failing), WithCheck("triage", ok)},
			status: StatusUnhealthy,
		},
		{
			name:   "disabled checks do not count",
			opts:   []Option{WithDisabled("gemini"), WithCheck("cache", ok)},
			status: StatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			c := NewChecker(tt.opts...)

			// Act
			report := c.Check(context.Background())

			// Assert
			assert.Equal(t, tt.status, report.Status)
			assert.Len(t, report.Checks, len(tt.opts))
		})
	}
}

func TestChecker_Check_ResultDetails(t *testing.T) {
	// Arrange
	c := NewChecker(WithCheck("database", failing), WithDisabled("gemini"), WithCheck("cache", ok))

	// Act
	report := c.Check(context.Background())

	// Assert
	require.Len(t, report.Checks, 3)
	assert.Equal(t, CheckResult{Name: "cache", Status: StatusHealthy, LatencyMs: report.Checks[0].LatencyMs}, report.Checks[0])
	assert.Equal(t, "database", report.Checks[1].Name)
	assert.Equal(t, "connection refused", report.Checks[1].Error)
	assert.Equal(t, StatusDisabled, report.Checks[2].Status)
}

func TestChecker_Check_TimesOutSlowChecks(t *testing.T) {
	// Arrange
	slow := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	c := NewChecker(WithCheck("gemini", slow), WithTimeout(20*time.Millisecond))

	// Act
	report := c.Check(context.Background())

	// Assert
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Contains(t, report.Checks[0].Error, "deadline exceeded")
}

func TestChecker_ReadyAndLive(t *testing.T) {
	// Arrange
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewChecker(WithCheck("cache", failing), WithClock(func() time.Time { return now }))
	now = now.Add(90 * time.Second)

	// Act
	_, ready := c.Ready(context.Background())
	live := c.Live()

	// Assert
	assert.False(t, ready)
	assert.Equal(t, "alive", live.Status)
	assert.Equal(t, int64(90), live.UptimeSeconds)
}
