package health

import (
	"context"
	"sort"
	"time"

	"github.com/thomas-vilte/mateticket/internal/logger"
	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusDisabled  Status = "disabled"
)

const defaultCheckTimeout = 5 * time.Second

// CheckFunc reports a dependency as healthy by returning nil.
type CheckFunc func(ctx context.Context) error

type check struct {
	name     string
	fn       CheckFunc
	disabled bool
}

type CheckResult struct {
	Name      string `json:"name"`
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	Error     string `json:"error,omitempty"`
}

type Report struct {
	Status        Status        `json:"status"`
	Checks        []CheckResult `json:"checks"`
	Timestamp     time.Time     `json:"timestamp"`
	UptimeSeconds int64         `json:"uptime_seconds"`
}

type Liveness struct {
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
	UptimeSeconds int64     `json:"uptime_seconds"`
}

// Checker runs every registered dependency check in parallel.
type Checker struct {
	checks  []check
	started time.Time
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Checker)

// WithCheck registers a named check.
func WithCheck(name string, fn CheckFunc) Option {
	return func(c *Checker) {
		c.checks = append(c.checks, check{name: name, fn: fn})
	}
}

// WithDisabled lists a dependency that is not configured. It is reported
// as disabled and does not count towards the overall status.
func WithDisabled(name string) Option {
	return func(c *Checker) {
		c.checks = append(c.checks, check{name: name, disabled: true})
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Checker) {
		c.timeout = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Checker) {
		c.now = now
	}
}

func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		timeout: defaultCheckTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.started = c.now()
	return c
}

// Check runs all checks and derives the overall status: healthy when all
// pass, degraded when at most half fail, unhealthy otherwise.
func (c *Checker) Check(ctx context.Context) Report {
	log := logger.FromContext(ctx)

	results := make([]CheckResult, len(c.checks))
	var g errgroup.Group
	for i, chk := range c.checks {
		if chk.disabled {
			results[i] = CheckResult{Name: chk.name, Status: StatusDisabled}
			continue
		}
		g.Go(func() error {
			results[i] = c.run(ctx, chk)
			return nil
		})
	}
	_ = g.Wait()

	var enabled, failed int
	for _, r := range results {
		if r.Status == StatusDisabled {
			continue
		}
		enabled++
		if r.Status != StatusHealthy {
			failed++
			log.Warn("health check failed",
				"check", r.Name,
				"error", r.Error)
		}
	}

	status := StatusHealthy
	switch {
	case failed == 0:
	case failed*2 <= enabled:
		status = StatusDegraded
	default:
		status = StatusUnhealthy
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	now := c.now()
	return Report{
		Status:        status,
		Checks:        results,
		Timestamp:     now.UTC(),
		UptimeSeconds: int64(now.Sub(c.started).Seconds()),
	}
}

func (c *Checker) run(ctx context.Context, chk check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := chk.fn(ctx)
	result := CheckResult{
		Name:      chk.name,
		Status:    StatusHealthy,
		LatencyMs: time.Since(start).Milliseconds(),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}

// Ready reports whether the service can take traffic, which is any status
// but unhealthy.
func (c *Checker) Ready(ctx context.Context) (Report, bool) {
	report := c.Check(ctx)
	return report, report.Status != StatusUnhealthy
}

// Live always reports the process as alive.
func (c *Checker) Live() Liveness {
	now := c.now()
	return Liveness{
		Status:        "alive",
		Timestamp:     now.UTC(),
		UptimeSeconds: int64(now.Sub(c.started).Seconds()),
	}
}
