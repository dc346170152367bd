package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	domain "github.com/woodcraft-atelier/api/internal/domain"
)

const defaultProbeTimeout = 1500 * time.Millisecond

// DependencyCheck is one readiness probe, e.g. a Firestore ping.
type DependencyCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(context.Context) error
}

type HealthOption func(*dependencyHealth)

// WithProbeTimeout sets the timeout for checks that do not declare one.
func WithProbeTimeout(timeout time.Duration) HealthOption {
	return func(h *dependencyHealth) {
		if timeout > 0 {
			h.timeout = timeout
		}
	}
}

// WithHealthClock replaces time.Now; used by tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *dependencyHealth) {
		if clock != nil {
			h.now = clock
		}
	}
}

type dependencyHealth struct {
	checks  []DependencyCheck
	timeout time.Duration
	now     func() time.Time
}

// NewDependencyHealth returns a HealthRepository running checks concurrently.
func NewDependencyHealth(checks []DependencyCheck, opts ...HealthOption) (HealthRepository, error) {
	if len(checks) == 0 {
		return nil, errors.New("health: at least one dependency check is required")
	}
	seen := make(map[string]struct{}, len(checks))
	for _, c := range checks {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return nil, errors.New("health: dependency check missing name")
		}
		if c.Check == nil {
			return nil, fmt.Errorf("health: dependency %s missing check function", name)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("health: duplicate dependency %s", name)
		}
		seen[name] = struct{}{}
	}

	h := &dependencyHealth{
		checks:  append([]DependencyCheck(nil), checks...),
		timeout: defaultProbeTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h, nil
}

func (h *dependencyHealth) Collect(ctx context.Context) (domain.SystemHealthReport, error) {
	if ctx == nil {
		return domain.SystemHealthReport{}, errors.New("health: context is required")
	}

	results := make(map[string]domain.SystemHealthCheck, len(h.checks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range h.checks {
		wg.Add(1)
		go func(c DependencyCheck) {
			defer wg.Done()
			result := h.probe(ctx, c)
			mu.Lock()
			results[c.Name] = result
			mu.Unlock()
		}(c)
	}
	wg.Wait()

	status := domain.HealthStatusOK
	for _, r := range results {
		if r.Status == domain.HealthStatusError {
			status = domain.HealthStatusError
			break
		}
		if r.Status == domain.HealthStatusDegraded {
			status = domain.HealthStatusDegraded
		}
	}
	return domain.SystemHealthReport{
		Status:      status,
		Checks:      results,
		GeneratedAt: h.now(),
	}, nil
}

// probe maps a check outcome to a status: timeouts and cancellation are
// errors, any other failure leaves the service degraded.
func (h *dependencyHealth) probe(ctx context.Context, c DependencyCheck) domain.SystemHealthCheck {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = h.timeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := h.now()
	err := c.Check(probeCtx)
	end := h.now()
	if err == nil && probeCtx.Err() != nil {
		err = probeCtx.Err()
	}

	result := domain.SystemHealthCheck{
		Status:    domain.HealthStatusOK,
		Detail:    "ok",
		Latency:   end.Sub(start),
		CheckedAt: end,
	}
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded):
		result.Status, result.Detail, result.Error = domain.HealthStatusError, "timeout", err.Error()
	case errors.Is(err, context.Canceled):
		result.Status, result.Detail, result.Error = domain.HealthStatusError, "cancelled", err.Error()
	default:
		result.Status, result.Detail, result.Error = domain.HealthStatusDegraded, "failed", err.Error()
	}
	return result
}
