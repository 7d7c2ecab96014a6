package limiter

import (
	"context"
	"time"

	"notes/backend/internal/metrics"
)

type instrumentedLimiter struct {
	backend string
	next    Limiter
	metrics *metrics.Collectors
}

// Instrument records the result and latency of every check made through next.
func Instrument(next Limiter, backend string, m *metrics.Collectors) Limiter {
	if m == nil {
		return next
	}
	return &instrumentedLimiter{backend: backend, next: next, metrics: m}
}

func (l *instrumentedLimiter) Check(ctx context.Context, key string) (d Decision, err error) {
	defer func(begin time.Time) {
		result := metrics.ResultAllowed
		switch {
		case err != nil:
			result = metrics.ResultError
		case !d.Allowed:
			result = metrics.ResultDenied
		}
		l.metrics.LimiterChecks.WithLabelValues(l.backend, result).Inc()
		l.metrics.LimiterLatency.WithLabelValues(l.backend).Observe(time.Since(begin).Seconds())
	}(time.Now())

	return l.next.Check(ctx, key)
}
