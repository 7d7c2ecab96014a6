package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Label names.
const (
	FieldBackend = "backend"
	FieldResult  = "result"
	FieldMethod  = "method"
	FieldRoute   = "route"
	FieldStatus  = "status"
)

// Limiter check results.
const (
	ResultAllowed = "allowed"
	ResultDenied  = "denied"
	ResultError   = "error"
)

type Collectors struct {
	LimiterChecks  *prometheus.CounterVec
	LimiterLatency *prometheus.HistogramVec
	HTTPRequests   *prometheus.CounterVec
}

func New() *Collectors {
	return &Collectors{
		LimiterChecks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notes",
				Subsystem: "rate_limit",
				Name:      "checks_total",
				Help:      "Total number of rate limit checks by result",
			},
			[]string{FieldBackend, FieldResult},
		),
		LimiterLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "notes",
				Subsystem: "rate_limit",
				Name:      "check_duration_seconds",
				Help:      "Latency of rate limit checks",
				Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{FieldBackend},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "notes",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests by route and status",
			},
			[]string{FieldMethod, FieldRoute, FieldStatus},
		),
	}
}

func (c *Collectors) Register(reg prometheus.Registerer) error {
	for _, col := range []prometheus.Collector{c.LimiterChecks, c.LimiterLatency, c.HTTPRequests} {
		if err := reg.Register(col); err != nil {
			return err
		}
	}
	return nil
}
