// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the HTTP and lifecycle collectors.  A nil *Metrics is
// valid and records nothing, which keeps tests free of registries.
type Metrics struct {
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	transitions    *prometheus.CounterVec
	casConflicts   *prometheus.CounterVec
	cascadeResults *prometheus.CounterVec
}

// New creates the collectors under the given prefix and registers them
// with reg.  Registration panics on duplicates, like promauto.
func New(prefix string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_lifecycle_transitions_total",
			Help: "Lifecycle operations by outcome",
		}, []string{"operation", "outcome"}),
		casConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_cas_conflicts_total",
			Help: "Optimistic concurrency conflicts by entity",
		}, []string{"entity"}),
		cascadeResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_cascade_deactivations_total",
			Help: "Products handled by blacklist cascades by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.transitions, m.casConflicts, m.cascadeResults)
	return m
}

// Transition counts one lifecycle operation.  outcome is "ok" or the
// error class the caller saw.
func (m *Metrics) Transition(op, outcome string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(op, outcome).Inc()
}

// CASConflict counts a lost compare-and-swap on seller or product.
func (m *Metrics) CASConflict(entity string) {
	if m == nil {
		return
	}
	m.casConflicts.WithLabelValues(entity).Inc()
}

// Cascade counts products handled by a blacklist cascade.
func (m *Metrics) Cascade(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.cascadeResults.WithLabelValues(outcome).Add(float64(n))
}

// Middleware records request count and latency labelled by route pattern.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if m == nil {
				return err
			}
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			labels := []string{c.Request().Method, c.Path(), strconv.Itoa(status)}
			m.httpRequests.WithLabelValues(labels...).Inc()
			m.httpDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
