// Package metric provides Prometheus metrics for Gatewarden.
//
// It exposes token lifecycle counters, validation outcomes, and HTTP
// request metrics under the gatewarden namespace.
package metric

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcome label values.
const (
	OutcomeGranted = "granted"
	OutcomeDenied  = "denied"
	OutcomeError   = "error"
)

// Registry holds all application metrics.
type Registry struct {
	reg *prometheus.Registry

	// Token lifecycle.
	TokensIssued  prometheus.Counter
	TokensRevoked prometheus.Counter

	// Validation outcomes, labeled granted/denied/error.
	Validations *prometheus.CounterVec

	// HTTP server.
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewRegistry creates the metrics registry with all collectors
// registered, including the standard Go runtime and process collectors.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		TokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatewarden",
			Subsystem: "tokens",
			Name:      "issued_total",
			Help:      "Total tokens issued",
		}),
		TokensRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gatewarden",
			Subsystem: "tokens",
			Name:      "revoked_total",
			Help:      "Total tokens revoked",
		}),
		Validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatewarden",
			Subsystem: "tokens",
			Name:      "validations_total",
			Help:      "Total validation decisions by outcome",
		}, []string{"outcome"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gatewarden",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gatewarden",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		r.TokensIssued,
		r.TokensRevoked,
		r.Validations,
		r.RequestsTotal,
		r.RequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// Prometheus returns the underlying registry for components that
// register their own collectors.
func (r *Registry) Prometheus() *prometheus.Registry {
	return r.reg
}

// Handler returns the HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
