package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// metrics are served on GET /metrics from a registry owned by the server
type metrics struct {
	registry *prometheus.Registry

	contributors prometheus.Gauge
	variables    prometheus.Gauge
	mutators     prometheus.Gauge
	recomputes   prometheus.Counter
	applies      prometheus.Counter
	requests     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),
		contributors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envmerge",
			Name:      "contributors",
			Help:      "Number of registered contributor collections.",
		}),
		variables: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envmerge",
			Name:      "merged_variables",
			Help:      "Number of variables in the merged collection.",
		}),
		mutators: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envmerge",
			Name:      "merged_mutators",
			Help:      "Number of mutators in the merged collection.",
		}),
		recomputes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envmerge",
			Name:      "recomputes_total",
			Help:      "Number of times the merged collection was rebuilt.",
		}),
		applies: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "envmerge",
			Name:      "applies_total",
			Help:      "Number of environments the merged collection was applied to.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "envmerge",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "envmerge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	m.registry.MustRegister(
		m.contributors,
		m.variables,
		m.mutators,
		m.recomputes,
		m.applies,
		m.requests,
		m.duration,
	)
	return m
}

// observeMerged records the shape of a freshly merged collection. Every gauge
// is read from merged so they always describe the same registry state.
func (m *metrics) observeMerged(merged *merge.Collection) {
	mutators := 0
	merged.Each(func(_ string, list []types.ExtensionMutator) {
		mutators += len(list)
	})

	m.recomputes.Inc()
	m.contributors.Set(float64(merged.Contributors()))
	m.variables.Set(float64(merged.Len()))
	m.mutators.Set(float64(mutators))
}

func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// instrument counts requests by their route pattern so ids do not become
// label values
func (m *metrics) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		m.requests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
