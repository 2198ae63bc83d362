package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the concierge.
type Metrics struct {
	ActiveSessions  prometheus.Gauge
	RoundsPerTurn   prometheus.Histogram
	ToolCalls       *prometheus.CounterVec
	Terminations    *prometheus.CounterVec
	Alerts          *prometheus.CounterVec
	GeneratorErrors *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		ActiveSessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Number of live conversation sessions.",
		}),
		RoundsPerTurn: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rounds_per_turn",
			Help:      "Scheduler rounds consumed per user message.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21, 30},
		}),
		ToolCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tool_calls_total",
			Help:      "Tool invocations by tool name and outcome.",
		}, []string{"tool", "outcome"}),
		Terminations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "terminations_total",
			Help:      "Round terminations by reason.",
		}, []string{"reason"}),
		Alerts: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_total",
			Help:      "Surfaced alert banners by kind (crisis, emergency).",
		}, []string{"kind"}),
		GeneratorErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generator_errors_total",
			Help:      "Generation-service failures by call shape.",
		}, []string{"call"}),
	}
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
