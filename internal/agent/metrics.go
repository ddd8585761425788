package agent

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report automation activity.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration prometheus.Histogram
	toolCalls       *prometheus.CounterVec
	turns           prometheus.Histogram
	running         prometheus.Gauge
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the package-level metrics registered with the global
// Prometheus registry.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Collectors that are already registered are reused; any other registration
// error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		requests: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ait",
				Subsystem: "agent",
				Name:      "model_requests_total",
				Help:      "Chat-completion requests sent to the model backend.",
			},
			[]string{"status"},
		)),
		requestDuration: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ait",
				Subsystem: "agent",
				Name:      "model_request_duration_seconds",
				Help:      "Latency of chat-completion requests.",
				Buckets:   prometheus.DefBuckets,
			},
		)),
		toolCalls: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ait",
				Subsystem: "agent",
				Name:      "tool_calls_total",
				Help:      "Tool calls dispatched, by outcome.",
			},
			[]string{"status"},
		)),
		turns: register(reg, prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "ait",
				Subsystem: "agent",
				Name:      "automation_turns",
				Help:      "Model requests needed per automation.",
				Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16},
			},
		)),
		running: register(reg, prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ait",
				Subsystem: "agent",
				Name:      "automation_running",
				Help:      "1 while an automation is in progress.",
			},
		)),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveRequest records one model request and its latency.
func (m *Metrics) ObserveRequest(status string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(status).Inc()
	m.requestDuration.Observe(d.Seconds())
}

// IncToolCall counts one dispatched tool call.
func (m *Metrics) IncToolCall(status string) {
	if m == nil {
		return
	}
	m.toolCalls.WithLabelValues(status).Inc()
}

// ObserveTurns records how many model requests an automation needed.
func (m *Metrics) ObserveTurns(n int) {
	if m == nil {
		return
	}
	m.turns.Observe(float64(n))
}

// SetRunning flips the running gauge.
func (m *Metrics) SetRunning(running bool) {
	if m == nil {
		return
	}
	if running {
		m.running.Set(1)
	} else {
		m.running.Set(0)
	}
}
