package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/isdmx/nexus/models"
)

const namespace = "nexus"

// Sandbox execution results
const (
	SandboxSuccess = "success"
	SandboxFailure = "failure"
	SandboxTimeout = "timeout"
)

// Metrics holds the Prometheus collectors for the orchestration loop
type Metrics struct {
	RunsTotal              *prometheus.CounterVec
	AttemptsTotal          *prometheus.CounterVec
	SandboxExecutionsTotal *prometheus.CounterVec
	RunDurationSeconds     prometheus.Histogram
	ActiveRuns             prometheus.Gauge
}

// NewRegistry creates a registry with the Go runtime and process collectors registered
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New registers the loop metrics on reg
func New(reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished orchestration runs by terminal status (SUCCESS, FAILED, ERROR).",
		}, []string{"status"}),
		AttemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attempts_total",
			Help:      "Generation attempts by outcome.",
		}, []string{"outcome"}),
		SandboxExecutionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sandbox_executions_total",
			Help:      "Sandbox executions by result.",
		}, []string{"result"}),
		RunDurationSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of orchestration runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}),
		ActiveRuns: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_runs",
			Help:      "Runs currently in progress.",
		}),
	}
}

// ObserveRun records a finished run. status is a RunStatus or "ERROR" for aborted runs.
func (m *Metrics) ObserveRun(status string, d time.Duration) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.Observe(d.Seconds())
}

// ObserveAttempt records how an attempt ended: an Outcome, or "success"
func (m *Metrics) ObserveAttempt(outcome string) {
	m.AttemptsTotal.WithLabelValues(outcome).Inc()
}

// ObserveExecution records a sandbox execution result
func (m *Metrics) ObserveExecution(result models.ExecutionResult) {
	switch {
	case result.Success:
		m.SandboxExecutionsTotal.WithLabelValues(SandboxSuccess).Inc()
	case result.TimedOut:
		m.SandboxExecutionsTotal.WithLabelValues(SandboxTimeout).Inc()
	default:
		m.SandboxExecutionsTotal.WithLabelValues(SandboxFailure).Inc()
	}
}
