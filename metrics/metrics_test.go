package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdmx/nexus/models"
)

func TestMetrics(t *testing.T) {
	reg := NewRegistry()
	m := New(reg)

	m.ObserveRun(string(models.RunStatusSuccess), 2*time.Second)
	m.ObserveRun(string(models.RunStatusFailed), time.Second)
	m.ObserveAttempt(string(models.OutcomeSecurityRejected))
	m.ObserveAttempt(string(models.OutcomeSecurityRejected))
	m.ObserveExecution(models.ExecutionResult{Success: true})
	m.ObserveExecution(models.ExecutionResult{TimedOut: true})
	m.ObserveExecution(models.ExecutionResult{})
	m.ActiveRuns.Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues("SUCCESS")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.RunsTotal.WithLabelValues("FAILED")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.AttemptsTotal.WithLabelValues("security-rejected")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SandboxExecutionsTotal.WithLabelValues(SandboxSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SandboxExecutionsTotal.WithLabelValues(SandboxTimeout)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.SandboxExecutionsTotal.WithLabelValues(SandboxFailure)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ActiveRuns), 0)

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "nexus_run_duration_seconds")
	assert.Contains(t, names, "go_goroutines")
}

func TestNewRegistriesAreIndependent(t *testing.T) {
	assert.NotPanics(t, func() {
		New(NewRegistry())
		New(NewRegistry())
	})
}
