package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/isdmx/nexus/config"
)

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		mode    string
		level   string
		wantErr string
	}{
		{name: "Development", mode: "development", level: "debug"},
		{name: "Production", mode: "production", level: "info"},
		{name: "ProductionWarn", mode: "production", level: "warn"},
		{name: "UnknownMode", mode: "verbose", level: "info", wantErr: "invalid logging mode"},
		{name: "UnknownLevel", mode: "production", level: "loud", wantErr: "invalid logging level"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := New(tc.mode, tc.level)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, log.Core().Enabled(zap.ErrorLevel))
			_ = log.Sync()
		})
	}
}

func TestLevelIsApplied(t *testing.T) {
	log, err := New("production", "warn")
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.InfoLevel))
	assert.True(t, log.Core().Enabled(zap.WarnLevel))
}

func TestNewFromConfig(t *testing.T) {
	log, err := NewFromConfig(&config.Config{
		Logging: config.LoggingConfig{Mode: "development", Level: "debug"},
	})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zap.DebugLevel))

	_, err = NewFromConfig(&config.Config{
		Logging: config.LoggingConfig{Mode: "", Level: "info"},
	})
	assert.Error(t, err)
}

func TestForRun(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	ForRun(zap.New(core), "run-123").Info("attempt started")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "attempt started", entry.Message)
	assert.Equal(t, "run-123", entry.ContextMap()["run_id"])
}
