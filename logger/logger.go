package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/isdmx/nexus/config"
)

// ServiceName is attached to every log entry
const ServiceName = "nexus"

// NewFromConfig builds the logger described by the logging section
func NewFromConfig(cfg *config.Config) (*zap.Logger, error) {
	return New(cfg.Logging.Mode, cfg.Logging.Level)
}

// New builds a zap logger for mode ("production" or "development") at the given level
func New(mode, level string) (*zap.Logger, error) {
	zcfg, err := baseConfig(mode)
	if err != nil {
		return nil, err
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid logging level: %s, must be one of 'debug', 'info', 'warn', 'error', 'dpanic', 'panic', 'fatal'", level)
	}
	zcfg.Level = zap.NewAtomicLevelAt(lvl)

	// stdout belongs to the MCP stdio transport
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	zcfg.InitialFields = map[string]any{"service": ServiceName}

	return zcfg.Build()
}

func baseConfig(mode string) (zap.Config, error) {
	switch mode {
	case "development":
		zcfg := zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zcfg, nil
	case "production":
		zcfg := zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "timestamp"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zcfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		return zcfg, nil
	default:
		return zap.Config{}, fmt.Errorf("invalid logging mode: %s, must be 'production' or 'development'", mode)
	}
}

// ForRun scopes a logger to a single orchestration run
func ForRun(log *zap.Logger, runID string) *zap.Logger {
	return log.With(zap.String("run_id", runID))
}
