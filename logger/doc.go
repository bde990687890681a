// Package logger provides structured logging capabilities.
//
// The logger package sets up and configures the application's logging
// system using zap. Entries go to stderr so that the MCP stdio transport
// keeps stdout to itself.
//
// Usage:
//
//	log, err := logger.New("production", "info")
//	if err != nil {
//	    panic(err)
//	}
//	runLog := logger.ForRun(log, runID)
//	runLog.Info("attempt started", zap.Int("attempt", 1))
package logger
