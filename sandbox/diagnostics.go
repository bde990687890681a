package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdmx/nexus/models"
)

// TimeoutMessage is fed back to the generator when a program is killed at the time limit
func TimeoutMessage(limit time.Duration) string {
	return fmt.Sprintf("ERROR: Execution timed out (limit: %s) and the process was killed. "+
		"You likely have an infinite loop (e.g. while True) or a network request hanging without a timeout. "+
		"Make sure every loop terminates and ADD A TIMEOUT to every network call (e.g. requests.get(url, timeout=5)).",
		formatLimit(limit))
}

// LaunchErrorMessage describes a failure to start or supervise the process
func LaunchErrorMessage(err error) string {
	return fmt.Sprintf("System sandbox error: %v", err)
}

func formatLimit(d time.Duration) string {
	if d >= time.Second && d%time.Second == 0 {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return d.String()
}

// processOutput is what a backend observed while running the artifact
type processOutput struct {
	stdout   string
	stderr   string
	exitCode int
	err      error
}

// classify turns a finished process into an ExecutionResult.
// bounded is the context carrying the execution timeout, parent the caller's context.
func classify(parent, bounded context.Context, limit time.Duration, out processOutput, start time.Time) models.ExecutionResult {
	result := models.ExecutionResult{
		ExitCode: out.exitCode,
		Duration: time.Since(start),
	}

	switch {
	case parent.Err() != nil:
		result.Output = LaunchErrorMessage(fmt.Errorf("execution cancelled: %w", parent.Err()))
	case errors.Is(bounded.Err(), context.DeadlineExceeded):
		result.TimedOut = true
		result.ExitCode = -1
		result.Output = TimeoutMessage(limit)
	case out.err != nil:
		result.Output = LaunchErrorMessage(out.err)
	case out.exitCode == 0:
		result.Success = true
		result.Output = out.stdout
	default:
		result.Output = out.stderr
		if strings.TrimSpace(result.Output) == "" {
			result.Output = fmt.Sprintf("process exited with code %d and no error output", out.exitCode)
		}
	}

	return result
}

func systemError(err error, start time.Time) models.ExecutionResult {
	return models.ExecutionResult{
		ExitCode: -1,
		Output:   LaunchErrorMessage(err),
		Duration: time.Since(start),
	}
}
