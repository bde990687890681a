package sandbox

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/isdmx/nexus/models"
)

// LocalExecutor runs the artifact as a plain child process of the server.
// Isolation is limited to a separate OS process with its own working directory: the child
// inherits the server's user, environment, network and filesystem access.
type LocalExecutor struct {
	logger    *zap.Logger
	config    *Config
	arena     *Arena
	cmdRunner CommandRunner
	fs        FileSystem
}

// LocalExecutorOption defines a functional option for LocalExecutor
type LocalExecutorOption func(*LocalExecutor)

// WithLocalCommandRunner sets the CommandRunner for LocalExecutor
func WithLocalCommandRunner(cmdRunner CommandRunner) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.cmdRunner = cmdRunner
	}
}

// WithLocalFileSystem sets the FileSystem for LocalExecutor
func WithLocalFileSystem(fs FileSystem) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.fs = fs
	}
}

// NewLocalExecutor creates a new LocalExecutor with default implementations and optional interfaces
func NewLocalExecutor(logger *zap.Logger, config *Config, opts ...LocalExecutorOption) *LocalExecutor {
	executor := &LocalExecutor{
		logger:    logger,
		config:    config,
		cmdRunner: RealCommandRunner{MaxOutputBytes: config.MaxOutputBytes},
		fs:        RealFileSystem{},
	}

	for _, opt := range opts {
		opt(executor)
	}

	executor.arena = NewArena(logger, executor.fs, config.WorkspaceRoot, 0)

	return executor
}

// Execute writes the code into a fresh unit and runs it with the configured interpreter
func (l *LocalExecutor) Execute(ctx context.Context, req ExecuteRequest) models.ExecutionResult {
	start := time.Now()

	unit, err := l.arena.Acquire(req.RunID)
	if err != nil {
		return systemError(err, start)
	}
	defer unit.Release()

	if writeErr := l.fs.WriteFile(unit.ArtifactPath(), []byte(req.Code), FilePermission); writeErr != nil {
		return systemError(fmt.Errorf("failed to write code artifact: %w", writeErr), start)
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	stdout, stderr, exitCode, runErr := l.cmdRunner.RunCommand(ctxWithTimeout, unit.Dir, []string{l.config.Interpreter, ArtifactName})

	result := classify(ctx, ctxWithTimeout, l.config.Timeout, processOutput{
		stdout:   stdout,
		stderr:   stderr,
		exitCode: exitCode,
		err:      runErr,
	}, start)

	l.logger.Info("local execution finished",
		zap.String("run_id", req.RunID),
		zap.String("unit", unit.Dir),
		zap.Bool("success", result.Success),
		zap.Bool("timed_out", result.TimedOut),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))

	return result
}
