package sandbox

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/isdmx/nexus/models"
)

// Supported container engines
const (
	EngineDocker = "docker"
	EnginePodman = "podman"
)

const (
	containerWorkdir = "/workdir"
	cleanupTimeout   = 10 * time.Second
)

// ContainerExecutor runs the artifact inside a throwaway Docker or Podman container
type ContainerExecutor struct {
	logger    *zap.Logger
	engine    string
	config    *Config
	arena     *Arena
	cmdRunner CommandRunner
	fs        FileSystem
}

// ContainerExecutorOption defines a functional option for ContainerExecutor
type ContainerExecutorOption func(*ContainerExecutor)

// WithContainerCommandRunner sets the CommandRunner for ContainerExecutor
func WithContainerCommandRunner(cmdRunner CommandRunner) ContainerExecutorOption {
	return func(c *ContainerExecutor) {
		c.cmdRunner = cmdRunner
	}
}

// WithContainerFileSystem sets the FileSystem for ContainerExecutor
func WithContainerFileSystem(fs FileSystem) ContainerExecutorOption {
	return func(c *ContainerExecutor) {
		c.fs = fs
	}
}

// NewContainerExecutor creates a new ContainerExecutor for engine ("docker" or "podman")
func NewContainerExecutor(logger *zap.Logger, engine string, config *Config, opts ...ContainerExecutorOption) *ContainerExecutor {
	executor := &ContainerExecutor{
		logger:    logger,
		engine:    engine,
		config:    config,
		cmdRunner: RealCommandRunner{MaxOutputBytes: config.MaxOutputBytes},
		fs:        RealFileSystem{},
	}

	for _, opt := range opts {
		opt(executor)
	}

	// The container runs as nobody and must be able to enter the unit
	executor.arena = NewArena(logger, executor.fs, config.WorkspaceRoot, SharedDirPermission)

	return executor
}

// Execute runs the code in a container with the unit mounted as its working directory
func (c *ContainerExecutor) Execute(ctx context.Context, req ExecuteRequest) models.ExecutionResult {
	start := time.Now()

	unit, err := c.arena.Acquire(req.RunID)
	if err != nil {
		return systemError(err, start)
	}
	defer unit.Release()

	if writeErr := c.fs.WriteFile(unit.ArtifactPath(), []byte(req.Code), SharedFilePermission); writeErr != nil {
		return systemError(fmt.Errorf("failed to write code artifact: %w", writeErr), start)
	}

	containerName := fmt.Sprintf("nexus-%s-%s", unsafeIDChars.ReplaceAllString(req.RunID, "_"),
		strconv.FormatInt(time.Now().UnixNano(), 36))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	stdout, stderr, exitCode, runErr := c.cmdRunner.RunCommand(ctxWithTimeout, "", c.runArgs(containerName, unit.Dir))

	// Killing the CLI client does not stop the container
	if ctxWithTimeout.Err() != nil {
		c.removeContainer(containerName)
	}

	result := classify(ctx, ctxWithTimeout, c.config.Timeout, processOutput{
		stdout:   stdout,
		stderr:   stderr,
		exitCode: exitCode,
		err:      runErr,
	}, start)

	c.logger.Info("container execution finished",
		zap.String("engine", c.engine),
		zap.String("run_id", req.RunID),
		zap.String("container", containerName),
		zap.Bool("success", result.Success),
		zap.Bool("timed_out", result.TimedOut),
		zap.Int("exit_code", result.ExitCode),
		zap.Duration("duration", result.Duration))

	return result
}

// runArgs builds the run command with security restrictions
func (c *ContainerExecutor) runArgs(containerName, unitDir string) []string {
	network := "none"
	if c.config.NetworkEnabled {
		network = "bridge"
	}

	return []string{
		c.engine, "run",
		"--name", containerName,
		"--rm",
		"-v", fmt.Sprintf("%s:%s", unitDir, containerWorkdir),
		"--workdir", containerWorkdir,
		"--memory", fmt.Sprintf("%dm", c.config.MemoryMB),
		"--network", network,
		"--pids-limit", "128",
		"--read-only",
		"--tmpfs", "/tmp",
		"--security-opt", "no-new-privileges:true",
		"--cap-drop", "ALL",
		"--user", "nobody",
		c.config.Image,
		c.config.Interpreter, ArtifactName,
	}
}

func (c *ContainerExecutor) removeContainer(containerName string) {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	_, stderr, exitCode, err := c.cmdRunner.RunCommand(ctx, "", []string{c.engine, "rm", "-f", containerName})
	if err != nil || exitCode != 0 {
		c.logger.Warn("failed to remove container after timeout",
			zap.String("container", containerName),
			zap.String("stderr", stderr),
			zap.Error(err))
	}
}
