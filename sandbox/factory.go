package sandbox

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/isdmx/nexus/config"
)

// NewExecutor creates an appropriate sandbox executor based on the configuration
func NewExecutor(logger *zap.Logger, cfg *config.Config) (SandboxExecutor, error) {
	executorConfig := &Config{
		Timeout:        cfg.GetTimeout(),
		Interpreter:    cfg.Sandbox.Interpreter,
		Image:          cfg.Sandbox.Image,
		MemoryMB:       cfg.Sandbox.MemoryMB,
		NetworkEnabled: cfg.Sandbox.NetworkEnabled,
		WorkspaceRoot:  cfg.Sandbox.WorkspaceRoot,
		MaxOutputBytes: cfg.Sandbox.MaxOutputKB * BytesPerKB,
	}

	log := logger.Named("sandbox")

	switch cfg.Sandbox.Backend {
	case EngineDocker, EnginePodman:
		return NewContainerExecutor(log, cfg.Sandbox.Backend, executorConfig), nil
	case "local":
		if !cfg.Sandbox.EnableLocalBackend {
			return nil, fmt.Errorf("local backend is disabled, set sandbox.enable_local_backend to use it")
		}
		log.Warn("local sandbox backend in use: generated code runs as a plain child process with the server's privileges")
		return NewLocalExecutor(log, executorConfig), nil
	default:
		return nil, fmt.Errorf("unsupported backend: %s", cfg.Sandbox.Backend)
	}
}
