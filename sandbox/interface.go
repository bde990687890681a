package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/isdmx/nexus/models"
)

// ExecuteRequest represents the parameters for code execution
type ExecuteRequest struct {
	// RunID keys the execution unit so concurrent runs never share a path
	RunID string
	Code  string
}

// SandboxExecutor defines the interface for sandbox execution.
// Every failure, including launch errors, is reported through the result.
type SandboxExecutor interface {
	Execute(ctx context.Context, req ExecuteRequest) models.ExecutionResult
}

// Config holds the settings shared by all executors
type Config struct {
	Timeout        time.Duration
	Interpreter    string
	Image          string
	MemoryMB       int
	NetworkEnabled bool
	WorkspaceRoot  string
	MaxOutputBytes int
}

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, dir string, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct {
	// MaxOutputBytes caps each captured stream. Zero means unlimited.
	MaxOutputBytes int
}

// RunCommand executes the given command with arguments.
// A non-nil error means the process could not be started or waited for; a non-zero exit is not an error.
func (r RealCommandRunner) RunCommand(ctx context.Context, dir string, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Running generated code is the purpose of the sandbox
	cmd.Dir = dir
	// The program and everything it spawns share one process group, killed as a unit
	isolateProcessGroup(cmd)
	cmd.WaitDelay = WaitDelay

	stdoutBuf := newCappedBuffer(r.MaxOutputBytes)
	stderrBuf := newCappedBuffer(r.MaxOutputBytes)
	cmd.Stdout = stdoutBuf
	cmd.Stderr = stderrBuf

	err = cmd.Run()

	// Background children that detached from the pipes outlive a clean exit otherwise
	_ = killProcessGroup(cmd)

	if err != nil {
		var exitError *exec.ExitError
		if !errors.As(err, &exitError) {
			return stdoutBuf.String(), stderrBuf.String(), -1, err
		}
		return stdoutBuf.String(), stderrBuf.String(), exitError.ExitCode(), nil
	}

	return stdoutBuf.String(), stderrBuf.String(), 0, nil
}

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	Chmod(name string, mode os.FileMode) error
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) Chmod(name string, mode os.FileMode) error {
	return os.Chmod(name, mode)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// File permission constants
const (
	FilePermission       = 0o600
	SharedDirPermission  = 0o755
	SharedFilePermission = 0o644
	BytesPerKB           = 1024
)

// ArtifactName is the file the generated program is written to inside its unit
const ArtifactName = "solution.py"

// WaitDelay bounds how long a killed process may keep its output pipes open
const WaitDelay = 2 * time.Second

// cappedBuffer keeps at most limit bytes and remembers whether it dropped any
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	if c.limit <= 0 {
		return c.buf.Write(p)
	}

	remaining := c.limit - c.buf.Len()
	switch {
	case remaining <= 0:
		c.truncated = c.truncated || len(p) > 0
	case len(p) > remaining:
		c.buf.Write(p[:remaining])
		c.truncated = true
	default:
		c.buf.Write(p)
	}

	// Report everything as written so the child is never blocked on a full pipe
	return len(p), nil
}

func (c *cappedBuffer) String() string {
	if c.truncated {
		return c.buf.String() + fmt.Sprintf("\n[output truncated at %d bytes]", c.limit)
	}
	return c.buf.String()
}
