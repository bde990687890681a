package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"go.uber.org/zap"
)

var unsafeIDChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Arena hands out execution units: one fresh directory per execution, never shared
type Arena struct {
	logger   *zap.Logger
	fs       FileSystem
	root     string
	unitMode os.FileMode
}

// Unit is an exclusive location for a single execution
type Unit struct {
	Dir   string
	arena *Arena
}

// ArtifactPath is where the generated program lives inside the unit
func (u *Unit) ArtifactPath() string {
	return filepath.Join(u.Dir, ArtifactName)
}

// Release removes the unit and everything the program left behind
func (u *Unit) Release() {
	if err := u.arena.fs.RemoveAll(u.Dir); err != nil {
		u.arena.logger.Error("failed to remove execution unit", zap.String("path", u.Dir), zap.Error(err))
	}
}

// NewArena creates an arena rooted at root. An empty root means the OS temp directory.
// unitMode, when non-zero, is applied to each unit so container users can enter it.
func NewArena(logger *zap.Logger, fs FileSystem, root string, unitMode os.FileMode) *Arena {
	return &Arena{
		logger:   logger,
		fs:       fs,
		root:     root,
		unitMode: unitMode,
	}
}

// Acquire creates a new unit for runID. Two calls never return the same directory,
// even for the same run ID.
func (a *Arena) Acquire(runID string) (*Unit, error) {
	pattern := fmt.Sprintf("nexus-run-%s-*", unsafeIDChars.ReplaceAllString(runID, "_"))

	dir, err := a.fs.MkdirTemp(a.root, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to create execution unit: %w", err)
	}

	unit := &Unit{Dir: dir, arena: a}

	if a.unitMode != 0 {
		if err := a.fs.Chmod(dir, a.unitMode); err != nil {
			unit.Release()
			return nil, fmt.Errorf("failed to set execution unit permissions: %w", err)
		}
	}

	return unit, nil
}
