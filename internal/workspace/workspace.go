// Package workspace manages checkout directories for builds pulling content
// from a remote repository.
//
// Ephemeral mode creates timestamped directories (blogbuilder-20240115-091230)
// that are removed after a one-shot build. Persistent mode uses a fixed path
// that survives across builds so repeated daemon rebuilds can reuse the
// existing checkout.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nbarraud/blogbuilder/internal/logfields"
)

// Manager owns one workspace directory.
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
}

// NewManager creates a manager producing ephemeral timestamped directories.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a manager bound to a fixed directory
// (baseDir/name) that Cleanup leaves in place.
func NewPersistentManager(baseDir, name string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if name == "" {
		name = "working"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, name),
		persistent: true,
	}
}

// Create ensures the workspace directory exists. Ephemeral managers mint a
// fresh timestamped directory on every call.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("create persistent workspace: %w", err)
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	stamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(m.baseDir, fmt.Sprintf("blogbuilder-%s", stamp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, empty before Create.
func (m *Manager) Path() string { return m.dir }

// Cleanup removes an ephemeral workspace. Persistent workspaces are kept so
// the next build can update the existing checkout.
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.persistent {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("cleanup workspace: %w", err)
	}
	slog.Debug("Removed workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}
