package daemon

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/nbarraud/blogbuilder/internal/logfields"
)

// Watcher watches content and template directories recursively and reports
// every relevant filesystem change on Events.
type Watcher struct {
	fsw    *fsnotify.Watcher
	events chan string // changed path
}

// NewWatcher creates a watcher over the given root directories. Nonexistent
// roots are skipped (a missing template override dir is normal).
func NewWatcher(roots ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{fsw: fsw, events: make(chan string, 64)}
	for _, root := range roots {
		if root == "" {
			continue
		}
		if err := w.addRecursive(root); err != nil {
			slog.Debug("Skipping watch root", logfields.Path(root), logfields.Error(err))
		}
	}
	return w, nil
}

// addRecursive registers root and every subdirectory, skipping hidden dirs.
func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// Events delivers changed paths.
func (w *Watcher) Events() <-chan string { return w.events }

// Run pumps fsnotify events until the context ends. New directories are added
// to the watch set as they appear.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if strings.HasPrefix(filepath.Base(ev.Name), ".") {
				continue
			}
			if ev.Op.Has(fsnotify.Create) {
				// New directory: extend the watch set so nested changes fire.
				if err := w.addRecursive(ev.Name); err == nil {
					slog.Debug("Watching new path", logfields.Path(ev.Name))
				}
			}
			if ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write) ||
				ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename) {
				select {
				case w.events <- ev.Name:
				default: // channel full, a rebuild is already pending
				}
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// Close releases the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
