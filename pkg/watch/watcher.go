// Package watch re-runs an analysis when files under a project change.
package watch

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/fsnotify/fsnotify"
	"github.com/panbanda/orphans/pkg/config"
)

// DefaultDebounce is how long a path must stay quiet before it is reported.
const DefaultDebounce = 500 * time.Millisecond

// Watcher monitors the source tree and project config files for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	config    *config.Config
	debounce  time.Duration
	root      string
	status    io.Writer
	callback  func(paths []string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// NewWatcher creates a watcher for the project at root.
func NewWatcher(root string, cfg *config.Config, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		config:    cfg,
		debounce:  debounce,
		root:      root,
		status:    os.Stderr,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets the function called with the changed paths, sorted, once
// they have settled. Calls never overlap.
func (w *Watcher) SetCallback(cb func(paths []string)) {
	w.callback = cb
}

// SetStatusWriter redirects the watcher's status lines.
func (w *Watcher) SetStatusWriter(s io.Writer) {
	w.status = s
}

// Start watches until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	// Project configs live at the root; only the source tree is watched recursively.
	if err := w.fsWatcher.Add(w.root); err != nil {
		return err
	}
	if err := w.addTree(filepath.Join(w.root, w.config.Source.Root)); err != nil {
		return err
	}

	fmt.Fprintln(w.status, color.CyanString("Watching for changes in %s...", w.root))
	fmt.Fprintln(w.status, color.CyanString("Press Ctrl+C to stop"))

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(w.status, color.RedString("Watch error: %v", err))
		}
	}
}

// addTree watches dir and every non-excluded directory below it.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && w.config.IsExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	path := event.Name

	// New directories may already hold files by the time they are watched.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if w.inSource(path) && !w.excluded(path) {
				_ = w.addTree(path)
				w.mark(path)
			}
			return
		}
	}

	if !w.relevant(path) {
		return
	}
	w.mark(path)
}

func (w *Watcher) mark(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// relevant reports whether a change to path can alter the analysis.
func (w *Watcher) relevant(path string) bool {
	if filepath.Dir(path) == filepath.Clean(w.root) {
		return slices.Contains(w.config.Resolve.ProjectConfigs, filepath.Base(path))
	}
	return w.inSource(path) && !w.excluded(path) && w.config.HasAllowedExtension(filepath.ToSlash(path))
}

func (w *Watcher) inSource(path string) bool {
	src := filepath.Join(w.root, w.config.Source.Root)
	rel, err := filepath.Rel(src, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// excluded reports whether any directory between the root and path is excluded.
func (w *Watcher) excluded(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return true
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	for _, dir := range parts[:len(parts)-1] {
		if w.config.IsExcludedDir(dir) {
			return true
		}
	}
	return w.config.IsExcludedDir(parts[len(parts)-1]) && isDir(path)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reports the paths that have been quiet for the debounce period.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, lastMod := range w.pending {
		if now.Sub(lastMod) >= w.debounce {
			ready = append(ready, path)
		}
	}
	for _, path := range ready {
		delete(w.pending, path)
	}
	w.mu.Unlock()

	if len(ready) == 0 || w.callback == nil {
		return
	}
	slices.Sort(ready)
	w.callback(ready)
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// WatchedDirs returns the directories being watched.
func (w *Watcher) WatchedDirs() []string {
	return w.fsWatcher.WatchList()
}
