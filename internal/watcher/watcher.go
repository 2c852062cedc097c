// Package watcher subscribes to filesystem notifications on the source
// root and routes debounced per-release refresh or deletion requests
// into the synchronizer (spec §4.6).
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"musicd/internal/ident"
	"musicd/internal/logger"
	"musicd/internal/repositories"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow bounds how long a burst of events on the same release
// directory is coalesced into a single refresh (spec §4.6: "≤ 200 ms").
const debounceWindow = 150 * time.Millisecond

// Synchronizer is the subset of synchronizer.Synchronizer the watcher
// drives. Declared locally to avoid watcher<->synchronizer import
// coupling beyond what's actually used.
type Synchronizer interface {
	SyncRelease(ctx context.Context, dirPath string) (string, error)
}

// Watcher watches sourceRoot recursively and feeds the synchronizer.
// Pending timers are bookkept the same way SchedulerService tracks jobs:
// a mutex-guarded map, here keyed by release directory rather than job
// name.
type Watcher struct {
	root    string
	sync    Synchronizer
	repos   repositories.Repository
	watcher *fsnotify.Watcher
	log     logger.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

func New(root string, sync Synchronizer, repos repositories.Repository) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		root:    root,
		sync:    sync,
		repos:   repos,
		watcher: fsw,
		log:     logger.New("watcher"),
		pending: make(map[string]*time.Timer),
	}, nil
}

// Run registers watches on every existing directory under the source
// root and blocks, routing events until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	log := w.log.Function("Run")

	if err := w.addTree(w.root); err != nil {
		return log.Err("failed to register initial watches", err)
	}
	log.Info("watching source root", "root", w.root)

	for {
		select {
		case <-ctx.Done():
			w.cancelAllPending()
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err.Error())
		}
	}
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && !isAuxiliaryDir(d.Name()) {
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	log := w.log.Function("handleEvent")

	releaseDir, ok := w.releaseDirFor(event.Name)
	if !ok {
		if filepath.Dir(event.Name) != w.root || isAuxiliaryDir(filepath.Base(event.Name)) {
			// Auxiliary directory or a path outside the root: ignored (spec §4.6).
			return
		}
		// A root-level entry is a release directory itself. A removal or
		// rename is routed as such; otherwise only directories are, and a
		// stray root-level file is ignored.
		if event.Op&(fsnotify.Remove|fsnotify.Rename) == 0 {
			if info, err := os.Stat(event.Name); err != nil || !info.IsDir() {
				return
			}
		}
		releaseDir = event.Name
	}

	switch {
	case event.Op&fsnotify.Remove != 0 || event.Op&fsnotify.Rename != 0:
		if releaseDir == event.Name {
			w.handleReleaseDirRemovedOrRenamed(ctx, event.Name)
			return
		}
		// A file inside a release directory disappeared or was renamed;
		// the release itself still needs a refresh.
		w.scheduleRefresh(releaseDir)

	case event.Op&(fsnotify.Create|fsnotify.Write) != 0:
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				log.Warn("failed to watch new directory", "path", event.Name, "error", err.Error())
			}
		}
		w.scheduleRefresh(releaseDir)
	}
}

// handleReleaseDirRemovedOrRenamed deletes the corresponding cache row
// when a release directory itself disappears. A rename that keeps the
// directory present on disk (just renamed in place) is handled as a
// refresh instead, since fsnotify delivers it as a Create on the new
// watch once addTree catches up; a rename that truly removes the old
// path falls through to the source-path-or-id delete here.
func (w *Watcher) handleReleaseDirRemovedOrRenamed(ctx context.Context, dirPath string) {
	log := w.log.Function("handleReleaseDirRemovedOrRenamed").With("dirPath", dirPath)

	w.cancelPending(dirPath)

	if _, err := os.Stat(dirPath); err == nil {
		// Still exists: this was a rename in place, not a deletion.
		w.scheduleRefresh(dirPath)
		return
	}

	if release, err := w.repos.Release.GetBySourcePath(ctx, dirPath); err == nil && release != nil {
		if err := w.repos.Release.DeleteByID(ctx, release.ID); err != nil {
			log.Warn("failed to delete release on directory removal", "error", err.Error())
		}
		return
	}

	if id, ok := ident.ParseIDFromDirname(filepath.Base(dirPath)); ok {
		if err := w.repos.Release.DeleteByID(ctx, id); err != nil {
			log.Warn("failed to delete release by parsed id", "id", id, "error", err.Error())
		}
	}
}

// scheduleRefresh debounces releaseDir: a new event resets the timer
// rather than queuing a second refresh.
func (w *Watcher) scheduleRefresh(releaseDir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[releaseDir]; ok {
		timer.Stop()
	}

	w.pending[releaseDir] = time.AfterFunc(debounceWindow, func() {
		w.mu.Lock()
		delete(w.pending, releaseDir)
		w.mu.Unlock()

		log := w.log.Function("scheduleRefresh").With("dirPath", releaseDir)
		if _, err := w.sync.SyncRelease(context.Background(), releaseDir); err != nil {
			log.Warn("refresh failed", "error", err.Error())
		}
	})
}

func (w *Watcher) cancelPending(releaseDir string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[releaseDir]; ok {
		timer.Stop()
		delete(w.pending, releaseDir)
	}
}

func (w *Watcher) cancelAllPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for dir, timer := range w.pending {
		timer.Stop()
		delete(w.pending, dir)
	}
}

// releaseDirFor maps an event path to the release directory it belongs
// to: the immediate child of root containing it. It returns ok=false for
// paths directly under root (stray files as well as the release
// directories themselves, which handleEvent resolves separately) and for
// auxiliary directories.
func (w *Watcher) releaseDirFor(path string) (string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}

	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 2 {
		// Directly under the source root: not inside any release directory.
		return "", false
	}
	if isAuxiliaryDir(parts[0]) {
		return "", false
	}

	return filepath.Join(w.root, parts[0]), true
}

func isAuxiliaryDir(name string) bool {
	return strings.HasPrefix(name, "!")
}
