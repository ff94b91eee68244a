// Package watch reruns a callback when files under a scan root change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ludo-technologies/vibescan/internal/logging"
	"github.com/ludo-technologies/vibescan/internal/walker"
)

// DefaultDebounce is the quiet period before a batch of changes is delivered
const DefaultDebounce = 300 * time.Millisecond

// Options controls a Watcher
type Options struct {
	// Debounce is the quiet period after the last event, DefaultDebounce when zero
	Debounce time.Duration

	// Matcher decides which directories are watched and which files count as
	// changes; nil applies only the built-in ignore rules
	Matcher *walker.Matcher
}

// Watcher batches file system events under a root
type Watcher struct {
	root     string
	debounce time.Duration
	matcher  *walker.Matcher
	logger   *logging.Logger
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	ready   chan struct{}
}

// New creates a watcher over root. The directory tree is registered by Run.
func New(root string, opts Options, logger *logging.Logger) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving watch root: %w", err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Matcher == nil {
		opts.Matcher, err = walker.NewMatcher(nil, nil, "")
		if err != nil {
			return nil, err
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		root:     absRoot,
		debounce: opts.Debounce,
		matcher:  opts.Matcher,
		logger:   logger,
		fsw:      fsw,
		pending:  make(map[string]struct{}),
		ready:    make(chan struct{}, 1),
	}, nil
}

// Run watches until ctx is done, calling onChange with the sorted relative paths
// changed since the previous call. Calls never overlap; events arriving while
// onChange runs are delivered in the next batch. Run closes the watcher on return.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	defer w.close()

	if err := w.addWatches(w.root); err != nil {
		return fmt.Errorf("watching %s: %w", w.root, err)
	}
	w.logger.Infof("watching %s for changes", w.root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("file watcher error: %v", err)

		case <-w.ready:
			if changed := w.drain(); len(changed) > 0 {
				onChange(ctx, changed)
			}
		}
	}
}

// addWatches registers dir and every non-ignored directory below it
func (w *Watcher) addWatches(dir string) error {
	visited := make(map[string]bool)
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel := w.rel(path); rel != "." && w.matcher.SkipDir(rel) {
			return filepath.SkipDir
		}

		// Symlinked directories may form cycles
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || visited[resolved] {
			return filepath.SkipDir
		}
		visited[resolved] = true

		if err := w.fsw.Add(path); err != nil {
			w.logger.Warnf("cannot watch %s: %v", path, err)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	rel := w.rel(event.Name)
	if rel == "." || rel == "" {
		return
	}

	if event.Op&fsnotify.Create != 0 && isDir(event.Name) {
		if w.matcher.SkipDir(rel) {
			return
		}
		if err := w.addWatches(event.Name); err != nil {
			w.logger.Warnf("cannot watch new directory %s: %v", rel, err)
		}
		w.add(rel)
		return
	}
	if w.matcher.SkipFile(rel) {
		return
	}
	w.logger.Debugf("change detected: %s %s", event.Op, rel)
	w.add(rel)
}

// add records a change and restarts the quiet period
func (w *Watcher) add(rel string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[rel] = struct{}{}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.signal)
}

func (w *Watcher) signal() {
	select {
	case w.ready <- struct{}{}:
	default:
	}
}

// drain returns and clears the pending changes
func (w *Watcher) drain() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	changed := make([]string, 0, len(w.pending))
	for rel := range w.pending {
		changed = append(changed, rel)
	}
	clear(w.pending)
	sort.Strings(changed)
	return changed
}

func (w *Watcher) close() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	if err := w.fsw.Close(); err != nil {
		w.logger.Warnf("closing file watcher: %v", err)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return ""
	}
	return filepath.ToSlash(rel)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
