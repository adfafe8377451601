package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/simplesite/internal/logfields"
	"git.home.luguber.info/inful/simplesite/internal/util/sets"
)

// DefaultDebounce is how long the watcher waits for a burst of changes to settle.
const DefaultDebounce = 300 * time.Millisecond

// BuildFunc performs one full build.
type BuildFunc func(ctx context.Context) error

// Options configures a Watcher.
type Options struct {
	// SourceDir is watched recursively.
	SourceDir string
	// Files outside or hidden inside SourceDir that also trigger rebuilds,
	// such as the localization table and the ignore file.
	Files []string
	// Debounce defaults to DefaultDebounce.
	Debounce time.Duration
	// Every schedules an additional periodic rebuild; zero disables it.
	Every  time.Duration
	Logger *slog.Logger
}

// Watcher runs builds in response to filesystem changes.
type Watcher struct {
	build    BuildFunc
	opts     Options
	logger   *slog.Logger
	files    sets.Set[string]
	requests chan struct{}
}

// New returns a Watcher that calls build.
func New(build BuildFunc, opts Options) *Watcher {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	files := sets.New[string]()
	for _, f := range opts.Files {
		if f == "" {
			continue
		}
		if abs, err := filepath.Abs(f); err == nil {
			files.Add(abs)
		}
	}
	return &Watcher{
		build:    build,
		opts:     opts,
		logger:   logger,
		files:    files,
		requests: make(chan struct{}, 1),
	}
}

// Run builds once, then rebuilds on every debounced change until ctx is done.
// Build failures are logged and do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	w.runBuild(ctx, "initial")

	fsw, err := w.setupFileWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = fsw.Close()
	}()

	if w.opts.Every > 0 {
		scheduler, err := NewScheduler(w.logger)
		if err != nil {
			return err
		}
		if _, err := scheduler.SchedulePeriodic(w.opts.Every, "periodic-rebuild", w.request); err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			if err := scheduler.Stop(); err != nil {
				w.logger.Warn("Scheduler shutdown failed", logfields.Error(err))
			}
		}()
	}

	trigger, stopDebounce := newDebouncer(w.opts.Debounce, w.request)
	defer stopDebounce()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.worker(ctx)
	}()

	w.logger.Info("Watching for changes", logfields.Source(w.opts.SourceDir))
	err = w.loop(ctx, fsw, trigger)
	wg.Wait()
	return err
}

// request asks the worker for a rebuild. Requests made while one is already
// pending are merged into it.
func (w *Watcher) request() {
	select {
	case w.requests <- struct{}{}:
	default:
	}
}

func (w *Watcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.requests:
			w.runBuild(ctx, "change")
		}
	}
}

func (w *Watcher) runBuild(ctx context.Context, reason string) {
	w.logger.Info("Rebuilding site", slog.String("reason", reason))
	if err := w.build(ctx); err != nil {
		w.logger.Warn("Rebuild failed", logfields.Error(err))
	}
}

func (w *Watcher) loop(ctx context.Context, fsw *fsnotify.Watcher, trigger func()) error {
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping watcher")
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(fsw, ev, trigger)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) setupFileWatcher() (*fsnotify.Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := w.addDirsRecursive(fsw, w.opts.SourceDir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	// Single files are watched through their directory so editors that
	// replace files by rename keep triggering.
	for f := range w.files {
		if err := fsw.Add(filepath.Dir(f)); err != nil {
			w.logger.Warn("Watch add failed", logfields.Path(f), logfields.Error(err))
		}
	}
	return fsw, nil
}

// handleFileEvent triggers a rebuild for relevant events and follows newly
// created directories.
func (w *Watcher) handleFileEvent(fsw *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if !w.relevant(ev.Name) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = w.addDirsRecursive(fsw, ev.Name)
		}
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

// relevant reports whether a change to path should cause a rebuild.
func (w *Watcher) relevant(path string) bool {
	abs, err := filepath.Abs(path)
	if err == nil && w.files.Has(abs) {
		return true
	}
	if !w.inSource(abs) {
		return false
	}
	return !shouldIgnoreEvent(path)
}

func (w *Watcher) inSource(abs string) bool {
	src, err := filepath.Abs(w.opts.SourceDir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(src, abs)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Watcher) addDirsRecursive(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := fsw.Add(path); err != nil {
				w.logger.Warn("Watch add failed", logfields.Directory(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// newDebouncer returns a trigger that calls fire once no further trigger
// arrived for delay, and a stop function cancelling any pending call.
func newDebouncer(delay time.Duration, fire func()) (trigger func(), stop func()) {
	var mu sync.Mutex
	var timer *time.Timer

	trigger = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, fire)
	}
	stop = func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
	}
	return trigger, stop
}

// shouldIgnoreEvent returns true for filesystem events that should not trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	// Hidden files, including editor lock files like .#name.
	if strings.HasPrefix(base, ".") {
		return true
	}

	// Editor temp/swap files
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db" || base == "4913"
}
