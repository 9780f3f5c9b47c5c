package file

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"peopledesk/pkg/logger"
)

// DefaultDebounce is how long a dataset must stay quiet before a change is
// reported. Editors often write a file in several steps.
const DefaultDebounce = 500 * time.Millisecond

// ChangeFunc is called with the screen whose dataset changed.
type ChangeFunc func(ctx context.Context, screen string)

// Watcher reports dataset changes in a directory.
type Watcher struct {
	dir      string
	onChange ChangeFunc
	log      *logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]time.Time
}

// NewWatcher returns a watcher for dir. Call Run to start it.
func NewWatcher(dir string, onChange ChangeFunc, log *logger.Logger) *Watcher {
	if log == nil {
		log = logger.Nop()
	}
	return &Watcher{
		dir:      dir,
		onChange: onChange,
		log:      log.WithComponent("dataset-watcher"),
		debounce: DefaultDebounce,
		pending:  make(map[string]time.Time),
	}
}

// WithDebounce overrides the quiet period.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	w.debounce = d
	return w
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = fw.Close() }()

	if err := fw.Add(w.dir); err != nil {
		return err
	}
	w.log.Infow("watching datasets", "dir", w.dir)

	interval := w.debounce / 5
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	tick := time.NewTicker(interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.observe(event, time.Now())

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("watcher error", "error", err)

		case now := <-tick.C:
			for _, screen := range w.due(now) {
				w.log.Infow("dataset changed", "screen", screen)
				w.onChange(ctx, screen)
			}
		}
	}
}

// observe records a change for supported dataset files. Chmod-only events
// are ignored.
func (w *Watcher) observe(event fsnotify.Event, at time.Time) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if _, err := ParseFormat(filepath.Ext(event.Name)); err != nil {
		return
	}

	w.mu.Lock()
	w.pending[ScreenOf(event.Name)] = at
	w.mu.Unlock()
}

// due returns and forgets the screens that have been quiet long enough.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	var out []string
	for screen, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			out = append(out, screen)
			delete(w.pending, screen)
		}
	}
	return out
}
