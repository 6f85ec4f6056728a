package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/arloliu/carve/errs"
	"github.com/fsnotify/fsnotify"
)

// Event reports that the watched document changed.
type Event struct {
	Path string
	Op   fsnotify.Op
}

// Watcher reports changes to one document.
//
// Firefox replaces its session files by writing a temporary file and renaming
// it over the old one, so the watcher observes the parent directory and
// filters events by name. Bursts of events within the debounce interval are
// coalesced into one.
type Watcher struct {
	fsw      *fsnotify.Watcher
	target   string
	debounce time.Duration
	logger   *slog.Logger

	Events chan Event
}

// NewWatcher creates a Watcher for the file called name.
func NewWatcher(name string, debounce time.Duration, logger *slog.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrSourceUnavailable, name, err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("%w: watch %s: %w", errs.ErrSourceUnavailable, filepath.Dir(abs), err)
	}

	return &Watcher{
		fsw:      fsw,
		target:   abs,
		debounce: debounce,
		logger:   logger,
		Events:   make(chan Event, 1),
	}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.target
}

// Start forwards change events until ctx is cancelled. It closes Events on
// return.
func (w *Watcher) Start(ctx context.Context) {
	defer w.fsw.Close()
	defer close(w.Events)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending Event
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}

			pending = Event{Path: w.target, Op: ev.Op}
			if w.debounce <= 0 {
				w.emit(ctx, pending)
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.emit(ctx, pending)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", slog.Any("error", err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.target {
		return false
	}

	return ev.Op&(fsnotify.Write|fsnotify.Create) != 0
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.Events <- ev:
	case <-ctx.Done():
	}
}
