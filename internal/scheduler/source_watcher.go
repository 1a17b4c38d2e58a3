package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/juju/clock"

	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

// DefaultWatchSettle is how long a catalog file must stay quiet after a
// change before a reload is requested.
const DefaultWatchSettle = 500 * time.Millisecond

// SourceWatcher requests a forced reload when the catalog file changes on
// disk. The parent directory is watched so editors that save through a
// rename are still seen.
type SourceWatcher struct {
	path    string
	trigger chan<- struct{}
	logger  logger.Logger
	settle  time.Duration
	clock   clock.Clock

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	pending  clock.Timer
	stopCh   chan struct{}
	stopOnce sync.Once
	started  bool
	done     chan struct{}
}

// NewSourceWatcher watches path and sends on trigger after every settled
// change. Sends never block: a reload already queued absorbs the event.
func NewSourceWatcher(path string, trigger chan<- struct{}, log logger.Logger, settle time.Duration, clk clock.Clock) (*SourceWatcher, error) {
	if settle <= 0 {
		settle = DefaultWatchSettle
	}
	if clk == nil {
		clk = clock.WallClock
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &SourceWatcher{
		path:    abs,
		trigger: trigger,
		logger:  logger.Component(log, "source_watcher"),
		settle:  settle,
		clock:   clk,
		watcher: w,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Start runs the event loop in the background.
func (sw *SourceWatcher) Start(ctx context.Context) {
	sw.started = true
	go func() {
		defer close(sw.done)
		for {
			select {
			case ev, ok := <-sw.watcher.Events:
				if !ok {
					return
				}
				sw.handle(ev)
			case err, ok := <-sw.watcher.Errors:
				if !ok {
					return
				}
				sw.logger.Warn("watch error", logger.Error(err))
			case <-sw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the event loop, drops a pending reload request and releases
// the watcher.
func (sw *SourceWatcher) Stop() {
	sw.stopOnce.Do(func() {
		close(sw.stopCh)
		if sw.started {
			<-sw.done
		}

		sw.mu.Lock()
		if sw.pending != nil {
			sw.pending.Stop()
			sw.pending = nil
		}
		sw.mu.Unlock()

		if err := sw.watcher.Close(); err != nil {
			sw.logger.Warn("failed to close watcher", logger.Error(err))
		}
	})
}

func (sw *SourceWatcher) handle(ev fsnotify.Event) {
	if filepath.Clean(ev.Name) != sw.path {
		return
	}
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	sw.logger.Debug("catalog file changed", logger.String("op", ev.Op.String()))

	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.pending != nil {
		sw.pending.Reset(sw.settle)
		return
	}
	sw.pending = sw.clock.AfterFunc(sw.settle, sw.fire)
}

func (sw *SourceWatcher) fire() {
	sw.mu.Lock()
	sw.pending = nil
	sw.mu.Unlock()

	select {
	case sw.trigger <- struct{}{}:
		sw.logger.Info("catalog file changed, reload requested", logger.String("path", sw.path))
	default:
	}
}
