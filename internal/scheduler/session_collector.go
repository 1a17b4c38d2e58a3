package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

const (
	// DefaultSessionIdleTTL is the idle time after which a view session is dropped
	DefaultSessionIdleTTL = 24 * time.Hour
)

// SessionTable is what the collector prunes.
type SessionTable interface {
	Collect(ttl time.Duration) int
	Len() int
}

// SessionCollector periodically drops idle view sessions
type SessionCollector struct {
	sessions  SessionTable
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	clock     clock.Clock
	stopCh    chan struct{}
	stopOnce  sync.Once
	started   bool
	done      chan struct{}
}

// NewSessionCollector creates a new session collector
func NewSessionCollector(
	sessions SessionTable,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
	clk clock.Clock,
) *SessionCollector {
	if threshold == 0 {
		threshold = DefaultSessionIdleTTL
	}
	if clk == nil {
		clk = clock.WallClock
	}

	return &SessionCollector{
		sessions:  sessions,
		logger:    logger.Component(log, "session_collector"),
		interval:  interval,
		threshold: threshold,
		clock:     clk,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start begins the periodic collection
func (sc *SessionCollector) Start(ctx context.Context) {
	sc.started = true
	go func() {
		defer close(sc.done)
		for {
			select {
			case <-sc.clock.After(sc.interval):
				sc.Collect()
			case <-sc.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the collector and waits for its goroutine
func (sc *SessionCollector) Stop() {
	sc.stopOnce.Do(func() { close(sc.stopCh) })
	if sc.started {
		<-sc.done
	}
}

// Collect drops sessions idle for longer than the threshold
func (sc *SessionCollector) Collect() int {
	removed := sc.sessions.Collect(sc.threshold)
	if removed > 0 {
		sc.logger.Info("idle view sessions collected",
			logger.Int("removed", removed),
			logger.Int("remaining", sc.sessions.Len()))
	} else {
		sc.logger.Debug("no idle view sessions to collect")
	}
	return removed
}
