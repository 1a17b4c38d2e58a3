package catalog

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/juju/clock"
	"github.com/juju/retry"
	"golang.org/x/sync/singleflight"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

// State is the loader lifecycle: Idle -> Fetching -> Succeeded | Failed.
type State string

const (
	StateIdle      State = "idle"
	StateFetching  State = "fetching"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// SnapshotCache keeps the last classified catalog with the time it was
// saved. ok is false on a miss; err is reserved for backend failures.
type SnapshotCache interface {
	LoadSnapshot(ctx context.Context) (data []byte, savedAt time.Time, ok bool, err error)
	SaveSnapshot(ctx context.Context, data []byte, savedAt time.Time) error
	ClearSnapshot(ctx context.Context) error
}

// Options tunes retries, cache expiry and classification.
type Options struct {
	Attempts   int           // total fetch attempts (default 3)
	Delay      time.Duration // wait before the 2nd attempt (default 1s)
	Multiplier int           // backoff factor between waits (default 2)
	CacheTTL   time.Duration // snapshot expiry (default 24h)
	// LoadTimeout bounds one shared load, which outlives the caller that
	// started it (default 2m).
	LoadTimeout time.Duration
	Thresholds  domain.Thresholds
	Location    *time.Location // zone deciding what "today" is
	Clock       clock.Clock
}

func (o *Options) withDefaults() {
	if o.Attempts <= 0 {
		o.Attempts = 3
	}
	if o.Delay <= 0 {
		o.Delay = time.Second
	}
	if o.Multiplier <= 0 {
		o.Multiplier = 2
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = 24 * time.Hour
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = 2 * time.Minute
	}
	if o.Thresholds == (domain.Thresholds{}) {
		o.Thresholds = domain.DefaultThresholds()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.Clock == nil {
		o.Clock = clock.WallClock
	}
}

// Loader produces a classified catalog from the cache or the source.
type Loader struct {
	fetcher Fetcher
	probe   ConnectivityProbe
	cache   SnapshotCache
	logger  logger.Logger
	opts    Options

	group singleflight.Group

	mu      sync.RWMutex
	state   State
	lastErr error
	loaded  time.Time
}

// NewLoader creates a loader. cache may be nil, which disables caching.
func NewLoader(fetcher Fetcher, probe ConnectivityProbe, cache SnapshotCache, log logger.Logger, opts Options) *Loader {
	opts.withDefaults()
	if probe == nil {
		probe = AlwaysOnline
	}
	return &Loader{
		fetcher: fetcher,
		probe:   probe,
		cache:   cache,
		logger:  logger.Component(log, "catalog_loader"),
		opts:    opts,
		state:   StateIdle,
	}
}

// Load returns a fresh cached snapshot when there is one, and fetches the
// source otherwise.
func (l *Loader) Load(ctx context.Context) (*domain.Catalog, error) {
	return l.do(ctx, "load", true)
}

// Refresh bypasses the cache and always fetches the source.
func (l *Loader) Refresh(ctx context.Context) (*domain.Catalog, error) {
	return l.do(ctx, "refresh", false)
}

// State reports where the loader is in its lifecycle, with the error of
// the last failed load.
func (l *Loader) State() (State, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state, l.lastErr
}

// LastSuccess returns when a catalog was last produced (zero if never).
func (l *Loader) LastSuccess() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

func (l *Loader) do(ctx context.Context, key string, useCache bool) (*domain.Catalog, error) {
	// The load is shared by every caller that joins it, so it must not
	// die with the first one's context.
	ch := l.group.DoChan(key, func() (any, error) {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.LoadTimeout)
		defer cancel()
		return l.load(lctx, useCache)
	})

	select {
	case <-ctx.Done():
		return nil, asLoadError(ctx.Err())
	case res := <-ch:
		if res.Shared {
			l.logger.Debug("joined in-flight catalog load", logger.String("mode", key))
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Catalog), nil
	}
}

func (l *Loader) load(ctx context.Context, useCache bool) (*domain.Catalog, error) {
	l.setState(StateFetching, nil)

	if !l.probe.Online(ctx) {
		err := &LoadError{Kind: KindOffline}
		l.logger.Warn("catalog source unreachable, not loading")
		l.setState(StateFailed, err)
		return nil, err
	}

	now := l.opts.Clock.Now()
	today := domain.Today(now, l.opts.Location)

	if useCache {
		if c, ok := l.fromCache(ctx, now, today); ok {
			l.setState(StateSucceeded, nil)
			return c, nil
		}
	}

	raw, err := l.fetchWithRetry(ctx)
	if err != nil {
		l.logger.Error("catalog load failed",
			logger.String("kind", err.Kind.String()),
			logger.Error(err))
		l.setState(StateFailed, err)
		return nil, err
	}

	c := domain.ClassifyCatalog(raw, today, l.opts.Thresholds)
	l.toCache(ctx, c)

	l.logger.Info("catalog loaded",
		logger.Int("services", len(c.Services)),
		logger.String("last_updated", c.LastUpdated))
	l.setState(StateSucceeded, nil)
	return c, nil
}

// fromCache returns the cached snapshot when it is younger than the TTL.
// Expired or unreadable snapshots are cleared.
func (l *Loader) fromCache(ctx context.Context, now, today time.Time) (*domain.Catalog, bool) {
	if l.cache == nil {
		return nil, false
	}

	data, savedAt, ok, err := l.cache.LoadSnapshot(ctx)
	if err != nil {
		l.logger.Warn("catalog cache unavailable", logger.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	age := now.Sub(savedAt)
	if age >= l.opts.CacheTTL {
		l.logger.Debug("catalog cache expired", logger.Duration("age", age))
		l.clearCache(ctx)
		return nil, false
	}

	c, err := decodeSnapshot(data)
	if err != nil {
		l.logger.Warn("catalog cache corrupted, clearing", logger.Error(err))
		l.clearCache(ctx)
		return nil, false
	}

	// Status must follow the calendar, not the day the snapshot was taken.
	if !c.ClassifiedOn.Equal(today) {
		c = domain.ClassifyCatalog(c, today, l.opts.Thresholds)
	}

	l.logger.Info("catalog loaded from cache",
		logger.Int("services", len(c.Services)),
		logger.Time("saved_at", savedAt))
	return c, true
}

func (l *Loader) toCache(ctx context.Context, c *domain.Catalog) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(c)
	if err != nil {
		l.logger.Warn("failed to encode catalog snapshot", logger.Error(err))
		return
	}
	if err := l.cache.SaveSnapshot(ctx, data, l.opts.Clock.Now()); err != nil {
		l.logger.Warn("failed to save catalog snapshot", logger.Error(err))
	}
}

func (l *Loader) clearCache(ctx context.Context) {
	if err := l.cache.ClearSnapshot(ctx); err != nil {
		l.logger.Warn("failed to clear catalog cache", logger.Error(err))
	}
}

// fetchWithRetry fetches and decodes the source, retrying transient
// failures with exponential backoff. Malformed payloads are not retried.
func (l *Loader) fetchWithRetry(ctx context.Context) (*domain.Catalog, *LoadError) {
	var (
		doc     *domain.Catalog
		lastErr error
	)

	err := retry.Call(retry.CallArgs{
		Func: func() error {
			p, err := l.fetcher.Fetch(ctx)
			if err == nil {
				doc, err = Decode(p)
			}
			lastErr = err
			return err
		},
		IsFatalError: func(err error) bool {
			return KindOf(err) == KindMalformedResponse || ctx.Err() != nil
		},
		NotifyFunc: func(err error, attempt int) {
			if attempt < l.opts.Attempts {
				l.logger.Warn("catalog fetch failed, retrying",
					logger.Int("attempt", attempt),
					logger.Duration("next_retry_in", l.backoff(0, attempt)),
					logger.Error(err))
			}
		},
		Attempts:    l.opts.Attempts,
		Delay:       l.opts.Delay,
		BackoffFunc: l.backoff,
		Clock:       l.opts.Clock,
		Stop:        ctx.Done(),
	})
	if err == nil {
		return doc, nil
	}

	if lastErr == nil {
		lastErr = err
	}
	if ctxErr := ctx.Err(); ctxErr != nil && KindOf(lastErr) != KindMalformedResponse {
		lastErr = ctxErr
	}
	return nil, asLoadError(lastErr)
}

// backoff returns Delay * Multiplier^(attempt-1): the wait after the
// given (1-based) failed attempt.
func (l *Loader) backoff(_ time.Duration, attempt int) time.Duration {
	d := l.opts.Delay
	for i := 1; i < attempt; i++ {
		d *= time.Duration(l.opts.Multiplier)
	}
	return d
}

func (l *Loader) setState(s State, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = s
	l.lastErr = err
	if s == StateSucceeded {
		l.loaded = l.opts.Clock.Now()
	}
}
