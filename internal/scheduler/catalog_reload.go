package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/clock"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

// CatalogLoader loads the classified catalog. Load may answer from cache,
// Refresh always goes to the source.
type CatalogLoader interface {
	Load(ctx context.Context) (*domain.Catalog, error)
	Refresh(ctx context.Context) (*domain.Catalog, error)
}

// CatalogReloader publishes the catalog into the index on start, on every
// tick and on every manual trigger.
type CatalogReloader struct {
	loader        CatalogLoader
	index         *index.MemoryIndex
	logger        logger.Logger
	interval      time.Duration
	clock         clock.Clock
	onReload      []func()
	stopCh        chan struct{}
	stopOnce      sync.Once
	started       bool
	done          chan struct{}
	manualTrigger chan struct{}
}

// NewCatalogReloader creates a new catalog reloader. manualTrigger may be nil.
func NewCatalogReloader(
	loader CatalogLoader,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
	clk clock.Clock,
) *CatalogReloader {
	if clk == nil {
		clk = clock.WallClock
	}
	return &CatalogReloader{
		loader:        loader,
		index:         idx,
		logger:        logger.Component(log, "catalog_reloader"),
		interval:      interval,
		clock:         clk,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// OnReload registers f to run after every reload, successful or not.
// Must be called before Start.
func (cr *CatalogReloader) OnReload(f func()) {
	cr.onReload = append(cr.onReload, f)
}

// Start loads the catalog once and then keeps reloading in the background.
// A failed initial load is returned but does not stop the loop: the index
// serves the error until a later reload succeeds.
func (cr *CatalogReloader) Start(ctx context.Context) error {
	initialErr := cr.Reload(ctx, false)

	cr.started = true
	go func() {
		defer close(cr.done)
		for {
			select {
			case <-cr.clock.After(cr.interval):
				if err := cr.Reload(ctx, false); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.manualTrigger:
				cr.logger.Info("manual reload triggered")
				if err := cr.Reload(ctx, true); err != nil {
					cr.logger.Error("failed to reload catalog", logger.Error(err))
				}
			case <-cr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	if initialErr != nil {
		return fmt.Errorf("initial reload failed: %w", initialErr)
	}
	return nil
}

// Stop stops the reloader and waits for its goroutine.
func (cr *CatalogReloader) Stop() {
	cr.stopOnce.Do(func() { close(cr.stopCh) })
	if cr.started {
		<-cr.done
	}
}

// Reload loads the catalog and publishes it. With force set the cache is
// bypassed. On failure the previous catalog stays published.
func (cr *CatalogReloader) Reload(ctx context.Context, force bool) error {
	cr.logger.Debug("reloading catalog", logger.Bool("force", force))
	defer cr.notify()

	load := cr.loader.Load
	if force {
		load = cr.loader.Refresh
	}

	c, err := load(ctx)
	if err != nil {
		cr.index.RecordFailure(err)
		return err
	}

	cr.index.UpdateCatalog(c)
	_, version := cr.index.Catalog()
	cr.logger.Info("catalog published",
		logger.Uint64("version", version),
		logger.Int("services", len(c.Services)),
		logger.String("last_updated", c.LastUpdated))
	return nil
}

func (cr *CatalogReloader) notify() {
	for _, f := range cr.onReload {
		f()
	}
}
