package app

import (
	"github.com/MrSnakeDoc/eoltracker/internal/config"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
)

// NewLoader builds the catalog loader described by cfg. cache may be nil.
func NewLoader(cfg *config.Config, cache catalog.SnapshotCache, log logger.Logger) *catalog.Loader {
	return catalog.NewLoader(
		catalog.NewFetcher(cfg.CatalogSource, cfg.FetchTimeout),
		catalog.NewProbe(cfg.CatalogSource, cfg.OfflineCheck, cfg.FetchTimeout),
		cache,
		log,
		catalog.Options{
			Attempts:   cfg.FetchAttempts,
			Delay:      cfg.RetryDelay,
			Multiplier: cfg.RetryMultiplier,
			CacheTTL:   cfg.CacheTTL,
			Thresholds: cfg.Thresholds,
			Location:   cfg.Location,
		},
	)
}
