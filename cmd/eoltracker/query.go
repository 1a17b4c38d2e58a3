package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/eoltracker/internal/app"
	"github.com/MrSnakeDoc/eoltracker/internal/config"
	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
	filestore "github.com/MrSnakeDoc/eoltracker/internal/store/file"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// queryFlags are the filter flags shared by list and export.
type queryFlags struct {
	search    string
	vendor    string
	category  string
	proximity string
	sort      string
	lang      string
	refresh   bool
}

func (q *queryFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&q.search, "search", "q", "", "match name, description, vendor or tags")
	f.StringVar(&q.vendor, "vendor", domain.All, "vendor id, or all")
	f.StringVar(&q.category, "category", domain.All, "category id, or all")
	f.StringVar(&q.proximity, "proximity", domain.ProximityUpcoming, "upcoming, past, all, or a number of days")
	f.StringVar(&q.sort, "sort", domain.SortEOLDateAsc, "eol-date-asc, eol-date-desc, name-asc, name-desc or vendor-asc")
	f.StringVar(&q.lang, "lang", "", "en or ja (default from EOL_DEFAULT_LANGUAGE)")
	f.BoolVar(&q.refresh, "refresh", false, "skip the cached snapshot and fetch the source")
}

func (q *queryFlags) state(mode view.Mode) view.FilterState {
	s := view.DefaultState()
	s.Search = q.search
	s.Vendor = q.vendor
	s.Category = q.category
	s.Proximity = q.proximity
	s.Sort = q.sort
	s.View = mode
	return s
}

func (q *queryFlags) language(cfg *config.Config) i18n.Lang {
	if l, ok := i18n.Parse(q.lang); ok {
		return l
	}
	l, _ := i18n.Parse(cfg.DefaultLanguage)
	return l
}

// frame loads the catalog through the file cache and renders one frame.
// On a failed load the error frame is returned together with the error.
func (q *queryFlags) frame(ctx context.Context, mode view.Mode) (view.Frame, error) {
	cfg := config.Load()

	level := "warn"
	if verbose {
		level = "debug"
	}
	loggerClient := logger.New(level, cfg.PrettyLog)
	defer func() { _ = loggerClient.Sync() }()

	loader := app.NewLoader(cfg, filestore.NewStore(cfg.CacheDir), loggerClient)

	var (
		c   *domain.Catalog
		err error
	)
	if q.refresh {
		c, err = loader.Refresh(ctx)
	} else {
		c, err = loader.Load(ctx)
	}

	idx := index.NewMemoryIndex()
	if err != nil {
		idx.RecordFailure(err)
	} else {
		idx.UpdateCatalog(c)
	}

	state := q.state(mode)
	ctrl := view.NewController(idx, nil, view.Options{
		State:     &state,
		Language:  q.language(cfg),
		Collation: cfg.Collation,
	})
	defer ctrl.Close()

	return ctrl.Frame(), err
}
