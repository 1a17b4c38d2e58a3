package view

import (
	"sync"
	"time"

	"github.com/juju/clock"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
)

// DefaultSearchDebounce is the quiet period before a search is applied.
const DefaultSearchDebounce = 300 * time.Millisecond

// CatalogSource hands out the current catalog. A nil catalog means
// nothing was loaded yet; LastError then tells loading from failure.
type CatalogSource interface {
	Catalog() (*domain.Catalog, uint64)
	LastError() error
}

// Presenter receives every new frame. It is called with the controller
// locked and must not call back into it.
type Presenter interface {
	Present(Frame)
}

// PresenterFunc adapts a function to Presenter.
type PresenterFunc func(Frame)

func (f PresenterFunc) Present(fr Frame) { f(fr) }

// Options configures a Controller. Zero values pick the defaults.
type Options struct {
	Debounce  time.Duration
	Collation language.Tag
	Language  i18n.Lang
	State     *FilterState
	Clock     clock.Clock

	// OnLanguageChange is called after ToggleLanguage/SetLanguage.
	OnLanguageChange func(i18n.Lang)
}

// Controller owns the filter state of one session and re-renders after
// every applied command.
type Controller struct {
	source    CatalogSource
	presenter Presenter
	collation language.Tag
	clock     clock.Clock
	search    *Debouncer
	onLang    func(i18n.Lang)

	mu       sync.Mutex
	state    FilterState
	lang     i18n.Lang
	catalog  *domain.Catalog
	version  uint64
	frame    Frame
	lastSeen time.Time
}

// NewController builds a controller and renders its first frame.
func NewController(source CatalogSource, presenter Presenter, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultSearchDebounce
	}
	if opts.Collation == language.Und {
		opts.Collation = language.English
	}
	if opts.Language == "" {
		opts.Language = i18n.English
	}
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	state := DefaultState()
	if opts.State != nil {
		state = *opts.State
	}

	c := &Controller{
		source:    source,
		presenter: presenter,
		collation: opts.Collation,
		clock:     opts.Clock,
		search:    NewDebouncer(opts.Clock, opts.Debounce),
		onLang:    opts.OnLanguageChange,
		state:     state,
		lang:      opts.Language,
		lastSeen:  opts.Clock.Now(),
	}

	c.mu.Lock()
	c.refreshLocked(true)
	c.mu.Unlock()
	return c
}

// ─────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────

// SetSearch applies the query once the debounce period passes without
// another SetSearch. An earlier pending query is discarded.
func (c *Controller) SetSearch(q string) {
	c.touch()
	c.search.Trigger(func() {
		c.update(func(s *FilterState) { s.Search = q })
	})
}

// FlushSearch applies a pending search immediately.
func (c *Controller) FlushSearch() { c.search.Flush() }

// SearchPending reports whether a search is waiting for its quiet period.
func (c *Controller) SearchPending() bool { return c.search.Pending() }

func (c *Controller) SetVendor(v string) {
	c.update(func(s *FilterState) { s.Vendor = v })
}

func (c *Controller) SetCategory(v string) {
	c.update(func(s *FilterState) { s.Category = v })
}

func (c *Controller) SetProximity(v string) {
	c.update(func(s *FilterState) { s.Proximity = v })
}

func (c *Controller) SetSort(v string) {
	c.update(func(s *FilterState) { s.Sort = v })
}

func (c *Controller) ToggleView() {
	c.update(func(s *FilterState) { s.View = s.View.Toggle() })
}

func (c *Controller) SetView(m Mode) {
	c.update(func(s *FilterState) { s.View = m })
}

// ToggleLanguage switches en <-> ja. Results are unchanged, labels are not.
func (c *Controller) ToggleLanguage() {
	c.mu.Lock()
	c.lang = c.lang.Toggle()
	lang := c.lang
	c.lastSeen = c.clock.Now()
	c.refreshLocked(false)
	c.mu.Unlock()

	if c.onLang != nil {
		c.onLang(lang)
	}
}

// SetLanguage switches to lang.
func (c *Controller) SetLanguage(lang i18n.Lang) {
	c.mu.Lock()
	changed := c.lang != lang
	c.lang = lang
	c.lastSeen = c.clock.Now()
	c.refreshLocked(false)
	c.mu.Unlock()

	if changed && c.onLang != nil {
		c.onLang(lang)
	}
}

// Reload picks up the catalog currently published by the source.
func (c *Controller) Reload() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked(true)
}

// Close drops any pending search.
func (c *Controller) Close() {
	c.search.Stop()
}

// ─────────────────────────────────────────────────────────────────
// Accessors
// ─────────────────────────────────────────────────────────────────

// Frame returns the latest frame, catching up with a newer catalog first.
func (c *Controller) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSeen = c.clock.Now()
	if _, version := c.source.Catalog(); version != c.version {
		c.refreshLocked(true)
	}
	return c.frame
}

func (c *Controller) State() FilterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Language() i18n.Lang {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lang
}

// LastSeen is the time of the last command or read.
func (c *Controller) LastSeen() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSeen
}

// ─────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastSeen = c.clock.Now()
	c.mu.Unlock()
}

func (c *Controller) update(mutate func(*FilterState)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mutate(&c.state)
	c.lastSeen = c.clock.Now()
	c.refreshLocked(true)
}

// refreshLocked re-renders the frame. With fetch set, the catalog is
// re-read from the source first.
func (c *Controller) refreshLocked(fetch bool) {
	if fetch || c.catalog == nil {
		c.catalog, c.version = c.source.Catalog()
	}

	switch {
	case c.catalog != nil:
		results := domain.Query(c.catalog.Services, c.state.Filter, c.collation)
		c.frame = Render(c.catalog, results, c.state, c.lang)
	case c.source.LastError() != nil:
		c.frame = ErrorFrame(c.lang, c.state, c.source.LastError())
	default:
		c.frame = LoadingFrame(c.lang, c.state)
	}

	if c.presenter != nil {
		c.presenter.Present(c.frame)
	}
}
