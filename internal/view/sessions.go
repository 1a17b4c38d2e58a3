package view

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

// PreferenceStore persists the language picked by a session.
type PreferenceStore interface {
	SaveLanguage(ctx context.Context, session string, lang i18n.Lang) error
	LoadLanguage(ctx context.Context, session string) (i18n.Lang, bool, error)
}

// prefTimeout bounds preference reads and writes.
const prefTimeout = 2 * time.Second

// Sessions maps session ids to their controllers.
type Sessions struct {
	source CatalogSource
	prefs  PreferenceStore
	logger logger.Logger
	opts   Options

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewSessions creates an empty session table. prefs may be nil.
func NewSessions(source CatalogSource, prefs PreferenceStore, log logger.Logger, opts Options) *Sessions {
	if opts.Clock == nil {
		opts.Clock = clock.WallClock
	}
	return &Sessions{
		source:   source,
		prefs:    prefs,
		logger:   log,
		opts:     opts,
		sessions: make(map[string]*Controller),
	}
}

// Get returns the controller of an existing session.
func (s *Sessions) Get(id string) (*Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.sessions[id]
	return c, ok
}

// Resume returns the controller for id, creating it when the id is unknown
// or empty. A new session starts in the stored language of id when there
// is one, and in fallback otherwise. It returns the id actually used.
func (s *Sessions) Resume(ctx context.Context, id string, fallback i18n.Lang) (string, *Controller) {
	if id != "" {
		if c, ok := s.Get(id); ok {
			return id, c
		}
		if _, err := uuid.Parse(id); err != nil {
			id = ""
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	lang := s.storedLanguage(ctx, id, fallback)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Lost a race with a concurrent Resume for the same id.
	if c, ok := s.sessions[id]; ok {
		return id, c
	}

	opts := s.opts
	opts.Language = lang
	opts.OnLanguageChange = func(l i18n.Lang) { s.saveLanguage(id, l) }

	c := NewController(s.source, nil, opts)
	s.sessions[id] = c
	s.logger.Debug("view session created", logger.Session(id), logger.String("language", string(lang)))
	return id, c
}

// ReloadAll re-renders every session against the current catalog.
func (s *Sessions) ReloadAll() {
	for _, c := range s.snapshot() {
		c.Reload()
	}
}

// Collect drops sessions idle for longer than ttl and returns how many.
func (s *Sessions) Collect(ttl time.Duration) int {
	now := s.opts.Clock.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, c := range s.sessions {
		if now.Sub(c.LastSeen()) <= ttl {
			continue
		}
		c.Close()
		delete(s.sessions, id)
		removed++
	}
	return removed
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Sessions) snapshot() []*Controller {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Controller, 0, len(s.sessions))
	for _, c := range s.sessions {
		out = append(out, c)
	}
	return out
}

func (s *Sessions) storedLanguage(ctx context.Context, id string, fallback i18n.Lang) i18n.Lang {
	if s.prefs == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, prefTimeout)
	defer cancel()

	lang, ok, err := s.prefs.LoadLanguage(ctx, id)
	if err != nil {
		s.logger.Warn("failed to load language preference", logger.Session(id), logger.Error(err))
		return fallback
	}
	if !ok {
		return fallback
	}
	return lang
}

func (s *Sessions) saveLanguage(id string, lang i18n.Lang) {
	if s.prefs == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), prefTimeout)
	defer cancel()

	if err := s.prefs.SaveLanguage(ctx, id, lang); err != nil {
		s.logger.Warn("failed to save language preference", logger.Session(id), logger.Error(err))
	}
}
