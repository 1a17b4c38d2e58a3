package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

// groups holds registrars by path prefix, "" being the root.
var (
	groups = map[string][]entry{}
	order  []string
)

// Register adds routes at the root with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	RegisterUnder("", reg, mws...)
}

// RegisterUnder adds routes below prefix (ex: "/api"). Registrars sharing
// a prefix are mounted on the same sub-router, in registration order.
func RegisterUnder(prefix string, reg Registrar, mws ...Middleware) {
	if _, ok := groups[prefix]; !ok {
		order = append(order, prefix)
	}
	groups[prefix] = append(groups[prefix], entry{reg: reg, mws: mws})
}

// Called once from server.NewRouter()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, prefix := range order {
		if prefix == "" {
			mount(r, groups[prefix], d)
			continue
		}
		r.Route(prefix, func(sub chi.Router) {
			mount(sub, groups[prefix], d)
		})
	}
}

func mount(r chi.Router, entries []entry, d deps.Deps) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		e.reg(r.With(e.mws...), d)
	}
}
