package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/mw"
)

func init() { Register(registerProbes) }

// Probes stay reachable without Host enforcement so orchestrators can
// call them by IP. /infra exposes internals and is CIDR restricted.
func registerProbes(r chi.Router, d deps.Deps) {
	r.Get("/healthz", handlers.Healthz(d))
	r.Get("/readyz", handlers.Readyz(d))
	r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)).Get("/infra", handlers.Infra(d))
}
