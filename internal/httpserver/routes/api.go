package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/mw"
)

func init() { RegisterUnder("/api", registerAPI) }

// exportLimiterEntries caps the per-IP table of the CSV rate limiter.
const exportLimiterEntries = 10_000

func registerAPI(r chi.Router, d deps.Deps) {
	// One bucket per IP, shared by both CSV exports.
	exportLimit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.ExportBurst,
		RefillPerIPPerMin: d.ExportRefill,
		MaxEntries:        exportLimiterEntries,
		TrustProxy:        d.TrustProxy,
	})

	r = r.With(mw.EnforceHost(d.AllowedHosts, d.Logger))

	r.Get("/catalog", handlers.Catalog(d))
	r.Get("/services", handlers.Services(d))
	r.Get("/services/{id}", handlers.Service(d))
	r.With(exportLimit).Get("/services/export.csv", handlers.ExportCSV(d))

	r.Route("/view", func(r chi.Router) {
		r.Get("/", handlers.ViewFrame(d))
		r.Post("/{command}", handlers.ViewCommand(d))
		r.With(exportLimit).Get("/export.csv", handlers.ViewExport(d))
	})
}
