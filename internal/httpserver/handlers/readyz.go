package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
)

type readyzResponse struct {
	Ready    bool   `json:"ready"`
	Services int    `json:"services"`
	Reason   string `json:"reason,omitempty"`
}

// Readyz is 503 until a catalog has been published.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.MemoryIndex.Ready() {
			reason := "loading"
			if err := d.MemoryIndex.LastError(); err != nil {
				reason = catalog.KindOf(err).String()
			}
			writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Reason: reason})
			return
		}

		writeJSON(w, http.StatusOK, readyzResponse{
			Ready:    true,
			Services: d.MemoryIndex.Count(),
		})
	}
}
