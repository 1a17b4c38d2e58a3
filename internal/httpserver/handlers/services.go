package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// Services runs one stateless query described by the URL parameters and
// returns the rendered frame.
func Services(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := requestLanguage(r, d)
		c, _ := d.MemoryIndex.Catalog()
		if c == nil {
			writeUnavailable(w, lang, d.MemoryIndex.LastError())
			return
		}

		state := stateFromQuery(r.URL.Query())
		results := domain.Query(c.Services, state.Filter, d.Collation)
		writeJSON(w, http.StatusOK, view.Render(c, results, state, lang))
	}
}
