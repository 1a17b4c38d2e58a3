package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// Service returns one record as a localized card.
func Service(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := requestLanguage(r, d)
		c, _ := d.MemoryIndex.Catalog()
		if c == nil {
			writeUnavailable(w, lang, d.MemoryIndex.LastError())
			return
		}

		svc, ok := d.MemoryIndex.GetService(chi.URLParam(r, "id"))
		if !ok {
			writeError(w, http.StatusNotFound, "service not found")
			return
		}
		writeJSON(w, http.StatusOK, view.CardFor(c, svc, lang))
	}
}
