package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
)

type catalogResponse struct {
	LastUpdated  string            `json:"lastUpdated"`
	ClassifiedOn string            `json:"classifiedOn"`
	Total        int               `json:"total"`
	Vendors      []domain.Vendor   `json:"vendors"`
	Categories   []domain.Category `json:"categories"`
}

// Catalog describes the published catalog without its records, for
// populating filter dropdowns.
func Catalog(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, _ := d.MemoryIndex.Catalog()
		if c == nil {
			writeUnavailable(w, requestLanguage(r, d), d.MemoryIndex.LastError())
			return
		}

		writeJSON(w, http.StatusOK, catalogResponse{
			LastUpdated:  c.LastUpdated,
			ClassifiedOn: c.ClassifiedOn.Format("2006-01-02"),
			Total:        len(c.Services),
			Vendors:      c.Vendors,
			Categories:   c.Categories,
		})
	}
}
