package handlers

import (
	"bufio"
	"mime"
	"net/http"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/export"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

// ExportCSV downloads the records matching the URL parameters.
func ExportCSV(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := requestLanguage(r, d)
		c, _ := d.MemoryIndex.Catalog()
		if c == nil {
			writeUnavailable(w, lang, d.MemoryIndex.LastError())
			return
		}

		state := stateFromQuery(r.URL.Query())
		results := domain.Query(c.Services, state.Filter, d.Collation)
		writeCSV(w, d, c, results, lang)
	}
}

func writeCSV(w http.ResponseWriter, d deps.Deps, c *domain.Catalog, services []*domain.ServiceRecord, lang i18n.Lang) {
	name := export.Filename(domain.Today(d.Now(), d.Location))

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	bw := bufio.NewWriter(w)
	if err := export.Write(bw, c, services, lang); err != nil {
		d.Logger.Warn("csv export aborted", logger.Error(err))
		return
	}
	if err := bw.Flush(); err != nil {
		d.Logger.Debug("csv export flush failed", logger.Error(err))
		return
	}
	d.Logger.Info("csv exported",
		logger.String("file", name),
		logger.Int("rows", len(services)),
		logger.String("language", string(lang)))
}
