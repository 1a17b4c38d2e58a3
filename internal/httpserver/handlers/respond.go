package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeUnavailable reports a catalog that is still loading or failed to
// load, localized in lang. No partial data is ever sent alongside.
func writeUnavailable(w http.ResponseWriter, lang i18n.Lang, loadErr error) {
	if loadErr == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{
			Error:   "catalog not loaded",
			Kind:    "loading",
			Message: lang.T("loading"),
		})
		return
	}
	kind := catalog.KindOf(loadErr)
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{
		Error:   "catalog unavailable",
		Kind:    kind.String(),
		Message: lang.T(kind.MessageKey()),
	})
}
