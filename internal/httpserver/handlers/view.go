package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// SessionCookie carries the view session id.
const SessionCookie = "eol_session"

const maxCommandBody = 4 << 10

type viewResponse struct {
	Session       string     `json:"session"`
	SearchPending bool       `json:"searchPending"`
	Frame         view.Frame `json:"frame"`
}

type commandRequest struct {
	Value string `json:"value"`
}

var errBadValue = errors.New("invalid value")

// commands maps POST /api/view/{command} to controller calls.
var commands = map[string]func(c *view.Controller, value string) error{
	"search":    func(c *view.Controller, v string) error { c.SetSearch(v); return nil },
	"flush":     func(c *view.Controller, _ string) error { c.FlushSearch(); return nil },
	"vendor":    func(c *view.Controller, v string) error { c.SetVendor(v); return nil },
	"category":  func(c *view.Controller, v string) error { c.SetCategory(v); return nil },
	"proximity": func(c *view.Controller, v string) error { c.SetProximity(v); return nil },
	"sort":      func(c *view.Controller, v string) error { c.SetSort(v); return nil },
	"view": func(c *view.Controller, v string) error {
		if v == "" {
			c.ToggleView()
			return nil
		}
		m, ok := view.ParseMode(v)
		if !ok {
			return errBadValue
		}
		c.SetView(m)
		return nil
	},
	"language": func(c *view.Controller, v string) error {
		if v == "" {
			c.ToggleLanguage()
			return nil
		}
		l, ok := i18n.Parse(v)
		if !ok {
			return errBadValue
		}
		c.SetLanguage(l)
		return nil
	},
	"reload": func(c *view.Controller, _ string) error { c.Reload(); return nil },
}

// ViewFrame returns the current frame of the caller's session, creating the
// session on first use.
func ViewFrame(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, c := resumeSession(w, r, d)
		writeJSON(w, http.StatusOK, viewResponse{
			Session:       id,
			SearchPending: c.SearchPending(),
			Frame:         c.Frame(),
		})
	}
}

// ViewCommand applies one command to the caller's session.
func ViewCommand(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apply, ok := commands[chi.URLParam(r, "command")]
		if !ok {
			writeError(w, http.StatusNotFound, "unknown command")
			return
		}

		var req commandRequest
		body := http.MaxBytesReader(w, r.Body, maxCommandBody)
		if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		id, c := resumeSession(w, r, d)
		if err := apply(c, req.Value); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		status := http.StatusOK
		pending := c.SearchPending()
		if pending {
			status = http.StatusAccepted
		}
		writeJSON(w, status, viewResponse{Session: id, SearchPending: pending, Frame: c.Frame()})
	}
}

// ViewExport downloads exactly what the caller's session currently shows,
// in its language.
func ViewExport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, c := resumeSession(w, r, d)
		f := c.Frame()
		if f.Catalog == nil {
			writeUnavailable(w, f.Language, d.MemoryIndex.LastError())
			return
		}
		writeCSV(w, d, f.Catalog, f.Services, f.Language)
	}
}

func resumeSession(w http.ResponseWriter, r *http.Request, d deps.Deps) (string, *view.Controller) {
	var id string
	if ck, err := r.Cookie(SessionCookie); err == nil {
		id = ck.Value
	}

	resolved, c := d.Sessions.Resume(r.Context(), id, requestLanguage(r, d))
	if resolved != id {
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    resolved,
			Path:     "/api/view",
			HttpOnly: true,
			Secure:   d.SecureCookies,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return resolved, c
}
