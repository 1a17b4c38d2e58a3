package handlers

import (
	"net/http"
	"net/url"

	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

// stateFromQuery overlays the q, vendor, category, proximity, sort and view
// parameters onto the default filter state.
func stateFromQuery(q url.Values) view.FilterState {
	state := view.DefaultState()

	if q.Has("q") {
		state.Search = q.Get("q")
	}
	if v := q.Get("vendor"); v != "" {
		state.Vendor = v
	}
	if v := q.Get("category"); v != "" {
		state.Category = v
	}
	if q.Has("proximity") {
		state.Proximity = q.Get("proximity")
	}
	if v := q.Get("sort"); v != "" {
		state.Sort = v
	}
	if m, ok := view.ParseMode(q.Get("view")); ok {
		state.View = m
	}
	return state
}

// requestLanguage honors ?lang=, then Accept-Language, then the default.
func requestLanguage(r *http.Request, d deps.Deps) i18n.Lang {
	if l, ok := i18n.Parse(r.URL.Query().Get("lang")); ok {
		return l
	}
	fallback := d.DefaultLanguage
	if fallback == "" {
		fallback = i18n.English
	}
	return i18n.Match(r.Header.Get("Accept-Language"), fallback)
}
