package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
)

type componentStatus struct {
	OK             bool           `json:"ok"`
	ServicesLoaded *int           `json:"services_loaded,omitempty"`
	ByStatus       map[string]int `json:"by_status,omitempty"`
	LastReload     string         `json:"last_reload,omitempty"`
	LastUpdated    string         `json:"last_updated,omitempty"`
	Source         string         `json:"source,omitempty"`
	State          string         `json:"state,omitempty"`
	Sessions       *int           `json:"sessions,omitempty"`
	Preferences    *int           `json:"preferences,omitempty"`
	Mode           string         `json:"mode,omitempty"`
	Impact         string         `json:"impact,omitempty"`
	Error          string         `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

const redisPingTimeout = 2 * time.Second

// preferenceCounter is implemented by the Redis store.
type preferenceCounter interface {
	CountPreferences(ctx context.Context) (int, error)
}

// Infra reports the state of every moving part.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"catalog": catalogStatus(d),
			"loader":  loaderStatus(d),
			"redis":   checkRedis(r.Context(), d),
		}
		if d.Sessions != nil {
			n := d.Sessions.Len()
			components["sessions"] = componentStatus{OK: true, Sessions: &n}
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func catalogStatus(d deps.Deps) componentStatus {
	count := d.MemoryIndex.Count()
	st := componentStatus{
		OK:             d.MemoryIndex.Ready(),
		ServicesLoaded: &count,
		LastReload:     "never",
		Source:         d.CatalogSource,
	}
	if last := d.MemoryIndex.GetLastReload(); !last.IsZero() {
		st.LastReload = last.Format(time.DateTime)
	}
	if c, _ := d.MemoryIndex.Catalog(); c != nil {
		st.LastUpdated = c.LastUpdated
		st.ByStatus = countByStatus(d.MemoryIndex.GetAllServices())
	}
	if err := d.MemoryIndex.LastError(); err != nil {
		st.Error = err.Error()
	}
	return st
}

func countByStatus(services []*domain.ServiceRecord) map[string]int {
	out := map[string]int{}
	for _, svc := range services {
		out[string(svc.Computed.Status)]++
	}
	return out
}

func loaderStatus(d deps.Deps) componentStatus {
	if d.Loader == nil {
		return componentStatus{OK: true, State: "unknown"}
	}
	state, err := d.Loader.State()
	st := componentStatus{OK: state != catalog.StateFailed, State: string(state)}
	if last := d.Loader.LastSuccess(); !last.IsZero() {
		st.LastReload = last.Format(time.DateTime)
	}
	if err != nil {
		st.Error = err.Error()
	}
	return st
}

// determineMode is critical without a catalog and degraded when any
// other component is unhealthy.
func determineMode(components map[string]componentStatus) string {
	if c, ok := components["catalog"]; ok && !c.OK {
		return "critical"
	}
	for _, c := range components {
		if !c.OK {
			return "degraded"
		}
	}
	return "nominal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.Redis == nil {
		return componentStatus{
			OK:     false,
			Mode:   "disabled",
			Impact: "no-shared-cache-no-preferences",
			Error:  "client not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()

	if err := d.Redis.Ping(ctx); err != nil {
		return componentStatus{
			OK:     false,
			Mode:   "degraded",
			Impact: "no-shared-cache-no-preferences",
			Error:  err.Error(),
		}
	}

	st := componentStatus{OK: true, Mode: "optimal"}
	if pc, ok := d.Redis.(preferenceCounter); ok {
		if n, err := pc.CountPreferences(ctx); err == nil {
			st.Preferences = &n
		}
	}
	return st
}
