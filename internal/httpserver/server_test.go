package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/MrSnakeDoc/eoltracker/internal/config"
	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/export"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/deps"
	"github.com/MrSnakeDoc/eoltracker/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/eoltracker/internal/i18n"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
	"github.com/MrSnakeDoc/eoltracker/internal/sources/catalog"
	"github.com/MrSnakeDoc/eoltracker/internal/view"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func fixture() *domain.Catalog {
	return domain.ClassifyCatalog(&domain.Catalog{
		LastUpdated: "2025-03-01",
		Vendors:     []domain.Vendor{{ID: "aws", Name: "Amazon Web Services"}, {ID: "gcp", Name: "Google Cloud"}},
		Categories:  []domain.Category{{ID: "compute", Name: "Compute"}, {ID: "storage", Name: "Storage"}},
		Services: []*domain.ServiceRecord{
			{ID: "a", Vendor: "aws", ServiceName: "Legacy Compute", Category: "compute", EOLDate: "2025-04-09"},
			{ID: "b", Vendor: "gcp", ServiceName: "Old Storage", Category: "storage", EOLDate: "2025-03-20"},
			{ID: "c", Vendor: "aws", ServiceName: "Ancient DB", Category: "storage", EOLDate: "2024-01-01"},
		},
	}, domain.Today(now, time.UTC), domain.DefaultThresholds())
}

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type prefStore struct{ pinger }

func (prefStore) CountPreferences(context.Context) (int, error) { return 7, nil }

type env struct {
	idx     *index.MemoryIndex
	trigger chan struct{}
	router  http.Handler
}

func newEnv(t *testing.T, mutate func(*deps.Deps)) *env {
	t.Helper()

	idx := index.NewMemoryIndex()
	trigger := make(chan struct{}, 1)
	d := deps.Deps{
		Logger:          logger.Nop(),
		StartTime:       now.Add(-time.Minute),
		Version:         "test",
		TimeNow:         func() time.Time { return now },
		Location:        time.UTC,
		DefaultLanguage: i18n.English,
		Collation:       language.English,
		ExportBurst:     5,
		ExportRefill:    1,
		MemoryIndex:     idx,
		Redis:           pinger{},
		Sessions:        view.NewSessions(idx, nil, logger.Nop(), view.Options{}),
		ReloadTrigger:   trigger,
	}
	if mutate != nil {
		mutate(&d)
	}
	return &env{idx: idx, trigger: trigger, router: NewRouter(logger.Nop(), d)}
}

func (e *env) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func frameIDs(f view.Frame) []string {
	var ids []string
	for _, c := range f.Cards {
		ids = append(ids, c.ID)
	}
	for _, r := range f.Rows {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestHealthAndReadiness(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, "GET", "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"uptime_seconds":60`)
	assert.Contains(t, w.Body.String(), `"version":"test"`)

	w = e.do(t, "GET", "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"loading"`)

	e.idx.RecordFailure(&catalog.LoadError{Kind: catalog.KindOffline})
	w = e.do(t, "GET", "/readyz", "")
	assert.Contains(t, w.Body.String(), `"reason":"offline"`)

	e.idx.UpdateCatalog(fixture())
	w = e.do(t, "GET", "/readyz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"services":3`)
}

func TestCatalogUnavailableIsLocalized(t *testing.T) {
	e := newEnv(t, nil)
	e.idx.RecordFailure(&catalog.LoadError{Kind: catalog.KindServerError, Status: 502})

	r := httptest.NewRequest("GET", "/api/catalog", nil)
	r.Header.Set("Accept-Language", "ja-JP,ja;q=0.9,en;q=0.5")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"kind":"server_error"`)
	assert.Contains(t, body, "サーバーエラー")
	assert.NotContains(t, body, "services\"")
}

func TestCatalogSummary(t *testing.T) {
	e := newEnv(t, nil)
	e.idx.UpdateCatalog(fixture())

	w := e.do(t, "GET", "/api/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "2025-03-01", got["lastUpdated"])
	assert.Equal(t, "2025-03-10", got["classifiedOn"])
	assert.EqualValues(t, 3, got["total"])
}

func TestServicesQuery(t *testing.T) {
	e := newEnv(t, nil)
	e.idx.UpdateCatalog(fixture())

	f := decode[view.Frame](t, e.do(t, "GET", "/api/services", ""))
	assert.Equal(t, []string{"b", "a"}, frameIDs(f))
	assert.Equal(t, "2 of 3 services", f.CountLabel)

	f = decode[view.Frame](t, e.do(t, "GET", "/api/services?proximity=&sort=name-asc&view=table", ""))
	assert.Equal(t, []string{"c", "a", "b"}, frameIDs(f))
	assert.Empty(t, f.Cards)

	f = decode[view.Frame](t, e.do(t, "GET", "/api/services?q=STORAGE&proximity=&lang=ja", ""))
	assert.Equal(t, []string{"c", "b"}, frameIDs(f))
	assert.Equal(t, i18n.Japanese, f.Language)

	f = decode[view.Frame](t, e.do(t, "GET", "/api/services?vendor=azure", ""))
	assert.Equal(t, view.PlaceholderEmpty, f.State)
}

func TestServiceDetail(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, "GET", "/api/services/b", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	e.idx.UpdateCatalog(fixture())

	w = e.do(t, "GET", "/api/services/b?lang=ja", "")
	require.Equal(t, http.StatusOK, w.Code)
	card := decode[view.Card](t, w)
	assert.Equal(t, "Google Cloud", card.Vendor)
	assert.Equal(t, "2025年3月20日", card.EOLDate)
	assert.Equal(t, domain.StatusDeprecated, card.Status)

	w = e.do(t, "GET", "/api/services/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServicesExport(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) { d.ExportBurst = 1 })
	e.idx.UpdateCatalog(fixture())

	w := e.do(t, "GET", "/api/services/export.csv?vendor=gcp", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename=eol-service-tracker-2025-03-10.csv`, w.Header().Get("Content-Disposition"))

	body := w.Body.String()
	require.True(t, strings.HasPrefix(body, export.BOM+"Vendor,Service Name,"), body)
	lines := strings.Split(body, "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "Google Cloud,Old Storage,Storage,"), lines[1])

	w = e.do(t, "GET", "/api/services/export.csv", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestViewSession(t *testing.T) {
	e := newEnv(t, nil)
	e.idx.UpdateCatalog(fixture())

	w := e.do(t, "GET", "/api/view", "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	session := cookies[0]
	assert.Equal(t, handlers.SessionCookie, session.Name)
	assert.True(t, session.HttpOnly)

	type resp struct {
		Session       string     `json:"session"`
		SearchPending bool       `json:"searchPending"`
		Frame         view.Frame `json:"frame"`
	}

	w = e.do(t, "POST", "/api/view/proximity", `{"value":""}`, session)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies(), "known session keeps its cookie")
	got := decode[resp](t, w)
	assert.Equal(t, session.Value, got.Session)
	assert.Equal(t, []string{"c", "b", "a"}, frameIDs(got.Frame))

	w = e.do(t, "POST", "/api/view/vendor", `{"value":"aws"}`, session)
	assert.Equal(t, []string{"c", "a"}, frameIDs(decode[resp](t, w).Frame))

	w = e.do(t, "POST", "/api/view/search", `{"value":"legacy"}`, session)
	assert.Equal(t, http.StatusAccepted, w.Code)
	got = decode[resp](t, w)
	assert.True(t, got.SearchPending)
	assert.Equal(t, "", got.Frame.Filter.Search)

	w = e.do(t, "POST", "/api/view/flush", "", session)
	got = decode[resp](t, w)
	assert.False(t, got.SearchPending)
	assert.Equal(t, []string{"a"}, frameIDs(got.Frame))

	w = e.do(t, "POST", "/api/view/view", `{"value":"grid"}`, session)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = e.do(t, "POST", "/api/view/teleport", `{}`, session)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = e.do(t, "POST", "/api/view/language", `{}`, session)
	got = decode[resp](t, w)
	assert.Equal(t, i18n.Japanese, got.Frame.Language)
	assert.Equal(t, []string{"a"}, frameIDs(got.Frame))

	w = e.do(t, "GET", "/api/view/export.csv", "", session)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, export.BOM+"ベンダー,サービス名,"), body)
	assert.Len(t, strings.Split(body, "\n"), 2)
}

func TestViewExportBeforeLoad(t *testing.T) {
	e := newEnv(t, nil)
	w := e.do(t, "GET", "/api/view/export.csv", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestReloadTrigger(t *testing.T) {
	e := newEnv(t, nil)

	w := e.do(t, "POST", "/reload", "")
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = e.do(t, "POST", "/reload", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	<-e.trigger
}

func TestInfra(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) {
		d.AllowedCIDRS = []string{"192.0.2.0/24"}
		d.Redis = pinger{err: errors.New("connection refused")}
	})
	e.idx.UpdateCatalog(fixture())

	w := e.do(t, "GET", "/infra", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "degraded", got["mode"])
	components := got["components"].(map[string]any)
	assert.Equal(t, true, components["catalog"].(map[string]any)["ok"])
	byStatus := components["catalog"].(map[string]any)["by_status"].(map[string]any)
	assert.Equal(t, float64(2), byStatus["deprecated"])
	assert.Equal(t, float64(1), byStatus["eol"])
	assert.Equal(t, false, components["redis"].(map[string]any)["ok"])

	r := httptest.NewRequest("GET", "/infra", nil)
	r.RemoteAddr = "203.0.113.9:4000"
	w = httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestServeAndStop(t *testing.T) {
	cfg := &config.Config{ListenPort: "127.0.0.1:0", RequestTimeout: time.Second}
	d := deps.Deps{
		Logger:      logger.Nop(),
		StartTime:   time.Now(),
		MemoryIndex: index.NewMemoryIndex(),
		Sessions:    view.NewSessions(index.NewMemoryIndex(), nil, logger.Nop(), view.Options{}),
	}
	srv := New(cfg, logger.Nop(), d)

	ln, err := net.Listen("tcp", cfg.ListenPort)
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Stop(ctx))
	assert.NoError(t, <-done, "shutdown is not an error")
}

func TestInfraCountsPreferences(t *testing.T) {
	e := newEnv(t, func(d *deps.Deps) { d.Redis = prefStore{} })
	e.idx.UpdateCatalog(fixture())

	w := e.do(t, "GET", "/infra", "")
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[map[string]any](t, w)
	assert.Equal(t, "nominal", got["mode"])
	redis := got["components"].(map[string]any)["redis"].(map[string]any)
	assert.Equal(t, float64(7), redis["preferences"])
}
