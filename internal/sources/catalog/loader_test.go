package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

const sampleCatalog = `{
  "lastUpdated": "2025-03-01",
  "vendors": [{"id": "aws", "name": "Amazon Web Services"}],
  "categories": [{"id": "compute", "name": "Compute", "icon": "🖥️"}],
  "services": [
    {"id": "aws-a", "vendor": "aws", "serviceName": "Legacy A", "category": "compute",
     "description": "first", "eolDate": "2025-04-09", "officialUrl": "https://example.com/a"},
    {"id": "aws-b", "vendor": "aws", "serviceName": "Old B", "category": "compute",
     "description": "second", "eolDate": "2024-01-01", "officialUrl": "https://example.com/b"}
  ]
}`

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

// recordingClock returns immediately from After and remembers every wait.
type recordingClock struct {
	*testclock.Clock

	mu    sync.Mutex
	waits []time.Duration
}

func newRecordingClock() *recordingClock {
	return &recordingClock{Clock: testclock.NewClock(testNow)}
}

func (c *recordingClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.waits = append(c.waits, d)
	c.mu.Unlock()

	c.Clock.Advance(d)
	ch := make(chan time.Time, 1)
	ch <- c.Clock.Now()
	return ch
}

func (c *recordingClock) Waits() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

type fetcherFunc func(ctx context.Context) (*Payload, error)

func (f fetcherFunc) Fetch(ctx context.Context) (*Payload, error) { return f(ctx) }

func staticFetcher(calls *int32, body string) Fetcher {
	return fetcherFunc(func(context.Context) (*Payload, error) {
		atomic.AddInt32(calls, 1)
		return &Payload{Data: []byte(body), Format: FormatJSON}, nil
	})
}

type memCache struct {
	mu      sync.Mutex
	data    []byte
	savedAt time.Time
	present bool

	reads, saves, clears int
}

func (m *memCache) LoadSnapshot(context.Context) ([]byte, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	return m.data, m.savedAt, m.present, nil
}

func (m *memCache) SaveSnapshot(_ context.Context, data []byte, savedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	m.data, m.savedAt, m.present = data, savedAt, true
	return nil
}

func (m *memCache) ClearSnapshot(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
	m.data, m.savedAt, m.present = nil, time.Time{}, false
	return nil
}

func newTestLoader(f Fetcher, probe ConnectivityProbe, cache SnapshotCache, clk *recordingClock) *Loader {
	return NewLoader(f, probe, cache, logger.Nop(), Options{
		Attempts:   3,
		Delay:      time.Second,
		Multiplier: 2,
		CacheTTL:   24 * time.Hour,
		Location:   time.UTC,
		Clock:      clk,
	})
}

func TestLoadRetriesServerErrorsWithBackoff(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	clk := newRecordingClock()
	cache := &memCache{}
	l := newTestLoader(NewFetcher(srv.URL+"/eol-data.json", time.Second), AlwaysOnline, cache, clk)

	c, err := l.Load(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{1000 * time.Millisecond, 2000 * time.Millisecond}, clk.Waits())
	require.Len(t, c.Services, 2)
	assert.Equal(t, "Amazon Web Services", c.Services[0].VendorName)
	assert.Equal(t, 1, cache.saves, "successful load should be cached")

	state, lastErr := l.State()
	assert.Equal(t, StateSucceeded, state)
	assert.NoError(t, lastErr)
}

func TestLoadGivesUpAfterAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clk := newRecordingClock()
	l := newTestLoader(NewFetcher(srv.URL, time.Second), AlwaysOnline, &memCache{}, clk)

	_, err := l.Load(context.Background())
	require.Error(t, err)

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Equal(t, KindServerError, le.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, le.Status)
	assert.Equal(t, "errorServer", le.Kind.MessageKey())

	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clk.Waits())

	state, lastErr := l.State()
	assert.Equal(t, StateFailed, state)
	assert.Equal(t, err, lastErr)
}

func TestLoadClientErrorIsRetriedThenReported(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := newTestLoader(NewFetcher(srv.URL, time.Second), AlwaysOnline, nil, newRecordingClock())

	_, err := l.Load(context.Background())
	assert.Equal(t, KindClientError, KindOf(err))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestLoadMalformedIsNotRetried(t *testing.T) {
	var calls int32
	clk := newRecordingClock()
	l := newTestLoader(staticFetcher(&calls, `{"services": {}}`), AlwaysOnline, &memCache{}, clk)

	_, err := l.Load(context.Background())
	assert.Equal(t, KindMalformedResponse, KindOf(err))
	assert.EqualValues(t, 1, calls)
	assert.Empty(t, clk.Waits())
}

func TestLoadOfflineSkipsCacheAndFetch(t *testing.T) {
	var calls int32
	cache := &memCache{}
	offline := ProbeFunc(func(context.Context) bool { return false })
	l := newTestLoader(staticFetcher(&calls, sampleCatalog), offline, cache, newRecordingClock())

	_, err := l.Load(context.Background())
	assert.Equal(t, KindOffline, KindOf(err))
	assert.Zero(t, calls)
	assert.Zero(t, cache.reads)
}

func snapshot(t *testing.T, classifiedOn time.Time) []byte {
	t.Helper()
	raw, err := Decode(&Payload{Data: []byte(sampleCatalog), Format: FormatJSON})
	require.NoError(t, err)
	data, err := json.Marshal(domain.ClassifyCatalog(raw, classifiedOn, domain.DefaultThresholds()))
	require.NoError(t, err)
	return data
}

func TestLoadServesFreshCacheWithoutFetching(t *testing.T) {
	var calls int32
	today := domain.Today(testNow, time.UTC)
	cache := &memCache{data: snapshot(t, today), savedAt: testNow.Add(-time.Hour), present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Len(t, c.Services, 2)
}

func TestLoadExpiredCacheIsClearedAndRefetched(t *testing.T) {
	var calls int32
	cache := &memCache{data: snapshot(t, testNow), savedAt: testNow.Add(-25 * time.Hour), present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, 1, cache.clears)
	assert.Equal(t, 1, cache.saves)
	assert.Equal(t, testNow, cache.savedAt)
}

func TestLoadCacheExpiresExactlyAtTTL(t *testing.T) {
	var calls int32
	cache := &memCache{data: snapshot(t, testNow), savedAt: testNow.Add(-24 * time.Hour), present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls, "a snapshot exactly one TTL old is stale")
	assert.Equal(t, 1, cache.clears)
}

func TestLoadCacheJustUnderTTLIsServed(t *testing.T) {
	var calls int32
	savedAt := testNow.Add(-24*time.Hour + time.Second)
	cache := &memCache{data: snapshot(t, domain.Today(testNow, time.UTC)), savedAt: savedAt, present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	_, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Zero(t, cache.clears)
}

func TestLoadCorruptCacheIsRecovered(t *testing.T) {
	var calls int32
	cache := &memCache{data: []byte("{not json"), savedAt: testNow, present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, c.Services, 2)
	assert.EqualValues(t, 1, calls)
	assert.Equal(t, 1, cache.clears)
}

func TestLoadReclassifiesSnapshotFromAnotherDay(t *testing.T) {
	var calls int32
	yesterday := domain.Today(testNow, time.UTC).AddDate(0, 0, -1)
	cache := &memCache{data: snapshot(t, yesterday), savedAt: testNow.Add(-2 * time.Hour), present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	c, err := l.Load(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.True(t, c.ClassifiedOn.Equal(domain.Today(testNow, time.UTC)))
	require.NotNil(t, c.Services[0].Computed.DaysUntilEOL)
	assert.Equal(t, 30, *c.Services[0].Computed.DaysUntilEOL)
	assert.Equal(t, domain.UrgencyHigh, c.Services[0].Computed.Urgency)
}

func TestRefreshBypassesCache(t *testing.T) {
	var calls int32
	cache := &memCache{data: snapshot(t, testNow), savedAt: testNow, present: true}

	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, cache, newRecordingClock())

	_, err := l.Refresh(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, calls)
	assert.Zero(t, cache.reads)
	assert.Equal(t, 1, cache.saves)
}

func TestLoadOutlivesCanceledCaller(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	f := fetcherFunc(func(ctx context.Context) (*Payload, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(started)
		}
		select {
		case <-release:
		case <-ctx.Done():
			return nil, &LoadError{Kind: KindUnknown, Err: ctx.Err()}
		}
		return &Payload{Data: []byte(sampleCatalog), Format: FormatJSON}, nil
	})
	cache := &memCache{}
	l := newTestLoader(f, AlwaysOnline, cache, newRecordingClock())

	ctx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Load(ctx)
		firstErr <- err
	}()
	<-started

	type result struct {
		c   *domain.Catalog
		err error
	}
	second := make(chan result, 1)
	go func() {
		c, err := l.Load(context.Background())
		second <- result{c, err}
	}()

	cancel()
	err := <-firstErr
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, KindUnknown, KindOf(err))

	close(release)
	res := <-second
	require.NoError(t, res.err)
	assert.Len(t, res.c.Services, 2)

	state, lastErr := l.State()
	assert.Equal(t, StateSucceeded, state)
	assert.NoError(t, lastErr)

	cache.mu.Lock()
	saves := cache.saves
	cache.mu.Unlock()
	assert.GreaterOrEqual(t, saves, 1, "detached load should still be cached")
}

func TestLoaderStartsIdle(t *testing.T) {
	var calls int32
	l := newTestLoader(staticFetcher(&calls, sampleCatalog), AlwaysOnline, nil, newRecordingClock())

	state, err := l.State()
	assert.Equal(t, StateIdle, state)
	assert.NoError(t, err)
	assert.True(t, l.LastSuccess().IsZero())
}
