package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/MrSnakeDoc/eoltracker/internal/domain"
	"github.com/MrSnakeDoc/eoltracker/internal/index"
	"github.com/MrSnakeDoc/eoltracker/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var epoch = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

type fakeLoader struct {
	mu        sync.Mutex
	loads     int
	refreshes int
	errs      []error // consumed one per call; nil entries succeed
}

func (f *fakeLoader) next() (*domain.Catalog, error) {
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	if err != nil {
		return nil, err
	}
	return &domain.Catalog{
		LastUpdated: "2025-03-01",
		Services:    []*domain.ServiceRecord{{ID: "a"}, {ID: "b"}},
	}, nil
}

func (f *fakeLoader) Load(context.Context) (*domain.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return f.next()
}

func (f *fakeLoader) Refresh(context.Context) (*domain.Catalog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return f.next()
}

func (f *fakeLoader) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads, f.refreshes
}

func TestCatalogReloaderPublishes(t *testing.T) {
	clk := testclock.NewClock(epoch)
	idx := index.NewMemoryIndex()
	loader := &fakeLoader{}
	trigger := make(chan struct{})

	r := NewCatalogReloader(loader, idx, logger.Nop(), time.Hour, trigger, clk)
	var hooks sync.WaitGroup
	hooks.Add(3)
	r.OnReload(hooks.Done)

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.True(t, idx.Ready())
	assert.Equal(t, 2, idx.Count())

	require.NoError(t, clk.WaitAdvance(time.Hour, time.Second, 1))
	require.Eventually(t, func() bool {
		loads, _ := loader.counts()
		return loads == 2
	}, time.Second, 5*time.Millisecond)

	trigger <- struct{}{}
	require.Eventually(t, func() bool {
		_, refreshes := loader.counts()
		return refreshes == 1
	}, time.Second, 5*time.Millisecond)

	hooks.Wait()
	_, version := idx.Catalog()
	assert.Equal(t, uint64(3), version)
}

func TestCatalogReloaderSurvivesInitialFailure(t *testing.T) {
	clk := testclock.NewClock(epoch)
	idx := index.NewMemoryIndex()
	boom := errors.New("server said no")
	loader := &fakeLoader{errs: []error{boom}}

	r := NewCatalogReloader(loader, idx, logger.Nop(), time.Minute, nil, clk)

	err := r.Start(context.Background())
	defer r.Stop()

	require.ErrorIs(t, err, boom)
	assert.False(t, idx.Ready())
	assert.ErrorIs(t, idx.LastError(), boom)

	require.NoError(t, clk.WaitAdvance(time.Minute, time.Second, 1))
	require.Eventually(t, idx.Ready, time.Second, 5*time.Millisecond)
	assert.NoError(t, idx.LastError())
}

func TestCatalogReloaderKeepsCatalogOnFailure(t *testing.T) {
	idx := index.NewMemoryIndex()
	boom := errors.New("offline")
	loader := &fakeLoader{errs: []error{nil, boom}}

	r := NewCatalogReloader(loader, idx, logger.Nop(), time.Hour, nil, testclock.NewClock(epoch))

	require.NoError(t, r.Reload(context.Background(), false))
	before, version := idx.Catalog()

	require.ErrorIs(t, r.Reload(context.Background(), true), boom)

	after, sameVersion := idx.Catalog()
	assert.Same(t, before, after)
	assert.Equal(t, version, sameVersion)
	assert.ErrorIs(t, idx.LastError(), boom)
}

func TestCatalogReloaderStopWithoutStart(t *testing.T) {
	r := NewCatalogReloader(&fakeLoader{}, index.NewMemoryIndex(), logger.Nop(), time.Hour, nil, nil)
	r.Stop()
	r.Stop()
}

type fakeSessions struct {
	mu    sync.Mutex
	live  int
	calls []time.Duration
}

func (f *fakeSessions) Collect(ttl time.Duration) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ttl)
	removed := f.live
	f.live = 0
	return removed
}

func (f *fakeSessions) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live
}

func (f *fakeSessions) ttls() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]time.Duration(nil), f.calls...)
}

func TestSessionCollector(t *testing.T) {
	clk := testclock.NewClock(epoch)
	table := &fakeSessions{live: 3}

	sc := NewSessionCollector(table, logger.Nop(), time.Hour, 0, clk)
	sc.Start(context.Background())
	defer sc.Stop()

	require.NoError(t, clk.WaitAdvance(time.Hour, time.Second, 1))
	require.Eventually(t, func() bool { return len(table.ttls()) == 1 }, time.Second, 5*time.Millisecond)

	assert.Equal(t, []time.Duration{DefaultSessionIdleTTL}, table.ttls())
	assert.Equal(t, 0, table.Len())
	assert.Equal(t, 0, sc.Collect())
}

func TestSessionCollectorStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sc := NewSessionCollector(&fakeSessions{}, logger.Nop(), time.Hour, time.Minute, testclock.NewClock(epoch))
	sc.Start(ctx)

	cancel()
	sc.Stop()
}
