package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"greenroute/internal/infra/routing/graph"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	mu      sync.Mutex
	calls   map[string]int
	delay   time.Duration
	err     error
	regions []string
	loads   atomic.Int32

	// started is closed once a load begins; release unblocks it
	started chan struct{}
	release chan struct{}
	loadErr error // ctx.Err() of the load context when it finished
}

func newFakeLoader(regions ...string) *fakeLoader {
	return &fakeLoader{calls: make(map[string]int), regions: regions}
}

func (f *fakeLoader) LoadGraph(ctx context.Context, region string) (*graph.Graph, error) {
	f.loads.Add(1)
	f.mu.Lock()
	f.calls[region]++
	f.mu.Unlock()

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.started != nil {
		close(f.started)
		select {
		case <-f.release:
		case <-ctx.Done():
		}

		f.mu.Lock()
		f.loadErr = ctx.Err()
		f.mu.Unlock()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}

	return graph.New(region, []graph.Node{{ID: 1, Lat: 12.97, Lng: 77.59}}, nil, 1.0)
}

func (f *fakeLoader) HasRegion(region string) bool {
	for _, name := range f.regions {
		if name == region {
			return true
		}
	}

	return false
}

func (f *fakeLoader) Regions() []string {
	return f.regions
}

func (f *fakeLoader) callsFor(region string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[region]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRegionCache_Get_CachesGraph(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	c := New(loader, 2, 0, testLogger())

	first, err := c.Get(context.Background(), "bengaluru")
	require.NoError(t, err)
	second, err := c.Get(context.Background(), "bengaluru")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, loader.callsFor("bengaluru"))
	assert.True(t, c.Contains("bengaluru"))
	assert.Equal(t, 1, c.Len())
}

func TestRegionCache_Get_UnknownRegion(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	c := New(loader, 2, 0, testLogger())

	_, err := c.Get(context.Background(), "goa")
	assert.True(t, errors.Is(err, ErrUnknownRegion))
	assert.Equal(t, int32(0), loader.loads.Load())
}

func TestRegionCache_Get_LoadErrorIsNotCached(t *testing.T) {
	loadErr := errors.New("bucket unavailable")
	loader := newFakeLoader("bengaluru")
	loader.err = loadErr
	c := New(loader, 2, 0, testLogger())

	_, err := c.Get(context.Background(), "bengaluru")
	assert.True(t, errors.Is(err, loadErr))
	assert.False(t, c.Contains("bengaluru"))

	loader.err = nil
	_, err = c.Get(context.Background(), "bengaluru")
	require.NoError(t, err)
	assert.Equal(t, 2, loader.callsFor("bengaluru"))
}

func TestRegionCache_EvictsLeastRecentlyUsed(t *testing.T) {
	loader := newFakeLoader("a", "b", "c")
	c := New(loader, 2, 0, testLogger())
	ctx := context.Background()

	for _, region := range []string{"a", "b", "a", "c"} {
		_, err := c.Get(ctx, region)
		require.NoError(t, err)
	}

	assert.True(t, c.Contains("a"))
	assert.False(t, c.Contains("b"), "b was least recently used")
	assert.True(t, c.Contains("c"))

	// Alternating between two regions no longer reloads either of them
	for range 5 {
		_, err := c.Get(ctx, "a")
		require.NoError(t, err)
		_, err = c.Get(ctx, "c")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, loader.callsFor("a"))
	assert.Equal(t, 1, loader.callsFor("c"))
}

func TestRegionCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	loader.delay = 50 * time.Millisecond
	c := New(loader, 2, 0, testLogger())

	var wg sync.WaitGroup
	results := make([]*graph.Graph, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := c.Get(context.Background(), "bengaluru")
			assert.NoError(t, err)
			results[i] = g
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, loader.callsFor("bengaluru"))
	for _, g := range results {
		assert.Same(t, results[0], g)
	}
}

func TestRegionCache_Get_CancelledCallerDoesNotFailSharedLoad(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	loader.started = make(chan struct{})
	loader.release = make(chan struct{})
	c := New(loader, 2, 0, testLogger())

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Get(leaderCtx, "bengaluru")
		leaderErr <- err
	}()
	<-loader.started

	type outcome struct {
		g   *graph.Graph
		err error
	}
	follower := make(chan outcome, 1)
	go func() {
		g, err := c.Get(context.Background(), "bengaluru")
		follower <- outcome{g: g, err: err}
	}()

	cancel()
	assert.True(t, errors.Is(<-leaderErr, context.Canceled))

	// Give the follower time to join the running load before it completes
	time.Sleep(20 * time.Millisecond)
	close(loader.release)

	got := <-follower
	require.NoError(t, got.err)
	require.NotNil(t, got.g)
	assert.Equal(t, "bengaluru", got.g.Region())
	assert.Equal(t, 1, loader.callsFor("bengaluru"))
	assert.True(t, c.Contains("bengaluru"))

	loader.mu.Lock()
	defer loader.mu.Unlock()
	assert.NoError(t, loader.loadErr)
}

func TestRegionCache_Get_LoadTimeout(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	loader.started = make(chan struct{})
	loader.release = make(chan struct{})
	c := New(loader, 2, 20*time.Millisecond, testLogger())

	_, err := c.Get(context.Background(), "bengaluru")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, c.Contains("bengaluru"))
}

func TestRegionCache_Peek_DoesNotLoad(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	c := New(loader, 2, 0, testLogger())

	g, ok := c.Peek("bengaluru")
	assert.False(t, ok)
	assert.Nil(t, g)
	assert.Equal(t, int32(0), loader.loads.Load())

	loaded, err := c.Get(context.Background(), "bengaluru")
	require.NoError(t, err)

	g, ok = c.Peek("bengaluru")
	require.True(t, ok)
	assert.Same(t, loaded, g)
	assert.Equal(t, int32(1), loader.loads.Load())
}

func TestRegionCache_Purge(t *testing.T) {
	loader := newFakeLoader("bengaluru")
	c := New(loader, 0, 0, testLogger())

	_, err := c.Get(context.Background(), "bengaluru")
	require.NoError(t, err)

	c.Purge()
	assert.Zero(t, c.Len())
	assert.Equal(t, []string{"bengaluru"}, c.Regions())
}
