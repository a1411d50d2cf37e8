package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/model"
)

// pagedFetcher serves pages out of a fixed event list, applying only the
// paging part of the filters. It records every filter set it was asked for.
type pagedFetcher struct {
	mu     sync.Mutex
	all    []model.Event
	calls  []Filters
	err    error
	blocks map[string]chan struct{} // search text -> gate to release the call
}

func newPagedFetcher(n int) *pagedFetcher {
	f := &pagedFetcher{blocks: map[string]chan struct{}{}}
	for i := 1; i <= n; i++ {
		f.all = append(f.all, model.Event{ID: int64(i), Name: fmt.Sprintf("Event %d", i)})
	}
	return f
}

func (f *pagedFetcher) FetchEvents(ctx context.Context, flt Filters) (*model.PagedEvents, error) {
	f.mu.Lock()
	f.calls = append(f.calls, flt)
	gate := f.blocks[flt.Search]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	start := (flt.Page - 1) * flt.Limit
	end := start + flt.Limit
	if start > len(f.all) {
		start = len(f.all)
	}
	if end > len(f.all) {
		end = len(f.all)
	}
	return &model.PagedEvents{
		Events: append([]model.Event(nil), f.all[start:end]...),
		Total:  int64(len(f.all)),
		Page:   flt.Page,
		Limit:  flt.Limit,
	}, nil
}

func (f *pagedFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *pagedFetcher) lastCall() Filters {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *pagedFetcher) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestStartLoadsFirstPage(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f)

	c.Start()
	c.Wait()

	snap := c.Snapshot()
	assert.Len(t, snap.Events, DefaultLimit)
	assert.Equal(t, int64(30), snap.Total)
	assert.Equal(t, 1, snap.Page)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.True(t, snap.HasMore())
}

func TestLoadNextPageAppends(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f)
	c.Start()
	c.Wait()

	require.True(t, c.LoadNextPage())
	c.Wait()

	snap := c.Snapshot()
	assert.Len(t, snap.Events, 24)
	assert.Equal(t, 2, snap.Page)
	assert.Equal(t, int64(1), snap.Events[0].ID, "earlier pages stay in place")
	assert.Equal(t, int64(24), snap.Events[23].ID)

	require.True(t, c.LoadNextPage())
	c.Wait()
	snap = c.Snapshot()
	assert.Len(t, snap.Events, 30)
	assert.False(t, snap.HasMore())
}

func TestLoadNextPageStopsAtTotal(t *testing.T) {
	f := newPagedFetcher(5) // fits on one page
	c := NewController(context.Background(), f)
	c.Start()
	c.Wait()
	callsAfterStart := f.callCount()

	assert.False(t, c.LoadNextPage())
	c.Wait()
	assert.Equal(t, callsAfterStart, f.callCount(), "no fetch once everything is loaded")
}

func TestSearchResetsToFirstPage(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f)
	c.Start()
	c.Wait()
	require.True(t, c.LoadNextPage())
	c.Wait()
	require.Len(t, c.Snapshot().Events, 24)

	c.SetSearch("golang")
	c.Wait()

	last := f.lastCall()
	assert.Equal(t, "golang", last.Search)
	assert.Equal(t, 1, last.Page, "every filter change restarts at page 1")

	snap := c.Snapshot()
	assert.Len(t, snap.Events, DefaultLimit, "page 1 replaces, not appends")
	assert.Equal(t, "golang", snap.Filters.Search)
}

func TestCityAndCategoryFilterResetPage(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f)
	c.Start()
	c.Wait()
	require.True(t, c.LoadNextPage())
	c.Wait()

	c.SetCities([]string{"kosice", "online"})
	c.Wait()
	last := f.lastCall()
	assert.Equal(t, []string{"kosice", "online"}, last.Cities)
	assert.Equal(t, 1, last.Page)

	c.SetCategory("hackathon")
	c.Wait()
	last = f.lastCall()
	assert.Equal(t, "hackathon", last.Category)
	assert.Equal(t, []string{"kosice", "online"}, last.Cities, "other filters survive")
	assert.Equal(t, 1, last.Page)
}

func TestFetchFailureKeepsPreviousResults(t *testing.T) {
	f := newPagedFetcher(10)
	c := NewController(context.Background(), f)
	c.Start()
	c.Wait()
	require.Len(t, c.Snapshot().Events, DefaultLimit-2)

	f.setErr(&api.Error{Status: 500, Message: "Server error. Please try again later."})
	c.Refetch()
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "Server error. Please try again later.", snap.Err)
	assert.Len(t, snap.Events, DefaultLimit-2, "stale data beats no data")
	assert.False(t, snap.Loading)

	// Recovery clears the error again.
	f.setErr(nil)
	c.Refetch()
	c.Wait()
	snap = c.Snapshot()
	assert.Empty(t, snap.Err)
	assert.Len(t, snap.Events, DefaultLimit-2)
}

func TestLoadingClearsErrorImmediately(t *testing.T) {
	f := newPagedFetcher(10)
	c := NewController(context.Background(), f)
	f.setErr(&api.Error{Status: 500, Message: "boom"})
	c.Start()
	c.Wait()
	require.Equal(t, "boom", c.Snapshot().Err)

	gate := make(chan struct{})
	f.mu.Lock()
	f.blocks[""] = gate
	f.err = nil
	f.mu.Unlock()

	c.Refetch()
	snap := c.Snapshot()
	assert.True(t, snap.Loading)
	assert.Empty(t, snap.Err, "a new fetch starts with a clean error state")

	close(gate)
	c.Wait()
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f)

	slow := make(chan struct{})
	f.mu.Lock()
	f.blocks["go"] = slow
	f.mu.Unlock()

	c.SetSearch("go")     // will hang until released
	c.SetSearch("golang") // completes immediately
	// Give the fast response time to land, then release the slow one.
	for i := 0; i < 100 && c.Snapshot().Loading; i++ {
		time.Sleep(5 * time.Millisecond)
	}
	close(slow)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "golang", snap.Filters.Search)
	assert.False(t, snap.Loading)
	assert.Empty(t, snap.Err)
	assert.Len(t, snap.Events, DefaultLimit, "the superseded response must not clobber the newer one")
}

func TestDebouncedSearchCollapsesBursts(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f, WithDebounce(40*time.Millisecond))

	c.SetSearchDebounced("g")
	c.SetSearchDebounced("go")
	c.SetSearchDebounced("gol")

	time.Sleep(120 * time.Millisecond)
	c.Wait()

	assert.Equal(t, 1, f.callCount(), "one fetch for the whole burst")
	assert.Equal(t, "gol", f.lastCall().Search)
	assert.Equal(t, "gol", c.Snapshot().Filters.Search)
}

func TestDirectSearchSupersedesPendingDebounce(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f, WithDebounce(30*time.Millisecond))

	c.SetSearchDebounced("stale")
	c.SetSearch("")

	time.Sleep(100 * time.Millisecond)
	c.Wait()

	snap := c.Snapshot()
	assert.Equal(t, "", snap.Filters.Search, "the later direct write wins over the pending debounced one")
	assert.Equal(t, 1, f.callCount(), "the superseded debounced fetch is never issued")
	assert.Equal(t, "", f.lastCall().Search)
}

func TestFilterMutationSupersedesPendingDebounce(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f, WithDebounce(30*time.Millisecond))

	c.SetSearchDebounced("stale")
	c.SetCities([]string{"kosice"})

	time.Sleep(100 * time.Millisecond)
	c.Wait()

	snap := c.Snapshot()
	assert.Empty(t, snap.Filters.Search)
	assert.Equal(t, []string{"kosice"}, snap.Filters.Cities)
	assert.Equal(t, 1, f.callCount())
}

func TestLoadNextPageSupersedesPendingDebounce(t *testing.T) {
	f := newPagedFetcher(30)
	c := NewController(context.Background(), f, WithDebounce(30*time.Millisecond))
	c.Start()
	c.Wait()

	c.SetSearchDebounced("stale")
	require.True(t, c.LoadNextPage())

	time.Sleep(100 * time.Millisecond)
	c.Wait()

	snap := c.Snapshot()
	assert.Empty(t, snap.Filters.Search)
	assert.Equal(t, 2, snap.Page)
	assert.Len(t, snap.Events, 24, "paging proceeds without the stale search text")
}

func TestZeroDebounceFetchesImmediately(t *testing.T) {
	f := newPagedFetcher(5)
	c := NewController(context.Background(), f, WithDebounce(0))

	c.SetSearchDebounced("now")
	c.Wait()

	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, "now", f.lastCall().Search)
}

func TestOverlappingPagesKeepDuplicates(t *testing.T) {
	// A server whose data set shifts between page fetches can return the
	// same items on consecutive pages. Appending does not de-duplicate:
	// the full page is kept, duplicate ids and all.
	overlapping := FetcherFunc(func(ctx context.Context, flt Filters) (*model.PagedEvents, error) {
		return &model.PagedEvents{
			Events: []model.Event{{ID: 1, Name: "Event 1"}, {ID: 2, Name: "Event 2"}},
			Total:  4,
			Page:   flt.Page,
			Limit:  flt.Limit,
		}, nil
	})
	c := NewController(context.Background(), overlapping, WithLimit(2))
	c.Start()
	c.Wait()
	require.Len(t, c.Snapshot().Events, 2)

	require.True(t, c.LoadNextPage())
	c.Wait()

	snap := c.Snapshot()
	require.Len(t, snap.Events, 4, "page length is added wholesale, nothing silently dropped")
	assert.Equal(t, int64(1), snap.Events[0].ID)
	assert.Equal(t, int64(1), snap.Events[2].ID, "the repeated id survives as a duplicate entry")
	assert.Equal(t, int64(2), snap.Events[3].ID)
	assert.False(t, snap.HasMore())
}

func TestSubscriberSeesLoadingThenResult(t *testing.T) {
	f := newPagedFetcher(3)
	c := NewController(context.Background(), f)

	var mu sync.Mutex
	var states []Snapshot
	c.Subscribe(func(s Snapshot) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	c.Start()
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(states), 2)
	assert.True(t, states[0].Loading)
	final := states[len(states)-1]
	assert.False(t, final.Loading)
	assert.Len(t, final.Events, 3)
}
