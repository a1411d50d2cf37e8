// Package query owns the event-discovery state: filter criteria, the fetched
// result list, and the loading/error flags derived from talking to the events
// API. Every filter mutation issues exactly one fetch; responses are
// reconciled under a last-request-wins guard so a slow page-1 response can
// never clobber a newer search.
package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/api"
	"github.com/bitevents/bitevents/internal/model"
)

// DefaultLimit is the page size used when none is configured.
const DefaultLimit = 12

// defaultDebounce matches the search-box debounce of the web client.
const defaultDebounce = 500 * time.Millisecond

// Filters is the declarative query state. Empty Search, empty Cities, and
// empty Category all mean "no filter". Page is 1-based.
type Filters struct {
	Search   string
	Cities   []string
	Category string
	Page     int
	Limit    int
}

// clone returns a deep copy so stored filter state is never aliased by callers.
func (f Filters) clone() Filters {
	out := f
	if f.Cities != nil {
		out.Cities = append([]string(nil), f.Cities...)
	}
	return out
}

// withSearch returns f with the search text replaced and the page reset.
func (f Filters) withSearch(q string) Filters {
	out := f.clone()
	out.Search = q
	out.Page = 1
	return out
}

// withCities returns f with the city set replaced and the page reset.
func (f Filters) withCities(cities []string) Filters {
	out := f.clone()
	out.Cities = append([]string(nil), cities...)
	out.Page = 1
	return out
}

// withCategory returns f with the category replaced and the page reset.
func (f Filters) withCategory(category string) Filters {
	out := f.clone()
	out.Category = category
	out.Page = 1
	return out
}

// withNextPage returns f advanced by one page, other criteria untouched.
func (f Filters) withNextPage() Filters {
	out := f.clone()
	out.Page++
	return out
}

// Fetcher performs the actual events query. The production implementation
// wraps api.Client; tests substitute their own.
type Fetcher interface {
	FetchEvents(ctx context.Context, f Filters) (*model.PagedEvents, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, f Filters) (*model.PagedEvents, error)

// FetchEvents implements Fetcher.
func (fn FetcherFunc) FetchEvents(ctx context.Context, f Filters) (*model.PagedEvents, error) {
	return fn(ctx, f)
}

// NewAPIFetcher adapts the REST client to the Fetcher interface.
func NewAPIFetcher(c *api.Client) Fetcher {
	return FetcherFunc(func(ctx context.Context, f Filters) (*model.PagedEvents, error) {
		return c.ListEvents(ctx, api.ListEventsOptions{
			Search:   f.Search,
			Cities:   f.Cities,
			Category: f.Category,
			Page:     f.Page,
			Limit:    f.Limit,
		})
	})
}

// Snapshot is an immutable view of the controller state. Loading, Err != ""
// and an empty result list are the three mutually exclusive render states.
type Snapshot struct {
	Events  []model.Event
	Total   int64
	Page    int
	Loading bool
	Err     string
	Filters Filters
}

// HasMore reports whether another page can still be loaded.
func (s Snapshot) HasMore() bool {
	return int64(len(s.Events)) < s.Total
}

// Controller drives the events list. All methods are safe for concurrent use.
type Controller struct {
	mu      sync.Mutex
	ctx     context.Context
	fetcher Fetcher
	logger  *zap.Logger

	filters Filters
	events  []model.Event
	total   int64
	page    int
	loading bool
	errMsg  string

	// gen identifies the most recently issued fetch; responses carrying an
	// older generation are discarded.
	gen uint64
	wg  sync.WaitGroup

	debounce      time.Duration
	searchTimer   *time.Timer
	pendingSearch string
	// searchSeq invalidates a pending debounced search: the timer callback
	// only applies its text while no other filter mutation happened since it
	// was scheduled.
	searchSeq uint64

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Snapshot)
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithLimit overrides the page size.
func WithLimit(limit int) ControllerOption {
	return func(c *Controller) { c.filters.Limit = limit }
}

// WithDebounce overrides the debounce window of SetSearchDebounced.
// Zero disables debouncing entirely.
func WithDebounce(d time.Duration) ControllerOption {
	return func(c *Controller) { c.debounce = d }
}

// WithControllerLogger sets the structured logger.
func WithControllerLogger(l *zap.Logger) ControllerOption {
	return func(c *Controller) { c.logger = l }
}

// NewController builds a Controller with default filters (page 1, limit 12).
// ctx bounds every fetch the controller issues. No fetch happens until Start
// or the first mutation.
func NewController(ctx context.Context, fetcher Fetcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		ctx:      ctx,
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		filters:  Filters{Page: 1, Limit: DefaultLimit},
		page:     1,
		debounce: defaultDebounce,
		subs:     map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start issues the initial fetch for the default filter state.
func (c *Controller) Start() {
	c.mu.Lock()
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetSearch replaces the free-text filter and resets to page 1.
func (c *Controller) SetSearch(q string) {
	c.mu.Lock()
	c.cancelPendingSearchLocked()
	c.filters = c.filters.withSearch(q)
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetSearchDebounced schedules SetSearch after the debounce window, so a
// keystroke burst results in a single fetch for the final text. Any direct
// filter mutation before the window elapses supersedes the pending text;
// the scheduled fetch is then dropped rather than applied late.
func (c *Controller) SetSearchDebounced(q string) {
	if c.debounce <= 0 {
		c.SetSearch(q)
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingSearch = q
	c.searchSeq++
	seq := c.searchSeq
	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.debounce, func() {
		c.mu.Lock()
		if seq != c.searchSeq {
			// A later mutation owns the filter state; this text is stale.
			c.mu.Unlock()
			return
		}
		c.searchTimer = nil
		c.filters = c.filters.withSearch(c.pendingSearch)
		snap := c.beginFetchLocked()
		c.mu.Unlock()
		c.notify(snap)
	})
}

// cancelPendingSearchLocked drops a not-yet-fired debounced search. Every
// direct mutation calls it so "last filter-state write wins" holds across
// the debounce window too.
func (c *Controller) cancelPendingSearchLocked() {
	c.searchSeq++
	if c.searchTimer != nil {
		c.searchTimer.Stop()
		c.searchTimer = nil
	}
}

// SetCities replaces the city filter and resets to page 1. An empty slice
// means "all cities".
func (c *Controller) SetCities(cities []string) {
	c.mu.Lock()
	c.cancelPendingSearchLocked()
	c.filters = c.filters.withCities(cities)
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// SetCategory replaces the category filter and resets to page 1.
func (c *Controller) SetCategory(category string) {
	c.mu.Lock()
	c.cancelPendingSearchLocked()
	c.filters = c.filters.withCategory(category)
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// LoadNextPage advances one page, keeping all other criteria. It reports
// false, without fetching, once every known result is already loaded.
func (c *Controller) LoadNextPage() bool {
	c.mu.Lock()
	if int64(len(c.events)) >= c.total {
		c.mu.Unlock()
		return false
	}
	c.cancelPendingSearchLocked()
	c.filters = c.filters.withNextPage()
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// Refetch re-issues the current filter state unchanged.
func (c *Controller) Refetch() {
	c.mu.Lock()
	c.cancelPendingSearchLocked()
	snap := c.beginFetchLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers fn to run after every state change. The returned
// function removes the subscription.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Wait blocks until every in-flight fetch has resolved. Intended for tests
// and for draining before shutdown.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// beginFetchLocked issues one fetch for the current filter state and returns
// the loading snapshot for the caller to publish after releasing mu.
func (c *Controller) beginFetchLocked() Snapshot {
	c.gen++
	gen := c.gen
	filters := c.filters.clone()
	c.loading = true
	c.errMsg = ""

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		resp, err := c.fetcher.FetchEvents(c.ctx, filters)

		c.mu.Lock()
		if gen != c.gen {
			// A newer request was issued while this one was in flight; its
			// response owns the state now.
			latest := c.gen
			c.mu.Unlock()
			c.logger.Debug("discarding stale response",
				zap.Uint64("generation", gen),
				zap.Uint64("latest", latest))
			return
		}

		c.loading = false
		if err != nil {
			// Keep the previous result set; only the error flag changes.
			c.errMsg = api.Message(err)
			c.logger.Warn("events fetch failed", zap.String("error", c.errMsg))
		} else {
			if filters.Page > 1 {
				c.events = append(c.events, resp.Events...)
			} else {
				c.events = resp.Events
			}
			c.total = resp.Total
			c.page = filters.Page
		}
		snap := c.snapshotLocked()
		c.mu.Unlock()

		c.notify(snap)
	}()

	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		Events:  append([]model.Event(nil), c.events...),
		Total:   c.total,
		Page:    c.page,
		Loading: c.loading,
		Err:     c.errMsg,
		Filters: c.filters.clone(),
	}
}

func (c *Controller) notify(snap Snapshot) {
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
