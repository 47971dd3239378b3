// Package listctrl drives every filterable, paginated, polled list in the
// console. One Controller owns the filter state, the debounced search input,
// a per-query result cache and a background poll loop for a single view.
package listctrl

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/query"
)

// FetchFunc retrieves one page of rows for a query.
type FetchFunc[T models.Entity] func(q query.ListQuery) (*models.ListResult[T], error)

// Options tunes the controller's timers. Zero values fall back to defaults.
type Options struct {
	PollInterval   time.Duration
	SearchDebounce time.Duration
}

const (
	defaultPollInterval   = 30 * time.Second
	defaultSearchDebounce = 400 * time.Millisecond
)

// Snapshot is the controller state the UI renders from. Result stays populated
// with the last good data even while an error banner is shown.
type Snapshot[T models.Entity] struct {
	Query   query.ListQuery
	Result  *models.ListResult[T]
	Loading bool
	Err     string
}

// Controller keeps one list view's data fresh. All methods are safe to call
// from the UI event loop while fetches and timers run in the background.
type Controller[T models.Entity] struct {
	mu       sync.Mutex
	fetch    FetchFunc[T]
	opts     Options
	onUpdate func()

	current query.ListQuery
	result  *models.ListResult[T]
	loading bool
	errMsg  string

	cache map[string]*models.ListResult[T]

	debounce *time.Timer

	pollStop    chan struct{}
	pollRunning bool
	closed      bool
}

// New creates a controller for one view. onUpdate is a wake-up signal fired
// after every state change; the consumer pulls the latest state via Snapshot.
func New[T models.Entity](fetch FetchFunc[T], initial query.ListQuery, opts Options, onUpdate func()) *Controller[T] {
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.SearchDebounce <= 0 {
		opts.SearchDebounce = defaultSearchDebounce
	}
	if onUpdate == nil {
		onUpdate = func() {}
	}

	return &Controller[T]{
		fetch:    fetch,
		opts:     opts,
		onUpdate: onUpdate,
		current:  initial,
		cache:    make(map[string]*models.ListResult[T]),
	}
}

// Start issues the initial fetch and begins background polling. Exactly one
// poll loop runs per controller.
func (c *Controller[T]) Start() {
	c.mu.Lock()
	if c.closed || c.pollRunning {
		c.mu.Unlock()
		return
	}
	c.pollRunning = true
	c.pollStop = make(chan struct{})
	go c.pollLoop(c.pollStop)
	q := c.current
	c.mu.Unlock()

	c.fetchQuery(q, false, true)
}

// Close tears down the poll and debounce timers. The controller must not be
// used afterwards.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.pollRunning {
		close(c.pollStop)
		c.pollRunning = false
	}
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

func (c *Controller[T]) pollLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			q := c.current
			c.mu.Unlock()
			c.fetchQuery(q, true, false)
		}
	}
}

// SetSearchTerm buffers free-text input behind the debounce window. Each call
// cancels and replaces the pending timer, so a burst of keystrokes produces
// one effective query change carrying the last value.
func (c *Controller[T]) SetSearchTerm(term string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = time.AfterFunc(c.opts.SearchDebounce, func() {
		c.applySearch(term)
	})
}

func (c *Controller[T]) applySearch(term string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	q := c.current.WithSearch(term)
	if q.Equal(c.current) {
		c.mu.Unlock()
		return
	}
	c.current = q
	c.mu.Unlock()

	c.fetchQuery(q, false, true)
}

// SetFilter applies a discrete filter change immediately and resets the page.
func (c *Controller[T]) SetFilter(key, value string) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithFilter(key, value) })
}

// SetDateRange applies a date bound immediately and resets the page.
func (c *Controller[T]) SetDateRange(start, end int64) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithDateRange(start, end) })
}

// SetAmountRange applies an amount bound immediately and resets the page.
func (c *Controller[T]) SetAmountRange(min, max *decimal.Decimal) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithAmountRange(min, max) })
}

// SetSort applies a sort key immediately and resets the page.
func (c *Controller[T]) SetSort(key string) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithSort(key) })
}

// SetQuery replaces the whole query at once, as history restore does when the
// operator navigates back or forward.
func (c *Controller[T]) SetQuery(q query.ListQuery) {
	c.applyQuery(func(query.ListQuery) query.ListQuery { return q })
}

// SetPage moves to page n without touching the filters.
func (c *Controller[T]) SetPage(n int) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithPage(n) })
}

// SetPageSize changes the page size without touching the filters.
func (c *Controller[T]) SetPageSize(n int) {
	c.applyQuery(func(q query.ListQuery) query.ListQuery { return q.WithPageSize(n) })
}

func (c *Controller[T]) applyQuery(change func(query.ListQuery) query.ListQuery) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	q := change(c.current)
	if q.Equal(c.current) {
		c.mu.Unlock()
		return
	}
	c.current = q
	c.mu.Unlock()

	c.fetchQuery(q, false, true)
}

// Refresh re-fetches the current query, bypassing the cache. This is the
// explicit retry path after a failed fetch.
func (c *Controller[T]) Refresh() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	q := c.current
	c.mu.Unlock()

	c.fetchQuery(q, false, false)
}

// fetchQuery resolves one query. Cache hits are served without flipping the
// loading flag and without a backend call; the poll loop reconciles them.
// Silent fetches never surface errors to the UI.
func (c *Controller[T]) fetchQuery(q query.ListQuery, silent bool, useCache bool) {
	key := q.Key()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if useCache {
		if cached, ok := c.cache[key]; ok {
			c.result = cached
			c.errMsg = ""
			c.notifyLocked()
			c.mu.Unlock()
			return
		}
	}
	if !silent {
		c.loading = true
		c.notifyLocked()
	}
	c.mu.Unlock()

	go func() {
		result, err := c.fetch(q)

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return
		}
		// A response for a query that is no longer current is dropped; the
		// fetch for the newer query owns the screen.
		if key != c.current.Key() {
			if !silent {
				c.loading = false
				c.notifyLocked()
			}
			return
		}

		if err != nil {
			if silent {
				logger.Debug("Silent poll failed for %q: %v", key, err)
				return
			}
			logger.Error("List fetch failed for %q: %v", key, err)
			c.loading = false
			// Previous result stays on screen; never blank the table.
			c.errMsg = err.Error()
			c.notifyLocked()
			return
		}

		c.result = result
		c.cache[key] = result
		c.errMsg = ""
		if !silent {
			c.loading = false
		}
		c.notifyLocked()
	}()
}

// PatchRow applies an optimistic in-place update to one row of the current
// result. The patch is superseded by the next successful fetch; local state is
// never authoritative beyond one poll interval.
func (c *Controller[T]) PatchRow(id string, patch func(T) T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.result == nil {
		return false
	}
	for i, item := range c.result.Items {
		if item.EntityID() == id {
			c.result.Items[i] = patch(item)
			c.notifyLocked()
			return true
		}
	}
	return false
}

// DismissError clears the visible error banner.
func (c *Controller[T]) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errMsg != "" {
		c.errMsg = ""
		c.notifyLocked()
	}
}

// Snapshot returns the current render state.
func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Query returns the current effective query.
func (c *Controller[T]) Query() query.ListQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *Controller[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Query:   c.current,
		Result:  c.result,
		Loading: c.loading,
		Err:     c.errMsg,
	}
}

func (c *Controller[T]) notifyLocked() {
	// Delivered off the lock so the callback may call back into the controller.
	go c.onUpdate()
}
