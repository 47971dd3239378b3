// Package nav models the navigable location as a serialization target for
// view state. The location is written through Replace for state churn and
// Push for deliberate navigation, and read back only on mount or explicit
// back/forward movement, which keeps state and location from ping-ponging.
package nav

import (
	"net/url"

	"github.com/custodia/ops-console/internal/query"
)

// Tab identifies one of the console's list views.
type Tab string

const (
	TabDeposits      Tab = "deposits"
	TabWithdrawals   Tab = "withdrawals"
	TabTransactions  Tab = "transactions"
	TabWallets       Tab = "wallets"
	TabDepositEvents Tab = "deposit-events"
	TabWebhooks      Tab = "webhooks"
)

// Tabs lists every view in display order.
var Tabs = []Tab{
	TabDeposits, TabWithdrawals, TabTransactions,
	TabWallets, TabDepositEvents, TabWebhooks,
}

// Route is the deep-linkable subset of view state: the active tab plus the
// tab's list query.
type Route struct {
	Tab   Tab
	Query query.ListQuery
}

// String serializes the route, e.g. "withdrawals?page=2&pageSize=10&status=pending".
func (r Route) String() string {
	params := r.Query.Params()
	return string(r.Tab) + "?" + params.Encode()
}

// ParseRoute rebuilds a route from its serialized form. An unparseable or
// empty location falls back to the first tab with a fresh query.
func ParseRoute(s string) Route {
	u, err := url.Parse(s)
	if err != nil || u.Path == "" {
		return Route{Tab: Tabs[0], Query: query.New()}
	}

	tab := Tab(u.Path)
	known := false
	for _, t := range Tabs {
		if t == tab {
			known = true
			break
		}
	}
	if !known {
		return Route{Tab: Tabs[0], Query: query.New()}
	}

	return Route{Tab: tab, Query: query.FromParams(u.Query())}
}

// History is a linear navigation history with replace semantics for state
// churn. Filter keystrokes and page flips never grow the stack.
type History struct {
	entries []Route
	pos     int
}

// NewHistory starts a history at the given route.
func NewHistory(initial Route) *History {
	return &History{entries: []Route{initial}}
}

// Current returns the route at the history cursor.
func (h *History) Current() Route {
	return h.entries[h.pos]
}

// Replace overwrites the current entry without creating a new one.
func (h *History) Replace(r Route) {
	h.entries[h.pos] = r
}

// Push appends a new entry, discarding any forward entries.
func (h *History) Push(r Route) {
	h.entries = append(h.entries[:h.pos+1], r)
	h.pos = len(h.entries) - 1
}

// Back moves the cursor one entry back. Returns false at the start.
func (h *History) Back() (Route, bool) {
	if h.pos == 0 {
		return Route{}, false
	}
	h.pos--
	return h.entries[h.pos], true
}

// Forward moves the cursor one entry forward. Returns false at the end.
func (h *History) Forward() (Route, bool) {
	if h.pos >= len(h.entries)-1 {
		return Route{}, false
	}
	h.pos++
	return h.entries[h.pos], true
}

// Len reports the number of entries in the history.
func (h *History) Len() int {
	return len(h.entries)
}
