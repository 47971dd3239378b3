// Package query defines the immutable list query value shared by every list
// view: search, filters, ranges and pagination. A query's canonical key is
// both the result-cache key and the deep-link serialization.
package query

import (
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"
)

// PageSizes is the fixed set of allowed page sizes. UIs must not offer
// arbitrary values.
var PageSizes = []int{5, 10, 25, 50, 100}

// DefaultPageSize is used when a query is built without an explicit size.
const DefaultPageSize = 25

// ValidPageSize reports whether n is one of the allowed page sizes.
func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if n == size {
			return true
		}
	}
	return false
}

// DateRange bounds rows by creation time, unix seconds. Zero means unbounded.
type DateRange struct {
	Start int64
	End   int64
}

// AmountRange bounds rows by amount. Nil means unbounded.
type AmountRange struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// ListQuery is an immutable list query. All With* methods return a copy;
// every change except pagination resets the page to 1, since changing what
// you are looking for invalidates your position in the results.
type ListQuery struct {
	SearchTerm string
	Filters    map[string]string
	Dates      DateRange
	Amounts    AmountRange
	Page       int
	PageSize   int
	SortKey    string
}

// New returns an empty query on page 1 with the default page size.
func New() ListQuery {
	return ListQuery{Page: 1, PageSize: DefaultPageSize}
}

func (q ListQuery) clone() ListQuery {
	filters := make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		filters[k] = v
	}
	q.Filters = filters
	return q
}

// WithSearch returns a copy with the search term replaced and the page reset.
func (q ListQuery) WithSearch(term string) ListQuery {
	out := q.clone()
	out.SearchTerm = term
	out.Page = 1
	return out
}

// WithFilter returns a copy with one filter set and the page reset. An empty
// value removes the filter.
func (q ListQuery) WithFilter(key, value string) ListQuery {
	out := q.clone()
	if value == "" {
		delete(out.Filters, key)
	} else {
		out.Filters[key] = value
	}
	out.Page = 1
	return out
}

// WithDateRange returns a copy with the date range replaced and the page reset.
func (q ListQuery) WithDateRange(start, end int64) ListQuery {
	out := q.clone()
	out.Dates = DateRange{Start: start, End: end}
	out.Page = 1
	return out
}

// WithAmountRange returns a copy with the amount range replaced and the page
// reset.
func (q ListQuery) WithAmountRange(min, max *decimal.Decimal) ListQuery {
	out := q.clone()
	out.Amounts = AmountRange{Min: min, Max: max}
	out.Page = 1
	return out
}

// WithSort returns a copy sorted by key and the page reset.
func (q ListQuery) WithSort(key string) ListQuery {
	out := q.clone()
	out.SortKey = key
	out.Page = 1
	return out
}

// WithPage returns a copy on page n. Filters are untouched.
func (q ListQuery) WithPage(n int) ListQuery {
	out := q.clone()
	if n < 1 {
		n = 1
	}
	out.Page = n
	return out
}

// WithPageSize returns a copy with the page size set. Invalid sizes fall back
// to the default. Filters are untouched.
func (q ListQuery) WithPageSize(n int) ListQuery {
	out := q.clone()
	if !ValidPageSize(n) {
		n = DefaultPageSize
	}
	out.PageSize = n
	return out
}

// Params serializes the query into url.Values, the shape the backend's list
// endpoints consume and the nav package persists.
func (q ListQuery) Params() url.Values {
	values := url.Values{}

	if q.SearchTerm != "" {
		values.Set("search", q.SearchTerm)
	}
	for key, value := range q.Filters {
		values.Set(key, value)
	}
	if q.Dates.Start != 0 {
		values.Set("from", strconv.FormatInt(q.Dates.Start, 10))
	}
	if q.Dates.End != 0 {
		values.Set("to", strconv.FormatInt(q.Dates.End, 10))
	}
	if q.Amounts.Min != nil {
		values.Set("minAmount", q.Amounts.Min.String())
	}
	if q.Amounts.Max != nil {
		values.Set("maxAmount", q.Amounts.Max.String())
	}
	if q.SortKey != "" {
		values.Set("sort", q.SortKey)
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	pageSize := q.PageSize
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	values.Set("page", strconv.Itoa(page))
	values.Set("pageSize", strconv.Itoa(pageSize))

	return values
}

// Key is the canonical cache key: two queries are equal iff their keys are
// equal. url.Values.Encode sorts by key, so the encoding is stable.
func (q ListQuery) Key() string {
	return q.Params().Encode()
}

// Equal reports whether two queries would produce the same result set.
func (q ListQuery) Equal(other ListQuery) bool {
	return q.Key() == other.Key()
}

// knownKeys are the params owned by ListQuery itself; everything else in a
// parsed location is treated as an entity filter.
var knownKeys = map[string]bool{
	"search": true, "from": true, "to": true,
	"minAmount": true, "maxAmount": true,
	"sort": true, "page": true, "pageSize": true,
}

// FromParams rebuilds a query from url.Values, the inverse of Params. Used to
// populate initial state from the location on mount.
func FromParams(values url.Values) ListQuery {
	q := New()
	q.Filters = map[string]string{}

	q.SearchTerm = values.Get("search")
	q.SortKey = values.Get("sort")

	if v := values.Get("from"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.Dates.Start = n
		}
	}
	if v := values.Get("to"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			q.Dates.End = n
		}
	}
	if v := values.Get("minAmount"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			q.Amounts.Min = &d
		}
	}
	if v := values.Get("maxAmount"); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			q.Amounts.Max = &d
		}
	}
	if v := values.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			q.Page = n
		}
	}
	if v := values.Get("pageSize"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && ValidPageSize(n) {
			q.PageSize = n
		}
	}

	for key := range values {
		if !knownKeys[key] {
			q.Filters[key] = values.Get(key)
		}
	}

	return q
}
