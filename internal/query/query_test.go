package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterChangesResetPage(t *testing.T) {
	q := New().WithPage(4)
	require.Equal(t, 4, q.Page)

	tests := []struct {
		name   string
		change func(ListQuery) ListQuery
	}{
		{"search", func(q ListQuery) ListQuery { return q.WithSearch("abc") }},
		{"filter", func(q ListQuery) ListQuery { return q.WithFilter("status", "pending") }},
		{"date range", func(q ListQuery) ListQuery { return q.WithDateRange(100, 200) }},
		{"amount range", func(q ListQuery) ListQuery {
			min := decimal.NewFromInt(1)
			return q.WithAmountRange(&min, nil)
		}},
		{"sort", func(q ListQuery) ListQuery { return q.WithSort("created_at") }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.change(q)
			assert.Equal(t, 1, got.Page)
			// The original value is untouched.
			assert.Equal(t, 4, q.Page)
		})
	}
}

func TestPaginationDoesNotResetFilters(t *testing.T) {
	q := New().WithFilter("status", "pending").WithSearch("alice").WithPage(3)

	assert.Equal(t, 3, q.Page)
	assert.Equal(t, "pending", q.Filters["status"])
	assert.Equal(t, "alice", q.SearchTerm)

	q = q.WithPageSize(50)
	assert.Equal(t, 50, q.PageSize)
	assert.Equal(t, "pending", q.Filters["status"])
	assert.Equal(t, 3, q.Page)
}

func TestPageSizeRestrictedToAllowedSet(t *testing.T) {
	for _, size := range PageSizes {
		assert.True(t, ValidPageSize(size))
	}
	for _, size := range []int{0, 1, 7, 20, 99, 1000, -5} {
		assert.False(t, ValidPageSize(size), "size %d", size)
	}

	q := New().WithPageSize(7)
	assert.Equal(t, DefaultPageSize, q.PageSize)
}

func TestPageNeverBelowOne(t *testing.T) {
	q := New().WithPage(0)
	assert.Equal(t, 1, q.Page)
	q = q.WithPage(-3)
	assert.Equal(t, 1, q.Page)
}

func TestKeyEquality(t *testing.T) {
	a := New().WithFilter("status", "pending").WithSearch("bob").WithPage(2)
	b := New().WithSearch("bob").WithFilter("status", "pending").WithPage(2)
	c := b.WithPage(3)

	assert.Equal(t, a.Key(), b.Key())
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), c.Key())
	assert.False(t, a.Equal(c))
}

func TestParamsRoundTrip(t *testing.T) {
	min := decimal.RequireFromString("0.5")
	max := decimal.RequireFromString("100")

	q := New().
		WithFilter("status", "awaiting_admin_review").
		WithFilter("chain", "solana").
		WithSearch("alice").
		WithDateRange(1700000000, 1700100000).
		WithAmountRange(&min, &max).
		WithSort("created_at").
		WithPage(2).
		WithPageSize(10)

	parsed := FromParams(q.Params())

	assert.True(t, q.Equal(parsed))
	assert.Equal(t, "awaiting_admin_review", parsed.Filters["status"])
	assert.Equal(t, "solana", parsed.Filters["chain"])
	assert.Equal(t, int64(1700000000), parsed.Dates.Start)
	require.NotNil(t, parsed.Amounts.Min)
	assert.True(t, parsed.Amounts.Min.Equal(min))
	assert.Equal(t, 2, parsed.Page)
	assert.Equal(t, 10, parsed.PageSize)
}

func TestFromParamsIgnoresGarbage(t *testing.T) {
	q := New().WithPage(2)
	values := q.Params()
	values.Set("page", "zero")
	values.Set("pageSize", "13")

	parsed := FromParams(values)
	assert.Equal(t, 1, parsed.Page)
	assert.Equal(t, DefaultPageSize, parsed.PageSize)
}
