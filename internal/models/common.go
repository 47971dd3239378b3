package models

type APIResponse[T any] struct {
	Result  T      `json:"result" validate:"required"`
	Message string `json:"message,omitempty"`
}

// ListResult is one page of rows for a list view, together with the
// server-computed aggregates for the whole filtered set (total USD, counts
// by status and so on).
type ListResult[T Entity] struct {
	Items      []T                `json:"items" validate:"required"`
	TotalCount int                `json:"total_count" validate:"required"`
	Aggregates map[string]float64 `json:"aggregates,omitempty"`
}

// Entity is any row type the list views can display. The id must be stable
// across refetches so rows can be patched in place.
type Entity interface {
	EntityID() string
}

// AckResponse is the body of mutating endpoints that return no payload.
type AckResponse = APIResponse[bool]
