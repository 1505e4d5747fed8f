package catalog

import "context"

// ItemFilter narrows FetchItems results.
type ItemFilter struct {
	CategoryID      string
	IncludeInactive bool
}

// Gateway is the read-only data access contract the analytics engine
// consumes. The ServiceNow implementation lives in snowgateway; tests use
// in-memory fakes.
type Gateway interface {
	FetchItems(ctx context.Context, filter ItemFilter) ([]Item, error)
	FetchCategories(ctx context.Context, includeInactive bool) ([]Category, error)
	FetchOrderEvents(ctx context.Context, window Window, categoryID string) ([]OrderEvent, error)
}
