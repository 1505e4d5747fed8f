package snow

import "errors"

// Sentinel errors for recognizable Table API failures.
var (
	// ErrUnauthorized maps 401/403 responses; with OAuth the client retries
	// once after invalidating the cached token before surfacing this.
	ErrUnauthorized = errors.New("servicenow: unauthorized")

	// ErrNotFound maps 404 responses for single-record operations.
	ErrNotFound = errors.New("servicenow: record not found")
)
