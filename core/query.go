package core

import (
	"context"
)

// QueryClient defines the interface for running SQL against a warehouse
type QueryClient interface {
	// Query executes a query and returns the rows keyed by column name
	Query(ctx context.Context, query string, args ...any) ([]map[string]interface{}, error)

	// Initialize sets up the query client
	Initialize() error

	// Close releases resources
	Close() error
}
