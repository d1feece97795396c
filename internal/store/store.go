// Package store defines the persistent-store collaborator used by resolvers
// and an in-memory, arena-style implementation of it.
package store

import (
	"context"
	"fmt"

	"github.com/phishgraph/phishgraph/internal/model"
)

// Filter is an equality predicate over entity columns.
type Filter map[string]any

// Store fetches entities. Implementations must be safe for concurrent use and
// must return entities of one kind in a stable order.
type Store interface {
	// Get returns the first entity of kind matching filter, or nil when none
	// matches.
	Get(ctx context.Context, kind model.Kind, filter Filter) (model.Entity, error)
	// List returns every entity of kind matching filter.
	List(ctx context.Context, kind model.Kind, filter Filter) ([]model.Entity, error)
}

// FetchError wraps a failure of the underlying store.
type FetchError struct {
	Kind model.Kind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
