// Package reqid carries a per-request identifier through context so events,
// logs and spans of one request can be correlated.
package reqid

import (
	"context"

	"github.com/google/uuid"
)

// Header is the HTTP header used to propagate and echo request ids.
const Header = "X-Request-Id"

type key struct{}

// NewContext returns a copy of parent carrying a new random request id, and
// the id.
func NewContext(parent context.Context) (context.Context, string) {
	return WithID(parent, uuid.NewString())
}

// WithID stores a caller-supplied id, e.g. one received in Header. Ids that
// are not UUIDs are replaced with a fresh one.
func WithID(parent context.Context, id string) (context.Context, string) {
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	return context.WithValue(parent, key{}, id), id
}

// FromContext extracts the request id from ctx.
func FromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(key{}).(string)
	return id, ok
}
