// Package request holds the per-request collaborators handed to every
// resolver and interceptor.
package request

import (
	"github.com/phishgraph/phishgraph/internal/geoip"
	"github.com/phishgraph/phishgraph/internal/plugin"
	"github.com/phishgraph/phishgraph/internal/session"
	"github.com/phishgraph/phishgraph/internal/store"
)

// Context is built once per request and never mutated during execution, so
// it is shared by reference across concurrently resolving fields.
type Context struct {
	// Session is nil for unauthenticated requests.
	Session session.Session
	Plugins plugin.Registry
	Store   store.Store
	Geo     *geoip.Locator
}

// WithSession returns a copy of c bound to s.
func (c *Context) WithSession(s session.Session) *Context {
	cp := *c
	cp.Session = s
	return &cp
}
