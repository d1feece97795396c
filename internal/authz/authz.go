// Package authz gates field reads on the parent value's read access rules.
package authz

import (
	"log/slog"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/session"
)

// Protected is implemented by values whose fields are subject to per-session
// read checks. Values that do not implement it are never gated.
type Protected interface {
	HasReadAccess(s session.Session, property string) bool
}

// Chain is an ordered list of interceptors. The first element is outermost.
type Chain []schema.Interceptor

// NewChain returns a chain with the authorization interceptor first,
// followed by interceptors in the given order.
func NewChain(logger *slog.Logger, interceptors ...schema.Interceptor) Chain {
	c := make(Chain, 0, len(interceptors)+1)
	c = append(c, Authorization{Logger: logger})
	for _, i := range interceptors {
		if i != nil {
			c = append(c, i)
		}
	}
	return c
}

// Resolve runs p through the chain and finally through resolve.
func (c Chain) Resolve(p schema.ResolveParams, resolve schema.Resolver) (any, error) {
	return c.at(0, resolve)(p)
}

func (c Chain) at(i int, resolve schema.Resolver) schema.Resolver {
	if i == len(c) {
		return resolve
	}
	return func(p schema.ResolveParams) (any, error) {
		return c[i].Intercept(p, c.at(i+1, resolve))
	}
}

// Authorization withholds fields the request session may not read. A denied
// field resolves to null without invoking the resolver and without an error.
// Unauthenticated requests and unprotected parents pass through unchanged.
type Authorization struct {
	Logger *slog.Logger
}

func (a Authorization) Intercept(p schema.ResolveParams, next schema.Resolver) (any, error) {
	prot, ok := p.Source.(Protected)
	if !ok || p.Request == nil || p.Request.Session == nil {
		return next(p)
	}
	property := p.Info.Field.Property()
	if prot.HasReadAccess(p.Request.Session, property) {
		return next(p)
	}

	e := events.FieldRedacted{
		Field:    p.Info.Field.Name,
		Property: property,
		UserID:   p.Request.Session.UserID(),
		Path:     p.Info.Path,
	}
	if p.Info.ParentType != nil {
		e.Type = p.Info.ParentType.Name
	}
	if a.Logger != nil {
		a.Logger.DebugContext(p.Context, "field redacted", "type", e.Type, "field", e.Field, "user", e.UserID)
	}
	eventbus.Publish(p.Context, e)
	return nil, nil
}
