package schema

import (
	"context"

	"github.com/phishgraph/phishgraph/internal/request"
)

// ResolveParams is everything a resolver or interceptor sees for one field
// of one parent value.
type ResolveParams struct {
	Context context.Context
	// Source is the parent value (nil for entry points).
	Source any
	// Args are the coerced field arguments.
	Args    map[string]any
	Request *request.Context
	Info    ResolveInfo
}

// ResolveInfo describes the field being resolved.
type ResolveInfo struct {
	Schema     *Schema
	ParentType *Type
	Field      *Field
	Path       []any
}

// Resolver produces the raw value of a field. Returning (nil, nil) yields
// null.
type Resolver func(p ResolveParams) (any, error)

// Interceptor wraps field resolution. Implementations may short-circuit by
// not calling next.
type Interceptor interface {
	Intercept(p ResolveParams, next Resolver) (any, error)
}

// InterceptorFunc adapts a function to Interceptor.
type InterceptorFunc func(p ResolveParams, next Resolver) (any, error)

func (f InterceptorFunc) Intercept(p ResolveParams, next Resolver) (any, error) { return f(p, next) }
