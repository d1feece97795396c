package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/scalar"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/session"
	"github.com/phishgraph/phishgraph/internal/store"
)

// secret is a protected record that denies one property.
type secret struct {
	name, code string
	deny       string
}

func (s *secret) HasReadAccess(_ session.Session, property string) bool {
	return property != s.deny
}

type fixture struct {
	schema    *schema.Schema
	helloHits atomic.Int32
	codeHits  atomic.Int32
	barrier   sync.WaitGroup
}

var items = []any{
	map[string]any{"id": 1, "name": "one"},
	map[string]any{"id": 2, "name": "two"},
	map[string]any{"id": 3, "name": "three"},
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{}
	f.barrier.Add(2)

	r := schema.NewRegistry()
	_, err := r.RegisterScalar("DateTime", scalar.DateTime)
	require.NoError(t, err)
	_, err = r.RegisterEnum("Color", "RED", "GREEN")
	require.NoError(t, err)

	_, err = r.RegisterNode("Item",
		schema.NewField("id", "", schema.NamedType("ID")),
		schema.NewField("name", "", schema.NamedType("String")),
	)
	require.NoError(t, err)
	_, err = r.RegisterType("Inner", schema.NewField("x", "", schema.NamedType("Int")))
	require.NoError(t, err)
	_, err = r.RegisterType("Nested",
		schema.NewField("value", "", schema.NamedType("Int")),
		schema.NewField("inner", "", schema.NonNullType(schema.NamedType("Inner"))),
		schema.NewField("list", "", schema.ListType(schema.NonNullType(schema.NamedType("Int")))),
	)
	require.NoError(t, err)
	_, err = r.RegisterType("Secret",
		schema.NewField("name", "", schema.NamedType("String")).
			SetResolver(func(p schema.ResolveParams) (any, error) { return p.Source.(*secret).name, nil }),
		schema.NewField("code", "", schema.NamedType("String")).
			SetResolver(func(p schema.ResolveParams) (any, error) {
				f.codeHits.Add(1)
				return p.Source.(*secret).code, nil
			}),
	)
	require.NoError(t, err)

	value := func(v any) schema.Resolver {
		return func(schema.ResolveParams) (any, error) { return v, nil }
	}
	entries := []*schema.Field{
		schema.NewField("hello", "", schema.NamedType("String")).
			SetResolver(func(schema.ResolveParams) (any, error) {
				f.helloHits.Add(1)
				return "world", nil
			}),
		schema.NewField("fail", "", schema.NamedType("String")).
			SetResolver(func(schema.ResolveParams) (any, error) { return nil, errors.New("boom") }),
		schema.NewField("fetchFail", "", schema.NamedType("String")).
			SetResolver(func(schema.ResolveParams) (any, error) {
				return nil, &store.FetchError{Kind: "campaigns", Err: errors.New("store down")}
			}),
		schema.NewField("required", "", schema.NonNullType(schema.NamedType("String"))).
			SetResolver(value(nil)),
		schema.NewField("nested", "", schema.NamedType("Nested")).
			SetResolver(value(map[string]any{"value": 1, "list": []int{1, 2}})),
		schema.NewField("items", "", schema.ConnectionType(schema.NamedType("Item"))).
			SetResolver(value(items)),
		schema.NewField("none", "", schema.ConnectionType(schema.NamedType("Item"))).
			SetResolver(value([]map[string]any(nil))),
		schema.NewField("item", "", schema.NamedType("Item")).
			AddArgument(schema.NewInputValue("id", "", schema.NamedType("Int"))).
			SetResolver(func(p schema.ResolveParams) (any, error) {
				id, _ := p.Args["id"].(int)
				for _, it := range items {
					if it.(map[string]any)["id"] == id {
						return it, nil
					}
				}
				return nil, nil
			}),
		schema.NewField("when", "", schema.NamedType("DateTime")).
			AddArgument(schema.NewInputValue("at", "", schema.NonNullType(schema.NamedType("DateTime")))).
			SetResolver(func(p schema.ResolveParams) (any, error) { return p.Args["at"], nil }),
		schema.NewField("color", "", schema.NamedType("Color")).
			AddArgument(schema.NewInputValue("like", "", schema.NamedType("Color")).SetDefault(schema.EnumLiteral("GREEN"))).
			SetResolver(func(p schema.ResolveParams) (any, error) { return p.Args["like"], nil }),
		schema.NewField("badColor", "", schema.NamedType("Color")).SetResolver(value("BLUE")),
		schema.NewField("secret", "", schema.NamedType("Secret")).
			SetResolver(value(&secret{name: "alpha", code: "1234", deny: "code"})),
		schema.NewField("slow", "", schema.NamedType("String")).
			SetResolver(func(p schema.ResolveParams) (any, error) {
				<-p.Context.Done()
				return nil, p.Context.Err()
			}),
		schema.NewField("left", "", schema.NamedType("String")).SetResolver(f.meet("left")),
		schema.NewField("right", "", schema.NamedType("String")).SetResolver(f.meet("right")),
	}
	for _, e := range entries {
		require.NoError(t, r.EntryPoint(e))
	}

	f.schema, err = r.Build()
	require.NoError(t, err)
	return f
}

// meet returns a resolver that only completes once both left and right are
// running at the same time.
func (f *fixture) meet(name string) schema.Resolver {
	return func(p schema.ResolveParams) (any, error) {
		f.barrier.Done()
		done := make(chan struct{})
		go func() {
			f.barrier.Wait()
			close(done)
		}()
		select {
		case <-done:
			return name, nil
		case <-time.After(2 * time.Second):
			return nil, errors.New("sibling never started")
		case <-p.Context.Done():
			return nil, p.Context.Err()
		}
	}
}

func (f *fixture) run(t *testing.T, query string, opts ...Option) *Result {
	t.Helper()
	return New(f.schema, opts...).Execute(context.Background(), Params{Query: query}, nil)
}
