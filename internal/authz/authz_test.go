package authz

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/reqid"
	"github.com/phishgraph/phishgraph/internal/request"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/session"
)

type record struct {
	denied string
}

func (r record) HasReadAccess(_ session.Session, property string) bool {
	return property != r.denied
}

func params(src any, sess session.Session, field *schema.Field) schema.ResolveParams {
	return schema.ResolveParams{
		Context: context.Background(),
		Source:  src,
		Request: &request.Context{Session: sess},
		Info: schema.ResolveInfo{
			Field:      field,
			ParentType: schema.NewType("Campaign", schema.TypeKindObject, ""),
			Path:       []any{"db", "campaign", field.Name},
		},
	}
}

func TestAuthorization(t *testing.T) {
	alice := &session.Static{User: "alice"}
	field := schema.NewField("credentials", "", schema.NamedType("String"))

	cases := []struct {
		name      string
		src       any
		sess      session.Session
		wantValue any
		wantCall  bool
	}{
		{"denied", record{denied: "credentials"}, alice, nil, false},
		{"allowed", record{denied: "name"}, alice, "value", true},
		{"unauthenticated", record{denied: "credentials"}, nil, "value", true},
		{"unprotected parent", map[string]any{}, alice, "value", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called := false
			got, err := NewChain(nil).Resolve(params(tc.src, tc.sess, field), func(schema.ResolveParams) (any, error) {
				called = true
				return "value", nil
			})
			require.NoError(t, err)
			assert.Equal(t, tc.wantValue, got)
			assert.Equal(t, tc.wantCall, called)
		})
	}
}

func TestAuthorizationChecksProperty(t *testing.T) {
	alice := &session.Static{User: "alice"}
	field := schema.NewField("userId", "", schema.NamedType("String")).SetProperty("user_id")

	got, err := NewChain(nil).Resolve(params(record{denied: "user_id"}, alice, field), func(schema.ResolveParams) (any, error) {
		return "alice", nil
	})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestAuthorizationRunsFirst(t *testing.T) {
	alice := &session.Static{User: "alice"}
	field := schema.NewField("credentials", "", schema.NamedType("String"))

	var order []string
	trace := schema.InterceptorFunc(func(p schema.ResolveParams, next schema.Resolver) (any, error) {
		order = append(order, "trace")
		return next(p)
	})
	chain := NewChain(nil, trace, nil)
	require.Len(t, chain, 2)

	_, err := chain.Resolve(params(record{denied: "credentials"}, alice, field), func(schema.ResolveParams) (any, error) {
		order = append(order, "resolve")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Empty(t, order, "later interceptors must not run for a denied field")

	_, err = chain.Resolve(params(record{}, alice, field), func(schema.ResolveParams) (any, error) {
		order = append(order, "resolve")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"trace", "resolve"}, order)
}

func TestInterceptorErrorsPropagate(t *testing.T) {
	boom := errors.New("boom")
	fail := schema.InterceptorFunc(func(schema.ResolveParams, schema.Resolver) (any, error) {
		return nil, boom
	})
	field := schema.NewField("name", "", schema.NamedType("String"))
	_, err := NewChain(nil, fail).Resolve(params(record{}, nil, field), func(schema.ResolveParams) (any, error) {
		return "x", nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestDenialPublishesEvent(t *testing.T) {
	eventbus.Use(eventbus.New())
	t.Cleanup(func() { eventbus.Use(nil) })

	var (
		mu  sync.Mutex
		got []events.FieldRedacted
	)
	eventbus.Subscribe(func(_ context.Context, e events.FieldRedacted) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e)
	})

	field := schema.NewField("credentials", "", schema.NamedType("String"))
	_, err := NewChain(nil).Resolve(params(record{denied: "credentials"}, &session.Static{User: "alice"}, field), func(schema.ResolveParams) (any, error) {
		return "x", nil
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, events.FieldRedacted{
		Type:     "Campaign",
		Field:    "credentials",
		Property: "credentials",
		UserID:   "alice",
		Path:     []any{"db", "campaign", "credentials"},
	}, got[0])
}

// captureHandler records the request id carried by the context of each log
// record.
type captureHandler struct {
	mu  sync.Mutex
	ids []string
}

func (h *captureHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *captureHandler) Handle(ctx context.Context, _ slog.Record) error {
	id, _ := reqid.FromContext(ctx)
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ids = append(h.ids, id)
	return nil
}

func (h *captureHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *captureHandler) WithGroup(string) slog.Handler { return h }

func TestRedactionLogCarriesRequestContext(t *testing.T) {
	h := &captureHandler{}
	field := schema.NewField("password", "", schema.NamedType("String"))
	p := params(record{denied: "password"}, &session.Static{User: "alice"}, field)
	var rid string
	p.Context, rid = reqid.NewContext(p.Context)

	got, err := NewChain(slog.New(h)).Resolve(p, func(schema.ResolveParams) (any, error) { return "hunter2", nil })
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, []string{rid}, h.ids)
}
