package schema

import (
	"fmt"

	"github.com/phishgraph/phishgraph/internal/relay"
)

// PageInfoTypeName is the name of the page info type shared by all
// connections.
const PageInfoTypeName = "PageInfo"

func (r *Registry) synthesizeConnections() error {
	// Connection types only add scalar and edge fields, so one pass over the
	// types registered so far is enough.
	for _, name := range append([]string(nil), r.order...) {
		t := r.types[name]
		if t.Kind != TypeKindObject {
			continue
		}
		for _, f := range t.Fields {
			if f.Type == nil || !f.Type.IsConnection() {
				continue
			}
			node := f.Type.NodeType()
			nt, ok := r.types[node]
			if !ok || nt.Kind != TypeKindObject {
				return &Error{Type: t.Name, Field: f.Name, Reason: fmt.Sprintf("connection of undeclared object type %q", node)}
			}
			r.ensureConnection(node)
			if f.Argument("first") == nil {
				f.AddArgument(NewInputValue("first", "Return at most this many edges.", NamedType("Int")))
			}
			if f.Argument("after") == nil {
				f.AddArgument(NewInputValue("after", "Return edges after this cursor.", NamedType("String")))
			}
		}
	}
	return nil
}

func (r *Registry) ensureConnection(node string) {
	if _, ok := r.types[PageInfoTypeName]; !ok {
		r.add(newPageInfoType())
	}
	conn := ConnectionTypeName(node)
	if _, ok := r.types[conn]; ok {
		return
	}
	edge := EdgeTypeName(node)
	r.add(NewType(edge, TypeKindObject, "An edge in a connection of "+node+".").
		AddField(NewField("node", "The item at the end of the edge.", NamedType(node)).
			SetResolver(func(p ResolveParams) (any, error) {
				e, err := edgeOf(p.Source)
				if err != nil {
					return nil, err
				}
				return e.Node, nil
			})).
		AddField(NewField("cursor", "A cursor for use in pagination.", NonNullType(NamedType("String"))).
			SetResolver(func(p ResolveParams) (any, error) {
				e, err := edgeOf(p.Source)
				if err != nil {
					return nil, err
				}
				return e.Cursor, nil
			})))
	r.add(NewType(conn, TypeKindObject, "A connection to a list of "+node+" items.").
		AddField(NewField("edges", "A list of edges.", ListType(NamedType(edge))).
			SetResolver(func(p ResolveParams) (any, error) {
				c, err := connectionOf(p.Source)
				if err != nil {
					return nil, err
				}
				edges := make([]any, len(c.Edges))
				for i := range c.Edges {
					edges[i] = &c.Edges[i]
				}
				return edges, nil
			})).
		AddField(NewField("pageInfo", "Information to aid in pagination.", NonNullType(NamedType(PageInfoTypeName))).
			SetResolver(func(p ResolveParams) (any, error) {
				c, err := connectionOf(p.Source)
				if err != nil {
					return nil, err
				}
				return &c.PageInfo, nil
			})).
		AddField(NewField("totalCount", "The number of items in the whole collection.", NonNullType(NamedType("Int"))).
			SetResolver(func(p ResolveParams) (any, error) {
				c, err := connectionOf(p.Source)
				if err != nil {
					return nil, err
				}
				return c.TotalCount, nil
			})))
}

func newPageInfoType() *Type {
	info := func(get func(*relay.PageInfo) any) Resolver {
		return func(p ResolveParams) (any, error) {
			pi, ok := p.Source.(*relay.PageInfo)
			if !ok {
				return nil, fmt.Errorf("expected *relay.PageInfo, got %T", p.Source)
			}
			return get(pi), nil
		}
	}
	return NewType(PageInfoTypeName, TypeKindObject, "Information about pagination in a connection.").
		AddField(NewField("hasNextPage", "", NonNullType(NamedType("Boolean"))).
			SetResolver(info(func(pi *relay.PageInfo) any { return pi.HasNextPage }))).
		AddField(NewField("hasPreviousPage", "", NonNullType(NamedType("Boolean"))).
			SetResolver(info(func(pi *relay.PageInfo) any { return pi.HasPreviousPage }))).
		AddField(NewField("startCursor", "", NamedType("String")).
			SetResolver(info(func(pi *relay.PageInfo) any { return deref(pi.StartCursor) }))).
		AddField(NewField("endCursor", "", NamedType("String")).
			SetResolver(info(func(pi *relay.PageInfo) any { return deref(pi.EndCursor) })))
}

func deref(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func connectionOf(src any) (*relay.Connection, error) {
	c, ok := src.(*relay.Connection)
	if !ok {
		return nil, fmt.Errorf("expected *relay.Connection, got %T", src)
	}
	return c, nil
}

func edgeOf(src any) (*relay.Edge, error) {
	e, ok := src.(*relay.Edge)
	if !ok {
		return nil, fmt.Errorf("expected *relay.Edge, got %T", src)
	}
	return e, nil
}
