package graph

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/phishgraph/phishgraph/internal/geoip"
	"github.com/phishgraph/phishgraph/internal/model"
	"github.com/phishgraph/phishgraph/internal/plugin"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/store"
)

var errNoStore = errors.New("no store configured for this request")

// database is the source value of the Database type.
type database struct{}

func storeOf(p schema.ResolveParams) (store.Store, error) {
	if p.Request == nil || p.Request.Store == nil {
		return nil, errNoStore
	}
	return p.Request.Store, nil
}

func resolveDatabase(schema.ResolveParams) (any, error) { return database{}, nil }

// resolveLookup returns the first entity of kind matching the arguments, or
// null.
func resolveLookup(kind model.Kind) schema.Resolver {
	return func(p schema.ResolveParams) (any, error) {
		st, err := storeOf(p)
		if err != nil {
			return nil, err
		}
		filter := store.Filter{}
		for name, value := range p.Args {
			if value != nil {
				filter[name] = value
			}
		}
		e, err := st.Get(p.Context, kind, filter)
		if err != nil || e == nil {
			return nil, err
		}
		return e, nil
	}
}

func resolveCollection(kind model.Kind) schema.Resolver {
	return func(p schema.ResolveParams) (any, error) {
		st, err := storeOf(p)
		if err != nil {
			return nil, err
		}
		return st.List(p.Context, kind, nil)
	}
}

func resolveChildren(rel relation) schema.Resolver {
	return func(p schema.ResolveParams) (any, error) {
		src, ok := p.Source.(model.Entity)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected source %T", rel.name, p.Source)
		}
		st, err := storeOf(p)
		if err != nil {
			return nil, err
		}
		return st.List(p.Context, rel.kind, store.Filter{rel.column: src.Identity()})
	}
}

func resolveParent(rel relation) schema.Resolver {
	return func(p schema.ResolveParams) (any, error) {
		src, ok := p.Source.(model.Entity)
		if !ok {
			return nil, fmt.Errorf("%s: unexpected source %T", rel.name, p.Source)
		}
		id, _ := model.Value(src, rel.column)
		if !present(id) {
			return nil, nil
		}
		st, err := storeOf(p)
		if err != nil {
			return nil, err
		}
		e, err := st.Get(p.Context, rel.kind, store.Filter{"id": id})
		if err != nil || e == nil {
			return nil, err
		}
		return e, nil
	}
}

func resolveVisitorGeoloc(p schema.ResolveParams) (any, error) {
	v, ok := p.Source.(*model.Visit)
	if !ok {
		return nil, fmt.Errorf("visitorGeoloc: unexpected source %T", p.Source)
	}
	if v.VisitorIP == nil || *v.VisitorIP == "" || p.Request == nil {
		return nil, nil
	}
	return locationValue(p.Request.Geo.Locate(p.Context, *v.VisitorIP)), nil
}

func resolveGeoloc(p schema.ResolveParams) (any, error) {
	ip, _ := p.Args["ip"].(string)
	if ip == "" || p.Request == nil {
		return nil, nil
	}
	return locationValue(p.Request.Geo.Locate(p.Context, ip)), nil
}

func resolvePlugin(p schema.ResolveParams) (any, error) {
	name, _ := p.Args["name"].(string)
	if p.Request == nil {
		return nil, nil
	}
	d, ok := plugin.Find(p.Request.Plugins, name)
	if !ok {
		return nil, nil
	}
	return pluginValue(d), nil
}

func resolvePlugins(p schema.ResolveParams) (any, error) {
	out := []any{}
	if p.Request == nil {
		return out, nil
	}
	for _, d := range plugin.Sorted(p.Request.Plugins) {
		out = append(out, pluginValue(d))
	}
	return out, nil
}

// locationValue returns an untyped nil for a missing location so the field
// completes as null.
func locationValue(loc *geoip.Location) any {
	if loc == nil {
		return nil
	}
	return map[string]any{
		"city":        loc.City,
		"continent":   loc.Continent,
		"coordinates": loc.Coordinates,
		"country":     loc.Country,
		"postalCode":  loc.PostalCode,
		"timeZone":    loc.TimeZone,
	}
}

func pluginValue(d plugin.Descriptor) map[string]any {
	return map[string]any{
		"id":          d.Name,
		"authors":     d.Authors,
		"title":       d.Title,
		"description": d.Description,
		"homepage":    d.Homepage,
		"name":        d.Name,
		"version":     d.Version,
	}
}

// present reports whether a foreign-key value refers to something.
func present(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	if rv.Kind() == reflect.Ptr {
		return !rv.IsNil()
	}
	return !rv.IsZero()
}
