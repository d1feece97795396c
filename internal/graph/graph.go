// Package graph declares the King Phisher object graph on top of the schema
// registry: one node type per entity kind with its relationships, the
// Database collection type, plugins, geolocation and the Query entry points.
package graph

import (
	"github.com/phishgraph/phishgraph/internal/introspection"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/scalar"
)

const (
	dateTimeScalar  = "DateTime"
	geoLocationType = "GeoLocation"
	pluginType      = "Plugin"
	databaseType    = "Database"
)

// Build returns the complete schema. version is served by the version entry
// point.
func Build(version string) (*schema.Schema, error) {
	r := schema.NewRegistry()
	if err := Register(r, version); err != nil {
		return nil, err
	}
	if err := introspection.Register(r); err != nil {
		return nil, err
	}
	return r.Build()
}

// Register declares every type and entry point of the graph on r.
func Register(r *schema.Registry, version string) error {
	dt, err := r.RegisterScalar(dateTimeScalar, scalar.DateTime)
	if err != nil {
		return err
	}
	dt.Description = "A timestamp formatted as YYYY-MM-DDTHH:MM:SS.ffffff."

	for _, e := range entities {
		t, err := r.RegisterNode(e.typeName, e.fields()...)
		if err != nil {
			return err
		}
		t.Description = e.description
	}

	if err := registerDatabase(r); err != nil {
		return err
	}
	if err := registerGeoLocation(r); err != nil {
		return err
	}
	if err := registerPlugin(r); err != nil {
		return err
	}

	for _, f := range []*schema.Field{
		schema.NewField("db", "Access to the entities of the database.", schema.NamedType(databaseType)).
			SetResolver(resolveDatabase),
		schema.NewField("geoloc", "Locate a public IP address.", schema.NamedType(geoLocationType)).
			AddArgument(schema.NewInputValue("ip", "", schema.NamedType("String"))).
			SetResolver(resolveGeoloc),
		schema.NewField("plugin", "Look up a loaded plugin by name.", schema.NamedType(pluginType)).
			AddArgument(schema.NewInputValue("name", "", schema.NamedType("String"))).
			SetResolver(resolvePlugin),
		schema.NewField("plugins", "Every loaded plugin, sorted by name.", schema.ConnectionType(schema.NamedType(pluginType))).
			SetResolver(resolvePlugins),
		schema.NewField("version", "The server version.", schema.NamedType("String")).
			SetResolver(func(schema.ResolveParams) (any, error) { return version, nil }),
	} {
		if err := r.EntryPoint(f); err != nil {
			return err
		}
	}
	return nil
}

// registerDatabase declares a single lookup by id and a collection for every
// entity kind.
func registerDatabase(r *schema.Registry) error {
	var fields []*schema.Field
	for _, e := range entities {
		fields = append(fields,
			schema.NewField(lowerFirst(e.typeName), "", schema.NamedType(e.typeName)).
				AddArgument(schema.NewInputValue("id", "", idArgumentType(e.kind))).
				SetResolver(resolveLookup(e.kind)),
			schema.NewField(camelCase(string(e.kind)), "", schema.ConnectionType(schema.NamedType(e.typeName))).
				SetResolver(resolveCollection(e.kind)),
		)
	}
	t, err := r.RegisterType(databaseType, fields...)
	if err != nil {
		return err
	}
	t.Description = "The entities stored in the database."
	return nil
}

func registerGeoLocation(r *schema.Registry) error {
	str := schema.NamedType("String")
	t, err := r.RegisterType(geoLocationType,
		schema.NewField("city", "", str),
		schema.NewField("continent", "", str),
		schema.NewField("coordinates", "Latitude and longitude.", schema.ListType(schema.NamedType("Float"))),
		schema.NewField("country", "", str),
		schema.NewField("postalCode", "", str),
		schema.NewField("timeZone", "", str),
	)
	if err != nil {
		return err
	}
	t.Description = "The location of an IP address."
	return nil
}

func registerPlugin(r *schema.Registry) error {
	str := schema.NamedType("String")
	t, err := r.RegisterNode(pluginType,
		schema.NewField("id", "", schema.NamedType("ID")),
		schema.NewField("authors", "", schema.ListType(str)),
		schema.NewField("title", "", str),
		schema.NewField("description", "", str),
		schema.NewField("homepage", "", str),
		schema.NewField("name", "", str),
		schema.NewField("version", "", str),
	)
	if err != nil {
		return err
	}
	t.Description = "A loaded server plugin."
	return nil
}
