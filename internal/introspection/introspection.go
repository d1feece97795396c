// Package introspection registers the __schema and __type entry points and
// the __* meta types through the schema registry.
package introspection

import (
	"github.com/phishgraph/phishgraph/internal/schema"
)

var typeKinds = []string{"SCALAR", "OBJECT", "INTERFACE", "UNION", "ENUM", "INPUT_OBJECT", "LIST", "NON_NULL"}

var directiveLocations = []string{
	"QUERY", "MUTATION", "SUBSCRIPTION", "FIELD", "FRAGMENT_DEFINITION",
	"FRAGMENT_SPREAD", "INLINE_FRAGMENT", "VARIABLE_DEFINITION", "SCHEMA",
	"SCALAR", "OBJECT", "FIELD_DEFINITION", "ARGUMENT_DEFINITION", "INTERFACE",
	"UNION", "ENUM", "ENUM_VALUE", "INPUT_OBJECT", "INPUT_FIELD_DEFINITION",
}

// fieldFunc resolves one field of a meta type.
type fieldFunc func(s *schema.Schema, src any, field string, args map[string]any) (any, error)

type metaType struct {
	name        string
	description string
	resolve     fieldFunc
	fields      []*schema.Field
}

// Register adds introspection support to r. It must be called before
// r.Build.
func Register(r *schema.Registry) error {
	if _, err := r.RegisterEnum("__TypeKind", typeKinds...); err != nil {
		return err
	}
	if _, err := r.RegisterEnum("__DirectiveLocation", directiveLocations...); err != nil {
		return err
	}
	for _, mt := range metaTypes() {
		resolve := mt.resolve
		for _, f := range mt.fields {
			f.SetResolver(func(p schema.ResolveParams) (any, error) {
				return resolve(p.Info.Schema, p.Source, p.Info.Field.Name, p.Args)
			})
		}
		t, err := r.RegisterType(mt.name, mt.fields...)
		if err != nil {
			return err
		}
		t.Description = mt.description
	}

	if err := r.EntryPoint(schema.NewField("__schema", "Access the current type schema of this server.",
		schema.NonNullType(schema.NamedType("__Schema"))).
		SetResolver(func(p schema.ResolveParams) (any, error) { return p.Info.Schema, nil })); err != nil {
		return err
	}
	return r.EntryPoint(schema.NewField("__type", "Request the type information of a single type.",
		schema.NamedType("__Type")).
		AddArgument(schema.NewInputValue("name", "The name of the type to look up.", schema.NonNullType(schema.NamedType("String")))).
		SetResolver(func(p schema.ResolveParams) (any, error) {
			name, _ := p.Args["name"].(string)
			if t, ok := p.Info.Schema.Types[name]; ok {
				return t, nil
			}
			return nil, nil
		}))
}

func includeDeprecated() *schema.InputValue {
	return schema.NewInputValue("includeDeprecated", "", schema.NamedType("Boolean")).SetDefault(false)
}

func list(name string) *schema.TypeRef {
	return schema.ListType(schema.NonNullType(schema.NamedType(name)))
}

func metaTypes() []metaType {
	str := schema.NamedType("String")
	nonNullStr := schema.NonNullType(schema.NamedType("String"))
	nonNullBool := schema.NonNullType(schema.NamedType("Boolean"))
	typeRef := schema.NamedType("__Type")

	return []metaType{
		{
			name:        "__Schema",
			description: "A GraphQL Schema defines the capabilities of a GraphQL server.",
			resolve:     resolveSchemaField,
			fields: []*schema.Field{
				schema.NewField("description", "A description of the schema.", str),
				schema.NewField("types", "A list of all types supported by this server.", schema.NonNullType(list("__Type"))),
				schema.NewField("queryType", "The type that query operations will be rooted at.", schema.NonNullType(typeRef)),
				schema.NewField("mutationType", "If this server supports mutation, the type that mutation operations will be rooted at.", typeRef),
				schema.NewField("subscriptionType", "If this server support subscription, the type that subscription operations will be rooted at.", typeRef),
				schema.NewField("directives", "A list of all directives supported by this server.", schema.NonNullType(list("__Directive"))),
			},
		},
		{
			name:        "__Type",
			description: "The fundamental unit of any GraphQL Schema is the type.",
			resolve:     resolveTypeField,
			fields: []*schema.Field{
				schema.NewField("kind", "", schema.NonNullType(schema.NamedType("__TypeKind"))),
				schema.NewField("name", "", str),
				schema.NewField("description", "", str),
				schema.NewField("specifiedByURL", "", str),
				schema.NewField("fields", "", list("__Field")).AddArgument(includeDeprecated()),
				schema.NewField("interfaces", "", list("__Type")),
				schema.NewField("possibleTypes", "", list("__Type")),
				schema.NewField("enumValues", "", list("__EnumValue")).AddArgument(includeDeprecated()),
				schema.NewField("inputFields", "", list("__InputValue")).AddArgument(includeDeprecated()),
				schema.NewField("ofType", "", typeRef),
				schema.NewField("isOneOf", "", schema.NamedType("Boolean")),
			},
		},
		{
			name:    "__Field",
			resolve: resolveFieldField,
			fields: []*schema.Field{
				schema.NewField("name", "", nonNullStr),
				schema.NewField("description", "", str),
				schema.NewField("args", "", schema.NonNullType(list("__InputValue"))).AddArgument(includeDeprecated()),
				schema.NewField("type", "", schema.NonNullType(typeRef)),
				schema.NewField("isDeprecated", "", nonNullBool),
				schema.NewField("deprecationReason", "", str),
			},
		},
		{
			name:    "__InputValue",
			resolve: resolveInputValueField,
			fields: []*schema.Field{
				schema.NewField("name", "", nonNullStr),
				schema.NewField("description", "", str),
				schema.NewField("type", "", schema.NonNullType(typeRef)),
				schema.NewField("defaultValue", "", str),
				schema.NewField("isDeprecated", "", nonNullBool),
				schema.NewField("deprecationReason", "", str),
			},
		},
		{
			name:    "__EnumValue",
			resolve: resolveEnumValueField,
			fields: []*schema.Field{
				schema.NewField("name", "", nonNullStr),
				schema.NewField("description", "", str),
				schema.NewField("isDeprecated", "", nonNullBool),
				schema.NewField("deprecationReason", "", str),
			},
		},
		{
			name:    "__Directive",
			resolve: resolveDirectiveField,
			fields: []*schema.Field{
				schema.NewField("name", "", nonNullStr),
				schema.NewField("description", "", str),
				schema.NewField("isRepeatable", "", nonNullBool),
				schema.NewField("locations", "", schema.NonNullType(list("__DirectiveLocation"))),
				schema.NewField("args", "", schema.NonNullType(list("__InputValue"))).AddArgument(includeDeprecated()),
			},
		},
	}
}
