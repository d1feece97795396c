package schema

import "github.com/phishgraph/phishgraph/internal/scalar"

type builtinScalar struct {
	name        string
	description string
	codec       scalar.Codec
}

var builtinScalars = []builtinScalar{
	{"String", "The `String` scalar type represents textual data, represented as UTF-8 character sequences.", scalar.String},
	{"Int", "The `Int` scalar type represents non-fractional signed whole numeric values.", scalar.Int},
	{"Float", "The `Float` scalar type represents signed double-precision fractional values.", scalar.Float},
	{"Boolean", "The `Boolean` scalar type represents `true` or `false`.", scalar.Boolean},
	{"ID", "The `ID` scalar type represents a unique identifier, often used to refetch an object or as a key for caching.", scalar.ID},
}

func isBuiltinScalar(name string) bool {
	for _, b := range builtinScalars {
		if b.name == name {
			return true
		}
	}
	return false
}

func newIncludeDirective() *Directive {
	return &Directive{
		Name:        "include",
		Description: "Directs the executor to include this field or fragment only when the `if` argument is true.",
		Arguments: []*InputValue{
			NewInputValue("if", "Included when true.", NonNullType(NamedType("Boolean"))),
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}

func newSkipDirective() *Directive {
	return &Directive{
		Name:        "skip",
		Description: "Directs the executor to skip this field or fragment when the `if` argument is true.",
		Arguments: []*InputValue{
			NewInputValue("if", "Skipped when true.", NonNullType(NamedType("Boolean"))),
		},
		Locations: []string{"FIELD", "FRAGMENT_SPREAD", "INLINE_FRAGMENT"},
	}
}
