package schema

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/phishgraph/phishgraph/internal/scalar"
)

// Schema is the immutable result of Registry.Build. It is safe to share
// across any number of concurrent requests.
type Schema struct {
	QueryType   string
	Types       map[string]*Type // All named types keyed by name
	TypeNames   []string         // Registration order
	Directives  map[string]*Directive
	Description string

	codecs map[string]scalar.Codec
	ast    *ast.Schema
	sdl    string
}

// GetQueryType returns the root query type.
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// GetMutationType always returns nil; the graph is read-only.
func (s *Schema) GetMutationType() *Type { return nil }

// GetSubscriptionType always returns nil; the graph is read-only.
func (s *Schema) GetSubscriptionType() *Type { return nil }

// ResolveType returns the named type or an error when it is not declared.
func (s *Schema) ResolveType(name string) (*Type, error) {
	t, ok := s.Types[name]
	if !ok {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

// Codec returns the serialize/parse pair of a scalar type.
func (s *Schema) Codec(name string) (scalar.Codec, bool) {
	c, ok := s.codecs[name]
	return c, ok
}

// AST returns the gqlparser view of the schema used to validate documents.
func (s *Schema) AST() *ast.Schema { return s.ast }

// SDL returns the rendered schema definition.
func (s *Schema) SDL() string { return s.sdl }

// Type is a named GraphQL type (object, scalar, enum)
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field     // For OBJECT, in declaration order
	Interfaces  []string     // For OBJECT
	EnumValues  []*EnumValue // For ENUM
	// Node marks object types with a stable identity exposed as the id field.
	Node bool

	fieldIndex map[string]int
}

// NewType returns an empty type of the given kind.
func NewType(name string, kind TypeKind, description string) *Type {
	return &Type{Name: name, Kind: kind, Description: description, fieldIndex: map[string]int{}}
}

// AddField appends f. Duplicate names are reported by the registry.
func (t *Type) AddField(f *Field) *Type {
	if t.fieldIndex == nil {
		t.fieldIndex = map[string]int{}
	}
	t.fieldIndex[f.Name] = len(t.Fields)
	t.Fields = append(t.Fields, f)
	return t
}

// AddInterface records an implemented interface name (introspection only).
func (t *Type) AddInterface(name string) *Type {
	t.Interfaces = append(t.Interfaces, name)
	return t
}

// AddEnumValue appends an enum value.
func (t *Type) AddEnumValue(v *EnumValue) *Type {
	t.EnumValues = append(t.EnumValues, v)
	return t
}

// Field looks up a field by name.
func (t *Type) Field(name string) *Field {
	if i, ok := t.fieldIndex[name]; ok {
		return t.Fields[i]
	}
	for _, f := range t.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// HasEnumValue reports whether name is one of the enum's values.
func (t *Type) HasEnumValue(name string) bool {
	for _, v := range t.EnumValues {
		if v.Name == name {
			return true
		}
	}
	return false
}

// Field represents a field on an object type
type Field struct {
	Name              string
	Description       string
	Type              *TypeRef
	Arguments         []*InputValue
	Resolve           Resolver
	IsDeprecated      bool
	DeprecationReason string

	// property is the storage column the field surfaces. Access checks are
	// made against it.
	property string
}

// NewField returns a field with no arguments and no resolver.
func NewField(name, description string, typ *TypeRef) *Field {
	return &Field{Name: name, Description: description, Type: typ}
}

// AddArgument appends an argument definition.
func (f *Field) AddArgument(arg *InputValue) *Field {
	f.Arguments = append(f.Arguments, arg)
	return f
}

// SetResolver sets the function producing the field value.
func (f *Field) SetResolver(r Resolver) *Field {
	f.Resolve = r
	return f
}

// SetProperty binds the field to a storage column whose name differs from
// the field name.
func (f *Field) SetProperty(column string) *Field {
	f.property = column
	return f
}

// Property returns the storage column name, defaulting to the field name.
func (f *Field) Property() string {
	if f.property != "" {
		return f.property
	}
	return f.Name
}

// Deprecate marks the field deprecated.
func (f *Field) Deprecate(reason string) *Field {
	f.IsDeprecated = true
	f.DeprecationReason = reason
	return f
}

// Argument looks up an argument definition by name.
func (f *Field) Argument(name string) *InputValue {
	for _, a := range f.Arguments {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// TypeKind represents the kind of GraphQL type
type TypeKind string

const (
	TypeKindScalar TypeKind = "SCALAR"
	TypeKindObject TypeKind = "OBJECT"
	TypeKindEnum   TypeKind = "ENUM"
)

// TypeRef represents a reference to a type (can be wrapped)
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // For List, NonNull and Connection
	Named  string   // For named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
	// TypeRefKindConnection wraps a node type; the field resolves to an
	// ordered collection that is paginated into a <Node>Connection object.
	TypeRefKindConnection TypeRefKind = "CONNECTION"
)

// Helper functions for TypeRef
func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) IsConnection() bool {
	if t.Kind == TypeRefKindConnection {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindConnection
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

// GetNamedType returns the innermost named type. Connections report the
// synthesized connection type name.
func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		switch current.Kind {
		case TypeRefKindConnection:
			return ConnectionTypeName(current.OfType.GetNamedType())
		case TypeRefKindNamed:
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// NodeType returns the node type name of a connection reference.
func (t *TypeRef) NodeType() string {
	current := t
	for current != nil {
		if current.Kind == TypeRefKindConnection {
			return current.OfType.GetNamedType()
		}
		current = current.OfType
	}
	return ""
}

type EnumValue struct {
	Name              string
	Description       string
	IsDeprecated      bool
	DeprecationReason string
}

func NewEnumValue(name, description string) *EnumValue {
	return &EnumValue{Name: name, Description: description}
}

type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
}

// NewInputValue returns an argument definition.
func NewInputValue(name, description string, typ *TypeRef) *InputValue {
	return &InputValue{Name: name, Description: description, Type: typ}
}

// SetDefault sets the value used when the argument is omitted.
func (v *InputValue) SetDefault(value any) *InputValue {
	v.DefaultValue = value
	return v
}

type Directive struct {
	Name         string
	Description  string
	Locations    []string
	Arguments    []*InputValue
	IsRepeatable bool
}

func NonNullType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef       { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef     { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }
func ConnectionType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindConnection, OfType: t} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// IsConnection reports whether the type is (or is wrapped by) a connection.
func IsConnection(t *TypeRef) bool { return t != nil && t.IsConnection() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }

// ConnectionTypeName names the connection type synthesized for node.
func ConnectionTypeName(node string) string { return node + "Connection" }

// EdgeTypeName names the edge type synthesized for node.
func EdgeTypeName(node string) string { return node + "Edge" }
