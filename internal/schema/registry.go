package schema

import (
	"fmt"
	"slices"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/phishgraph/phishgraph/internal/scalar"
)

// QueryTypeName is the name of the root query type.
const QueryTypeName = "Query"

// Error reports an invalid schema definition. It is fatal at startup.
type Error struct {
	Type   string
	Field  string
	Reason string
}

func (e *Error) Error() string {
	switch {
	case e.Type != "" && e.Field != "":
		return fmt.Sprintf("schema: %s.%s: %s", e.Type, e.Field, e.Reason)
	case e.Type != "":
		return fmt.Sprintf("schema: %s: %s", e.Type, e.Reason)
	default:
		return "schema: " + e.Reason
	}
}

// Registry accumulates type definitions and entry points. Build freezes it
// into a Schema; any registration afterwards fails.
type Registry struct {
	types      map[string]*Type
	order      []string
	codecs     map[string]scalar.Codec
	directives map[string]*Directive
	built      bool
}

// NewRegistry returns a registry holding the builtin scalars, the include and
// skip directives and an empty Query root.
func NewRegistry() *Registry {
	r := &Registry{
		types:  map[string]*Type{},
		codecs: map[string]scalar.Codec{},
		directives: map[string]*Directive{
			"include": newIncludeDirective(),
			"skip":    newSkipDirective(),
		},
	}
	for _, b := range builtinScalars {
		r.add(NewType(b.name, TypeKindScalar, b.description))
		r.codecs[b.name] = b.codec
	}
	r.add(NewType(QueryTypeName, TypeKindObject, "The root query type."))
	return r
}

func (r *Registry) add(t *Type) {
	r.types[t.Name] = t
	r.order = append(r.order, t.Name)
}

func (r *Registry) checkOpen(name string) error {
	if r.built {
		return &Error{Type: name, Reason: "registration after Build"}
	}
	return nil
}

func (r *Registry) checkNew(name string) error {
	if err := r.checkOpen(name); err != nil {
		return err
	}
	if name == "" {
		return &Error{Reason: "type name must not be empty"}
	}
	if _, ok := r.types[name]; ok {
		return &Error{Type: name, Reason: "duplicate type name"}
	}
	return nil
}

// RegisterScalar declares a custom scalar backed by codec.
func (r *Registry) RegisterScalar(name string, codec scalar.Codec) (*Type, error) {
	if err := r.checkNew(name); err != nil {
		return nil, err
	}
	if codec == nil {
		return nil, &Error{Type: name, Reason: "scalar needs a codec"}
	}
	t := NewType(name, TypeKindScalar, "")
	r.add(t)
	r.codecs[name] = codec
	return t, nil
}

// RegisterEnum declares an enum type with the given values.
func (r *Registry) RegisterEnum(name string, values ...string) (*Type, error) {
	if err := r.checkNew(name); err != nil {
		return nil, err
	}
	t := NewType(name, TypeKindEnum, "")
	seen := map[string]bool{}
	for _, v := range values {
		if seen[v] {
			return nil, &Error{Type: name, Field: v, Reason: "duplicate enum value"}
		}
		seen[v] = true
		t.AddEnumValue(NewEnumValue(v, ""))
	}
	r.add(t)
	return t, nil
}

// RegisterType declares an object type.
func (r *Registry) RegisterType(name string, fields ...*Field) (*Type, error) {
	if err := r.checkNew(name); err != nil {
		return nil, err
	}
	t := NewType(name, TypeKindObject, "")
	for _, f := range fields {
		if t.Field(f.Name) != nil {
			return nil, &Error{Type: name, Field: f.Name, Reason: "duplicate field name"}
		}
		t.AddField(f)
	}
	r.add(t)
	return t, nil
}

// RegisterNode declares an object type with a stable identity. Nodes must
// declare an id field.
func (r *Registry) RegisterNode(name string, fields ...*Field) (*Type, error) {
	t, err := r.RegisterType(name, fields...)
	if err != nil {
		return nil, err
	}
	t.Node = true
	return t, nil
}

// Extend appends fields to an already registered object type.
func (r *Registry) Extend(name string, fields ...*Field) error {
	if err := r.checkOpen(name); err != nil {
		return err
	}
	t, ok := r.types[name]
	if !ok || t.Kind != TypeKindObject {
		return &Error{Type: name, Reason: "extending an undeclared object type"}
	}
	for _, f := range fields {
		if t.Field(f.Name) != nil {
			return &Error{Type: name, Field: f.Name, Reason: "duplicate field name"}
		}
		t.AddField(f)
	}
	return nil
}

// EntryPoint adds a top-level field to the Query root.
func (r *Registry) EntryPoint(f *Field) error {
	if err := r.checkOpen(QueryTypeName); err != nil {
		return err
	}
	q := r.types[QueryTypeName]
	if q.Field(f.Name) != nil {
		return &Error{Type: QueryTypeName, Field: f.Name, Reason: "duplicate entry point"}
	}
	q.AddField(f)
	return nil
}

// Build validates the registered definitions, synthesizes connection types
// and returns the immutable Schema.
func (r *Registry) Build() (*Schema, error) {
	if err := r.checkOpen(QueryTypeName); err != nil {
		return nil, err
	}
	r.built = true

	if err := r.synthesizeConnections(); err != nil {
		return nil, err
	}
	for _, name := range r.order {
		if err := r.validateType(r.types[name]); err != nil {
			return nil, err
		}
	}

	s := &Schema{
		QueryType:  QueryTypeName,
		Types:      r.types,
		TypeNames:  slices.Clone(r.order),
		Directives: r.directives,
		codecs:     r.codecs,
	}
	s.sdl = Render(s)
	doc, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: s.sdl})
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	s.ast = doc
	return s, nil
}

func (r *Registry) validateType(t *Type) error {
	if t.Kind != TypeKindObject {
		return nil
	}
	if len(t.Fields) == 0 {
		return &Error{Type: t.Name, Reason: "object type declares no fields"}
	}
	seen := map[string]bool{}
	for _, f := range t.Fields {
		if seen[f.Name] {
			return &Error{Type: t.Name, Field: f.Name, Reason: "duplicate field name"}
		}
		seen[f.Name] = true
		if f.Type == nil {
			return &Error{Type: t.Name, Field: f.Name, Reason: "field has no type"}
		}
		if _, ok := r.types[f.Type.GetNamedType()]; !ok {
			return &Error{Type: t.Name, Field: f.Name, Reason: fmt.Sprintf("undeclared type %q", f.Type.GetNamedType())}
		}
		for _, arg := range f.Arguments {
			at, ok := r.types[arg.Type.GetNamedType()]
			if !ok {
				return &Error{Type: t.Name, Field: f.Name, Reason: fmt.Sprintf("argument %q references undeclared type %q", arg.Name, arg.Type.GetNamedType())}
			}
			if at.Kind == TypeKindObject || arg.Type.IsConnection() {
				return &Error{Type: t.Name, Field: f.Name, Reason: fmt.Sprintf("argument %q must be a scalar or enum", arg.Name)}
			}
		}
	}
	if t.Node && t.Field("id") == nil {
		return &Error{Type: t.Name, Reason: "node type must declare an id field"}
	}
	return nil
}
