package executor

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/phishgraph/phishgraph/internal/language"
	"github.com/phishgraph/phishgraph/internal/relay"
	"github.com/phishgraph/phishgraph/internal/schema"
)

// coerceVariableValues applies variable defaults and checks every supplied
// value against its declared type. Any failure rejects the whole request.
// The raw values are kept; they are parsed again where they bind to field
// arguments.
func coerceVariableValues(s *schema.Schema, operation *language.OperationDefinition, variableValues map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(operation.VariableDefinitions))
	for _, varDef := range operation.VariableDefinitions {
		name := varDef.Variable
		t := varDef.Type
		val, ok := variableValues[name]
		if !ok {
			val, ok = variableValues[strings.TrimPrefix(name, "$")]
		}
		if !ok {
			if varDef.DefaultValue != nil {
				val, _ = valueFromAST(varDef.DefaultValue, nil)
			} else if t.NonNull {
				return nil, fmt.Errorf("variable $%s of required type %s was not provided", name, t.String())
			} else {
				continue
			}
		}
		if val == nil && t.NonNull {
			return nil, fmt.Errorf("variable $%s of type %s cannot be null", name, t.String())
		}
		if _, err := coerceValue(s, val, variableType(t)); err != nil {
			return nil, fmt.Errorf("variable $%s of type %s: %w", name, t.String(), err)
		}
		coerced[name] = val
	}
	return coerced, nil
}

// variableType converts a declared variable type into a schema reference.
func variableType(t *language.Type) *schema.TypeRef {
	var ref *schema.TypeRef
	if t.Elem != nil {
		ref = schema.ListType(variableType(t.Elem))
	} else {
		ref = schema.NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = schema.NonNullType(ref)
	}
	return ref
}

// coerceArgumentValues binds the arguments of field to fieldDef, parsing
// scalars through the schema codecs.
func coerceArgumentValues(s *schema.Schema, fieldDef *schema.Field, arguments language.ArgumentList, variableValues map[string]any) (map[string]any, error) {
	coerced := make(map[string]any, len(fieldDef.Arguments))
	for _, arg := range arguments {
		argDef := fieldDef.Argument(arg.Name)
		if argDef == nil {
			return nil, &ArgumentError{Field: fieldDef.Name, Argument: arg.Name, Reason: "unknown argument"}
		}
		val, present := valueFromAST(arg.Value, variableValues)
		if !present {
			continue
		}
		cv, err := coerceValue(s, val, argDef.Type)
		if err != nil {
			return nil, &ArgumentError{Field: fieldDef.Name, Argument: arg.Name, Err: err}
		}
		coerced[arg.Name] = cv
	}
	for _, argDef := range fieldDef.Arguments {
		if _, ok := coerced[argDef.Name]; ok {
			continue
		}
		if lit, ok := argDef.DefaultValue.(schema.EnumLiteral); ok {
			coerced[argDef.Name] = string(lit)
		} else if argDef.DefaultValue != nil {
			coerced[argDef.Name] = argDef.DefaultValue
		} else if schema.IsNonNull(argDef.Type) {
			return nil, &ArgumentError{Field: fieldDef.Name, Argument: argDef.Name, Reason: "required argument was not provided"}
		}
	}
	return coerced, nil
}

// valueFromAST converts an AST value to a runtime value with variable
// substitution. It reports false for a variable that was not supplied.
func valueFromAST(value *language.Value, variableValues map[string]any) (any, bool) {
	if value == nil {
		return nil, true
	}
	switch value.Kind {
	case language.Variable:
		v, ok := variableValues[value.Raw]
		return v, ok
	case language.IntValue:
		iv, err := strconv.ParseInt(value.Raw, 10, 64)
		if err != nil {
			return value.Raw, true
		}
		return int(iv), true
	case language.FloatValue:
		fv, _ := strconv.ParseFloat(value.Raw, 64)
		return fv, true
	case language.StringValue, language.BlockValue, language.EnumValue:
		return value.Raw, true
	case language.BooleanValue:
		return value.Raw == "true", true
	case language.NullValue:
		return nil, true
	case language.ListValue:
		out := make([]any, 0, len(value.Children))
		for _, c := range value.Children {
			v, _ := valueFromAST(c.Value, variableValues)
			out = append(out, v)
		}
		return out, true
	case language.ObjectValue:
		m := make(map[string]any, len(value.Children))
		for _, f := range value.Children {
			if v, ok := valueFromAST(f.Value, variableValues); ok {
				m[f.Name] = v
			}
		}
		return m, true
	default:
		return nil, true
	}
}

// coerceValue coerces a value to the specified input type
func coerceValue(s *schema.Schema, value any, targetType *schema.TypeRef) (any, error) {
	if schema.IsNonNull(targetType) {
		if value == nil {
			return nil, fmt.Errorf("cannot provide null for non-null type")
		}
		return coerceValue(s, value, schema.Unwrap(targetType))
	}

	if value == nil {
		return nil, nil
	}

	if schema.IsList(targetType) {
		inner := schema.Unwrap(targetType)
		items, ok := value.([]any)
		if !ok {
			// A single value becomes a list of one
			items = []any{value}
		}
		out := make([]any, len(items))
		for i, item := range items {
			cv, err := coerceValue(s, item, inner)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil
	}

	name := schema.GetNamedType(targetType)
	t, err := s.ResolveType(name)
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case schema.TypeKindEnum:
		str, ok := value.(string)
		if !ok || !t.HasEnumValue(str) {
			return nil, fmt.Errorf("%v is not a value of enum %s", value, name)
		}
		return str, nil
	case schema.TypeKindScalar:
		codec, ok := s.Codec(name)
		if !ok {
			return nil, fmt.Errorf("scalar %s has no codec", name)
		}
		return codec.Parse(value)
	default:
		return nil, fmt.Errorf("type %s cannot be used as input", name)
	}
}

// pageArgs extracts the connection arguments bound by coerceArgumentValues.
func pageArgs(args map[string]any) relay.PageArgs {
	var out relay.PageArgs
	if v, ok := args["first"].(int); ok {
		out.First = &v
	}
	if v, ok := args["after"].(string); ok {
		out.After = &v
	}
	return out
}

// toSlice flattens any slice value into []any.
func toSlice(value any) ([]any, bool) {
	if direct, ok := value.([]any); ok {
		return direct, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}
