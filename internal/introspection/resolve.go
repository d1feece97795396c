package introspection

import (
	"fmt"
	"sort"

	"github.com/phishgraph/phishgraph/internal/schema"
)

// typeValue returns the __Type source for ref: wrapper references stay
// TypeRefs, named and connection references resolve to their Type.
func typeValue(sch *schema.Schema, ref *schema.TypeRef) any {
	if ref == nil {
		return nil
	}
	if ref.Kind == schema.TypeRefKindNonNull || ref.Kind == schema.TypeRefKindList {
		return ref
	}
	if t, ok := sch.Types[ref.GetNamedType()]; ok {
		return t
	}
	return nil
}

func resolveSchemaTypes(sch *schema.Schema) []*schema.Type {
	out := make([]*schema.Type, 0, len(sch.Types))
	for _, t := range sch.Types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func resolveSchemaDirectives(sch *schema.Schema) []*schema.Directive {
	dirs := make([]*schema.Directive, 0, len(sch.Directives))
	for _, d := range sch.Directives {
		dirs = append(dirs, d)
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].Name < dirs[j].Name })
	return dirs
}

// resolveTypeFields keeps declaration order.
func resolveTypeFields(t *schema.Type, args map[string]any) []*schema.Field {
	if t.Kind != schema.TypeKindObject {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.Field{}
	for _, f := range t.Fields {
		if !includeDeprecated && f.IsDeprecated {
			continue
		}
		out = append(out, f)
	}
	return out
}

func resolveTypeInterfaces(sch *schema.Schema, t *schema.Type) []*schema.Type {
	if t.Kind != schema.TypeKindObject {
		return nil
	}
	out := make([]*schema.Type, 0, len(t.Interfaces))
	for _, name := range t.Interfaces {
		if def := sch.Types[name]; def != nil {
			out = append(out, def)
		}
	}
	return out
}

func resolveTypeEnumValues(t *schema.Type, args map[string]any) []*schema.EnumValue {
	if t.Kind != schema.TypeKindEnum {
		return nil
	}
	includeDeprecated := boolArg(args, "includeDeprecated", false)
	out := []*schema.EnumValue{}
	for _, ev := range t.EnumValues {
		if !includeDeprecated && ev.IsDeprecated {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func deprecationReason(deprecated bool, reason string) *string {
	if deprecated {
		return &reason
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func resolveSchemaField(_ *schema.Schema, src any, field string, _ map[string]any) (any, error) {
	sch, ok := src.(*schema.Schema)
	if !ok {
		return nil, fmt.Errorf("__Schema.%s: unexpected source %T", field, src)
	}
	switch field {
	case "types":
		return resolveSchemaTypes(sch), nil
	case "queryType":
		return sch.GetQueryType(), nil
	case "mutationType":
		return sch.GetMutationType(), nil
	case "subscriptionType":
		return sch.GetSubscriptionType(), nil
	case "directives":
		return resolveSchemaDirectives(sch), nil
	case "description":
		return optional(sch.Description), nil
	}
	return nil, nil
}

func resolveTypeField(sch *schema.Schema, src any, field string, args map[string]any) (any, error) {
	switch t := src.(type) {
	case *schema.Type:
		switch field {
		case "kind":
			return string(t.Kind), nil
		case "name":
			return t.Name, nil
		case "description":
			return optional(t.Description), nil
		case "fields":
			return resolveTypeFields(t, args), nil
		case "interfaces":
			return resolveTypeInterfaces(sch, t), nil
		case "possibleTypes", "inputFields":
			return nil, nil
		case "enumValues":
			return resolveTypeEnumValues(t, args), nil
		case "isOneOf":
			return false, nil
		}
		// specifiedByURL, and ofType which only wrappers have
		return nil, nil
	case *schema.TypeRef:
		switch field {
		case "kind":
			return string(t.Kind), nil
		case "ofType":
			return typeValue(sch, t.OfType), nil
		}
		return nil, nil
	}
	return nil, fmt.Errorf("__Type.%s: unexpected source %T", field, src)
}

func resolveFieldField(sch *schema.Schema, src any, field string, args map[string]any) (any, error) {
	f, ok := src.(*schema.Field)
	if !ok {
		return nil, fmt.Errorf("__Field.%s: unexpected source %T", field, src)
	}
	switch field {
	case "name":
		return f.Name, nil
	case "description":
		return optional(f.Description), nil
	case "args":
		return append([]*schema.InputValue{}, f.Arguments...), nil
	case "type":
		return typeValue(sch, f.Type), nil
	case "isDeprecated":
		return f.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(f.IsDeprecated, f.DeprecationReason), nil
	}
	return nil, nil
}

func resolveInputValueField(sch *schema.Schema, src any, field string, _ map[string]any) (any, error) {
	a, ok := src.(*schema.InputValue)
	if !ok {
		return nil, fmt.Errorf("__InputValue.%s: unexpected source %T", field, src)
	}
	switch field {
	case "name":
		return a.Name, nil
	case "description":
		return optional(a.Description), nil
	case "type":
		return typeValue(sch, a.Type), nil
	case "defaultValue":
		if a.DefaultValue == nil {
			return nil, nil
		}
		return schema.RenderValue(a.DefaultValue), nil
	case "isDeprecated":
		return false, nil
	}
	return nil, nil
}

func resolveEnumValueField(_ *schema.Schema, src any, field string, _ map[string]any) (any, error) {
	ev, ok := src.(*schema.EnumValue)
	if !ok {
		return nil, fmt.Errorf("__EnumValue.%s: unexpected source %T", field, src)
	}
	switch field {
	case "name":
		return ev.Name, nil
	case "description":
		return optional(ev.Description), nil
	case "isDeprecated":
		return ev.IsDeprecated, nil
	case "deprecationReason":
		return deprecationReason(ev.IsDeprecated, ev.DeprecationReason), nil
	}
	return nil, nil
}

func resolveDirectiveField(_ *schema.Schema, src any, field string, _ map[string]any) (any, error) {
	d, ok := src.(*schema.Directive)
	if !ok {
		return nil, fmt.Errorf("__Directive.%s: unexpected source %T", field, src)
	}
	switch field {
	case "name":
		return d.Name, nil
	case "description":
		return optional(d.Description), nil
	case "isRepeatable":
		return d.IsRepeatable, nil
	case "locations":
		return append([]string{}, d.Locations...), nil
	case "args":
		return append([]*schema.InputValue{}, d.Arguments...), nil
	}
	return nil, nil
}

func boolArg(args map[string]any, name string, def bool) bool {
	if v, ok := args[name].(bool); ok {
		return v
	}
	return def
}
