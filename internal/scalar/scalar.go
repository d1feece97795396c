// Package scalar holds the serialize/parse codecs for leaf values. Builtin
// GraphQL scalars and the DateTime scalar are provided; the schema registry
// maps scalar names to codecs.
package scalar

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
)

// Codec converts between in-memory values and their wire representation.
type Codec interface {
	// Serialize converts a resolved value into a JSON-safe wire value.
	Serialize(value any) (any, error)
	// Parse converts a wire value (argument literal or variable) into the
	// in-memory representation.
	Parse(value any) (any, error)
}

// ParseError reports a scalar literal that does not match the scalar's wire
// format.
type ParseError struct {
	Scalar string
	Value  any
	Reason string
}

func (e *ParseError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid %s value %q: %s", e.Scalar, fmt.Sprint(e.Value), e.Reason)
	}
	return fmt.Sprintf("invalid %s value %q", e.Scalar, fmt.Sprint(e.Value))
}

// Builtins returns the codecs for the five builtin GraphQL scalars keyed by
// name.
func Builtins() map[string]Codec {
	return map[string]Codec{
		"String":  String,
		"Int":     Int,
		"Float":   Float,
		"Boolean": Boolean,
		"ID":      ID,
	}
}

var (
	String  Codec = stringCodec{}
	Int     Codec = intCodec{}
	Float   Codec = floatCodec{}
	Boolean Codec = booleanCodec{}
	ID      Codec = idCodec{}
)

type stringCodec struct{}

func (stringCodec) Serialize(value any) (any, error) {
	switch v := deref(value).(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func (stringCodec) Parse(value any) (any, error) {
	if v, ok := value.(string); ok {
		return v, nil
	}
	return nil, &ParseError{Scalar: "String", Value: value, Reason: "expected a string"}
}

type intCodec struct{}

func (intCodec) Serialize(value any) (any, error) {
	n, ok := toInt64(deref(value))
	if !ok {
		return nil, fmt.Errorf("cannot serialize %T as Int", value)
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, fmt.Errorf("cannot serialize %v as Int: outside the signed 32-bit range", n)
	}
	return int(n), nil
}

func (intCodec) Parse(value any) (any, error) {
	n, ok := toInt64(value)
	if !ok {
		return nil, &ParseError{Scalar: "Int", Value: value, Reason: "expected an integer"}
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return nil, &ParseError{Scalar: "Int", Value: value, Reason: "outside the signed 32-bit range"}
	}
	return int(n), nil
}

type floatCodec struct{}

func (floatCodec) Serialize(value any) (any, error) {
	f, ok := toFloat(deref(value))
	if !ok {
		return nil, fmt.Errorf("cannot serialize %T as Float", value)
	}
	return f, nil
}

func (floatCodec) Parse(value any) (any, error) {
	f, ok := toFloat(value)
	if !ok {
		return nil, &ParseError{Scalar: "Float", Value: value, Reason: "expected a number"}
	}
	return f, nil
}

type booleanCodec struct{}

func (booleanCodec) Serialize(value any) (any, error) {
	if b, ok := deref(value).(bool); ok {
		return b, nil
	}
	return nil, fmt.Errorf("cannot serialize %T as Boolean", value)
}

func (booleanCodec) Parse(value any) (any, error) {
	if b, ok := value.(bool); ok {
		return b, nil
	}
	return nil, &ParseError{Scalar: "Boolean", Value: value, Reason: "expected a boolean"}
}

// idCodec keeps node identities unobfuscated: the global id is the local id
// rendered as a string.
type idCodec struct{}

func (idCodec) Serialize(value any) (any, error) {
	switch v := deref(value).(type) {
	case string:
		return v, nil
	default:
		if n, ok := toInt64(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return fmt.Sprint(v), nil
	}
}

func (idCodec) Parse(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	default:
		if n, ok := toInt64(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
	}
	return nil, &ParseError{Scalar: "ID", Value: value, Reason: "expected a string or integer"}
}

// toInt64 reports false for values that are not integral or do not fit in an
// int64.
func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		if uint64(v) <= math.MaxInt64 {
			return int64(v), true
		}
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v), true
		}
	case float64:
		return floatToInt64(v)
	case float32:
		return floatToInt64(float64(v))
	case json.Number:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	// math.MaxInt64 rounds up to 2^63 as a float64.
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case uint64:
		return float64(v), true
	case uint:
		return float64(v), true
	}
	if n, ok := toInt64(value); ok {
		return float64(n), true
	}
	return 0, false
}

// deref unwraps non-nil pointers so nullable model columns serialize like
// their element type.
func deref(value any) any {
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if !rv.IsValid() {
		return nil
	}
	return rv.Interface()
}
