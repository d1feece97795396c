package scalar

import (
	"fmt"
	"regexp"
	"time"
)

// DateTimeLayout is the only accepted wire format for DateTime values:
// microsecond precision, no zone designator.
const DateTimeLayout = "2006-01-02T15:04:05.000000"

var dateTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{6}$`)

// DateTime serializes time.Time values with DateTimeLayout. Values that are
// already strings are passed through untouched.
var DateTime Codec = dateTimeCodec{}

type dateTimeCodec struct{}

func (dateTimeCodec) Serialize(value any) (any, error) {
	switch v := deref(value).(type) {
	case string:
		return v, nil
	case time.Time:
		return v.Format(DateTimeLayout), nil
	default:
		return nil, fmt.Errorf("cannot serialize %T as DateTime", value)
	}
}

func (dateTimeCodec) Parse(value any) (any, error) {
	s, ok := value.(string)
	if !ok {
		return nil, &ParseError{Scalar: "DateTime", Value: value, Reason: "expected a string"}
	}
	if !dateTimePattern.MatchString(s) {
		return nil, &ParseError{Scalar: "DateTime", Value: s, Reason: "expected format YYYY-MM-DDTHH:MM:SS.ffffff"}
	}
	t, err := time.Parse(DateTimeLayout, s)
	if err != nil {
		return nil, &ParseError{Scalar: "DateTime", Value: s, Reason: err.Error()}
	}
	return t, nil
}
