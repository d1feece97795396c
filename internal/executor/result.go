package executor

import (
	"context"
	"errors"
	"fmt"

	"github.com/phishgraph/phishgraph/internal/relay"
	"github.com/phishgraph/phishgraph/internal/scalar"
	"github.com/phishgraph/phishgraph/internal/store"
)

// Error codes reported in extensions.code.
const (
	CodeValidationFailed = "GRAPHQL_VALIDATION_FAILED"
	CodeBadRequest       = "BAD_REQUEST"
	CodeArgument         = "ARGUMENT_ERROR"
	CodeScalarParse      = "SCALAR_PARSE_ERROR"
	CodePagination       = "PAGINATION_ERROR"
	CodeDataFetch        = "DATA_FETCH_ERROR"
	CodeCancelled        = "CANCELLED"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeInternal         = "INTERNAL_ERROR"
)

// Path locates a field in the result tree: response names and list
// indices from the root.
type Path []PathElement

// PathElement is a string response name or an int list index.
type PathElement = any

// Location is a line/column position in the query document.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Locations  []Location     `json:"locations,omitempty"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Code returns extensions.code, if any.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

// Result is the response of one operation. Data is nil when the request
// failed as a whole.
type Result struct {
	Data   map[string]any `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}

// ArgumentError reports a client-supplied argument that cannot be bound to
// its definition.
type ArgumentError struct {
	Field    string
	Argument string
	Reason   string
	Err      error
}

func (e *ArgumentError) Error() string {
	msg := fmt.Sprintf("argument %q of field %q", e.Argument, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// errorCode classifies err for extensions.code.
func errorCode(err error) string {
	var (
		parseErr *scalar.ParseError
		argErr   *ArgumentError
		pageErr  *relay.PaginationError
		fetchErr *store.FetchError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return CodeCancelled
	case errors.As(err, &parseErr):
		return CodeScalarParse
	case errors.As(err, &argErr):
		return CodeArgument
	case errors.As(err, &pageErr):
		return CodePagination
	case errors.As(err, &fetchErr):
		return CodeDataFetch
	default:
		return CodeInternal
	}
}

func newError(err error, path Path, locs []Location) GraphQLError {
	return GraphQLError{
		Message:    err.Error(),
		Locations:  locs,
		Path:       path,
		Extensions: map[string]any{"code": errorCode(err)},
	}
}

func requestError(message, code string) *Result {
	return &Result{Errors: []GraphQLError{{
		Message:    message,
		Extensions: map[string]any{"code": code},
	}}}
}
