package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/phishgraph/phishgraph/internal/authz"
	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/language"
	"github.com/phishgraph/phishgraph/internal/model"
	"github.com/phishgraph/phishgraph/internal/relay"
	"github.com/phishgraph/phishgraph/internal/request"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/store"
)

// Params is one GraphQL request.
type Params struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Executor runs documents against one schema. It holds no per-request state
// and is safe for concurrent use.
type Executor struct {
	schema       *schema.Schema
	interceptors []schema.Interceptor
	chain        authz.Chain
	sem          *semaphore.Weighted
	logger       *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithInterceptors appends interceptors after the authorization interceptor.
func WithInterceptors(interceptors ...schema.Interceptor) Option {
	return func(e *Executor) { e.interceptors = append(e.interceptors, interceptors...) }
}

// WithMaxConcurrency bounds the number of resolvers running at once across
// all requests. Zero or less means unbounded.
func WithMaxConcurrency(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.sem = semaphore.NewWeighted(int64(n))
		} else {
			e.sem = nil
		}
	}
}

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(s *schema.Schema, opts ...Option) *Executor {
	e := &Executor{
		schema: s,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.chain = authz.NewChain(e.logger, e.interceptors...)
	return e
}

// Schema returns the schema documents are executed against.
func (e *Executor) Schema() *schema.Schema { return e.schema }

// ExecuteFile executes the document stored at path. params.Query is ignored.
func (e *Executor) ExecuteFile(ctx context.Context, path string, params Params, rc *request.Context) (*Result, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query file: %w", err)
	}
	params.Query = string(b)
	return e.Execute(ctx, params, rc), nil
}

// Execute validates and executes one operation. Validation failures and
// cancellation fail the request as a whole with nil data; every other error
// is scoped to the field it occurred on.
func (e *Executor) Execute(ctx context.Context, params Params, rc *request.Context) *Result {
	start := time.Now()
	eventbus.Publish(ctx, events.GraphQLStart{
		Query:         params.Query,
		OperationName: params.OperationName,
		OperationType: string(language.Query),
	})
	res := e.execute(ctx, params, rc)

	errs := make([]error, len(res.Errors))
	for i, err := range res.Errors {
		errs[i] = err
	}
	eventbus.Publish(ctx, events.GraphQLFinish{
		Query:         params.Query,
		OperationName: params.OperationName,
		OperationType: string(language.Query),
		Errors:        errs,
		Duration:      time.Since(start),
	})
	e.logger.DebugContext(ctx, "graphql operation",
		"operation", params.OperationName,
		"errors", len(res.Errors),
		"duration", time.Since(start))
	return res
}

func (e *Executor) execute(ctx context.Context, params Params, rc *request.Context) *Result {
	if rc == nil {
		rc = &request.Context{}
	}

	document, gqlErrs := language.LoadQuery(e.schema.AST(), params.Query)
	if len(gqlErrs) > 0 {
		res := &Result{}
		for _, ge := range gqlErrs {
			res.Errors = append(res.Errors, validationError(ge))
		}
		return res
	}

	operation := getOperation(document, params.OperationName)
	if operation == nil {
		return requestError(fmt.Sprintf("operation %q not found", params.OperationName), CodeBadRequest)
	}
	if operation.Operation != language.Query {
		return requestError(fmt.Sprintf("unsupported operation type: %s", operation.Operation), CodeBadRequest)
	}

	variables, err := coerceVariableValues(e.schema, operation, params.Variables)
	if err != nil {
		return requestError(err.Error(), CodeBadRequest)
	}

	state := &executionState{
		exec:           e,
		schema:         e.schema,
		request:        rc,
		document:       document,
		variableValues: variables,
	}
	data, errs := state.executeSelectionSet(ctx, e.schema.GetQueryType(), operation.SelectionSet, nil, Path{})

	if err := ctx.Err(); err != nil {
		// In-flight resolutions are abandoned; partial data is discarded.
		return requestError("execution aborted: "+err.Error(), errorCode(err))
	}
	return &Result{Data: data, Errors: errs}
}

func validationError(ge *language.Error) GraphQLError {
	out := GraphQLError{
		Message:    ge.Message,
		Extensions: map[string]any{"code": CodeValidationFailed},
	}
	for _, loc := range ge.Locations {
		out.Locations = append(out.Locations, Location{Line: loc.Line, Column: loc.Column})
	}
	return out
}

// executionState holds the state of one operation. It is read-only once
// execution starts.
type executionState struct {
	exec           *Executor
	schema         *schema.Schema
	request        *request.Context
	document       *language.QueryDocument
	variableValues map[string]any
}

// executeSelectionSet resolves the fields of one object. Sibling fields run
// concurrently; values and errors are assembled in document order. A nil
// map means a non-null child was null and the object itself is null.
func (s *executionState) executeSelectionSet(ctx context.Context, objectType *schema.Type, selectionSet language.SelectionSet, objectValue any, path Path) (map[string]any, []GraphQLError) {
	fields := s.collectFields(objectType, selectionSet)
	values := make([]any, len(fields))
	fieldErrs := make([][]GraphQLError, len(fields))

	run := func(i int) {
		cf := fields[i]
		values[i], fieldErrs[i] = s.executeField(ctx, objectType, objectValue, cf.Fields, appendPath(path, cf.ResponseName))
	}
	if len(fields) == 1 {
		run(0)
	} else {
		var g errgroup.Group
		for i := range fields {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	}

	var errs []GraphQLError
	for _, fe := range fieldErrs {
		errs = append(errs, fe...)
	}

	result := make(map[string]any, len(fields))
	for i, cf := range fields {
		if cf.Fields[0].Name != "__typename" {
			fieldDef := objectType.Field(cf.Fields[0].Name)
			if fieldDef != nil && schema.IsNonNull(fieldDef.Type) && isNullish(values[i]) {
				return nil, errs
			}
		}
		if isNullish(values[i]) {
			result[cf.ResponseName] = nil
		} else {
			result[cf.ResponseName] = values[i]
		}
	}
	return result, errs
}

func (s *executionState) executeField(ctx context.Context, objectType *schema.Type, objectValue any, fields []*language.Field, path Path) (any, []GraphQLError) {
	field := fields[0]
	if field.Name == "__typename" {
		return objectType.Name, nil
	}
	if ctx.Err() != nil {
		return nil, nil
	}

	fieldDef := objectType.Field(field.Name)
	if fieldDef == nil {
		return nil, []GraphQLError{{
			Message:    fmt.Sprintf("Cannot query field %q on type %q", field.Name, objectType.Name),
			Locations:  fieldLocations(fields),
			Path:       path,
			Extensions: map[string]any{"code": CodeValidationFailed},
		}}
	}
	fail := func(err error) (any, []GraphQLError) {
		return nil, []GraphQLError{newError(err, path, fieldLocations(fields))}
	}

	args, err := coerceArgumentValues(s.schema, fieldDef, field.Arguments, s.variableValues)
	if err != nil {
		return fail(err)
	}

	p := schema.ResolveParams{
		Context: ctx,
		Source:  objectValue,
		Args:    args,
		Request: s.request,
		Info: schema.ResolveInfo{
			Schema:     s.schema,
			ParentType: objectType,
			Field:      fieldDef,
			Path:       []any(path),
		},
	}
	value, err := s.resolve(ctx, p, fieldDef)
	if err != nil {
		var fetchErr *store.FetchError
		if errors.As(err, &fetchErr) && ctx.Err() == nil {
			s.exec.logger.WarnContext(ctx, "data fetch failed", "path", pathString(path), "error", err)
		}
		return fail(err)
	}

	// A typed nil collection is an empty connection; only an untyped nil is null.
	if fieldDef.Type.IsConnection() && value != nil {
		if _, ok := value.(*relay.Connection); !ok {
			items, ok := toSlice(value)
			if !ok {
				return fail(fmt.Errorf("connection field %s resolved to %T, not a collection", fieldDef.Name, value))
			}
			conn, err := relay.Paginate(items, pageArgs(args))
			if err != nil {
				return fail(err)
			}
			value = conn
		}
	}

	return s.completeValue(ctx, fieldDef.Type, fields, value, path)
}

// resolve runs the interceptor chain and resolver, holding a concurrency
// slot for the duration of the call.
func (s *executionState) resolve(ctx context.Context, p schema.ResolveParams, fieldDef *schema.Field) (any, error) {
	if sem := s.exec.sem; sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer sem.Release(1)
	}
	resolver := fieldDef.Resolve
	if resolver == nil {
		resolver = defaultResolver
	}
	return s.exec.chain.Resolve(p, resolver)
}

// defaultResolver reads the field's property from maps and entities.
func defaultResolver(p schema.ResolveParams) (any, error) {
	switch src := p.Source.(type) {
	case map[string]any:
		return src[p.Info.Field.Name], nil
	case model.Entity:
		v, _ := model.Value(src, p.Info.Field.Property())
		return v, nil
	}
	return nil, nil
}

// completeValue shapes a resolved value according to fieldType.
func (s *executionState) completeValue(ctx context.Context, fieldType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, []GraphQLError) {
	if schema.IsNonNull(fieldType) {
		if isNullish(result) {
			return nil, []GraphQLError{{
				Message:    fmt.Sprintf("Cannot return null for non-nullable field %s", pathString(path)),
				Locations:  fieldLocations(fields),
				Path:       path,
				Extensions: map[string]any{"code": CodeInternal},
			}}
		}
		completed, errs := s.completeValue(ctx, schema.Unwrap(fieldType), fields, result, path)
		if isNullish(completed) {
			return nil, errs
		}
		return completed, errs
	}

	if isNullish(result) {
		return nil, nil
	}

	if schema.IsList(fieldType) {
		return s.completeListValue(ctx, fieldType, fields, result, path)
	}

	namedType := schema.GetNamedType(fieldType)
	typeObj, err := s.schema.ResolveType(namedType)
	if err != nil {
		return nil, []GraphQLError{newError(err, path, fieldLocations(fields))}
	}

	switch typeObj.Kind {
	case schema.TypeKindScalar:
		codec, ok := s.schema.Codec(namedType)
		if !ok {
			return nil, []GraphQLError{newError(fmt.Errorf("scalar %s has no codec", namedType), path, fieldLocations(fields))}
		}
		serialized, err := codec.Serialize(result)
		if err != nil {
			return nil, []GraphQLError{newError(err, path, fieldLocations(fields))}
		}
		return serialized, nil
	case schema.TypeKindEnum:
		name := enumName(result)
		if !typeObj.HasEnumValue(name) {
			return nil, []GraphQLError{newError(fmt.Errorf("%q is not a value of enum %s", name, namedType), path, fieldLocations(fields))}
		}
		return name, nil
	case schema.TypeKindObject:
		data, errs := s.executeSelectionSet(ctx, typeObj, mergeSelectionSets(fields), result, path)
		if data == nil {
			return nil, errs
		}
		return data, errs
	default:
		return nil, []GraphQLError{newError(fmt.Errorf("cannot complete value of unexpected type: %s", typeObj.Kind), path, fieldLocations(fields))}
	}
}

// completeListValue completes each item; items of object type complete
// concurrently.
func (s *executionState) completeListValue(ctx context.Context, listType *schema.TypeRef, fields []*language.Field, result any, path Path) (any, []GraphQLError) {
	items, ok := toSlice(result)
	if !ok {
		return nil, []GraphQLError{newError(fmt.Errorf("expected list value, got %T", result), path, fieldLocations(fields))}
	}

	inner := schema.Unwrap(listType)
	completed := make([]any, len(items))
	itemErrs := make([][]GraphQLError, len(items))
	run := func(i int) {
		completed[i], itemErrs[i] = s.completeValue(ctx, inner, fields, items[i], appendPath(path, i))
	}

	if t := s.schema.Types[schema.GetNamedType(inner)]; t != nil && t.Kind == schema.TypeKindObject && len(items) > 1 {
		var g errgroup.Group
		for i := range items {
			g.Go(func() error {
				run(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := range items {
			run(i)
		}
	}

	var errs []GraphQLError
	nulled := false
	for i := range items {
		errs = append(errs, itemErrs[i]...)
		if isNullish(completed[i]) {
			completed[i] = nil
			if schema.IsNonNull(inner) {
				nulled = true
			}
		}
	}
	if nulled {
		return nil, errs
	}
	return completed, errs
}

func enumName(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func pathString(path Path) string {
	result := ""
	for i, elem := range path {
		switch v := elem.(type) {
		case string:
			if i > 0 {
				result += "."
			}
			result += v
		case int:
			result += fmt.Sprintf("[%d]", v)
		}
	}
	return result
}

func appendPath(path Path, elem PathElement) Path {
	newPath := make(Path, len(path)+1)
	copy(newPath, path)
	newPath[len(path)] = elem
	return newPath
}

// getOperation retrieves the operation from the document
func getOperation(document *language.QueryDocument, operationName string) *language.OperationDefinition {
	if operationName == "" {
		if len(document.Operations) == 1 {
			return document.Operations[0]
		}
		return nil
	}
	return document.Operations.ForName(operationName)
}

// isNullish returns true for nil interfaces and typed nils (map, slice, ptr, interface)
func isNullish(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Interface, reflect.Ptr, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
