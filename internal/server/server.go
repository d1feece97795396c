// Package server exposes the executor over HTTP: POST (single or batched)
// and GET requests on the GraphQL endpoint, an optional GraphiQL page, plus
// health and metrics routes.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/events"
	"github.com/phishgraph/phishgraph/internal/executor"
	"github.com/phishgraph/phishgraph/internal/reqid"
	"github.com/phishgraph/phishgraph/internal/request"
	"github.com/phishgraph/phishgraph/internal/session"
)

// SessionResolver authenticates bearer tokens.
type SessionResolver interface {
	Lookup(token string) (session.Session, bool)
}

// Handler is an http.Handler that serves a GraphQL endpoint.
type Handler struct {
	exec *executor.Executor
	base *request.Context
	opt  Options
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS configuration. If AllowedOrigins is empty, CORS is disabled.
	CORS CORSOptions

	// GraphiQL enables the in-browser IDE when true.
	GraphiQL bool

	// Sessions authenticates the Authorization header. Without a resolver
	// every request runs unauthenticated.
	Sessions SessionResolver

	// AllowAnonymous lets requests without an Authorization header through
	// unauthenticated when Sessions is set.
	AllowAnonymous bool

	Logger *slog.Logger
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}
func WithGraphiQL(enable bool) Option { return func(o *Options) { o.GraphiQL = enable } }
func WithSessions(r SessionResolver, allowAnonymous bool) Option {
	return func(o *Options) {
		o.Sessions = r
		o.AllowAnonymous = allowAnonymous
	}
}
func WithLogger(l *slog.Logger) Option { return func(o *Options) { o.Logger = l } }

// CORSOptions holds simple CORS settings.
type CORSOptions struct {
	AllowedOrigins []string
}

// New creates a handler executing documents with exec. base supplies the
// store, plugins and geolocation of every request; its session is replaced
// by the authenticated one.
func New(exec *executor.Executor, base *request.Context, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second, GraphiQL: true}
	for _, f := range opts {
		f(&op)
	}
	if op.Logger == nil {
		op.Logger = slog.New(slog.DiscardHandler)
	}
	if base == nil {
		base = &request.Context{}
	}
	return &Handler{exec: exec, base: base, opt: op}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	var rid string
	if incoming := r.Header.Get(reqid.Header); incoming != "" {
		ctx, rid = reqid.WithID(ctx, incoming)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}
	w.Header().Set(reqid.Header, rid)

	var (
		status = http.StatusOK
		userID string
		batchN int
		start  = time.Now()
	)
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		d := time.Since(start)
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: status, UserID: userID, Batch: batchN, Duration: d})
		h.opt.Logger.DebugContext(ctx, "http request",
			"request_id", rid, "method", r.Method, "path", r.URL.Path, "status", status, "user", userID, "duration", d)
	}()

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}

	if r.Method == http.MethodOptions {
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		status = http.StatusMethodNotAllowed
		writeJSON(w, status, errorResult(executor.CodeBadRequest, "method not allowed"), h.opt.Pretty)
		return
	}

	// Serve GraphiQL IDE when enabled and the client expects HTML.
	if r.Method == http.MethodGet && h.opt.GraphiQL && acceptsHTML(r.Header.Get("Accept")) && r.URL.Query().Get("query") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(graphiqlPage))
		return
	}

	rc, ok := h.authenticate(r)
	if !ok {
		status = http.StatusUnauthorized
		w.Header().Set("WWW-Authenticate", `Bearer realm="phishgraph"`)
		writeJSON(w, status, errorResult("UNAUTHENTICATED", "invalid or missing bearer token"), h.opt.Pretty)
		return
	}
	if rc.Session != nil {
		userID = rc.Session.UserID()
	}

	req, batch, perr := parseRequest(r, h.opt.MaxBodyBytes)
	if perr != nil {
		status = http.StatusBadRequest
		if perr.Message == errBodyTooLargeMessage {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, errorResult(executor.CodeBadRequest, perr.Message), h.opt.Pretty)
		return
	}

	if batch != nil {
		// operations of a batch run one after another so each gets its own
		// trace span under the request id
		batchN = len(batch)
		out := make([]*executor.Result, len(batch))
		for i := range batch {
			out[i] = h.exec.Execute(ctx, batch[i], rc)
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	writeJSON(w, status, h.exec.Execute(ctx, req, rc), h.opt.Pretty)
}

// authenticate binds the session named by the bearer token. It fails for
// unknown tokens and, unless anonymous access is allowed, for missing ones.
func (h *Handler) authenticate(r *http.Request) (*request.Context, bool) {
	if h.opt.Sessions == nil {
		return h.base.WithSession(nil), true
	}
	header := r.Header.Get("Authorization")
	if header == "" {
		return h.base.WithSession(nil), h.opt.AllowAnonymous
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return nil, false
	}
	s, ok := h.opt.Sessions.Lookup(strings.TrimSpace(token))
	if !ok {
		return nil, false
	}
	return h.base.WithSession(s), true
}

// ------------------ Request parsing ------------------

type requestError struct{ Message string }

func parseRequest(r *http.Request, maxBody int64) (executor.Params, []executor.Params, *requestError) {
	if r.Method == http.MethodGet {
		q := r.URL.Query().Get("query")
		if q == "" {
			return executor.Params{}, nil, &requestError{"missing 'query'"}
		}
		vars := map[string]any{}
		if v := r.URL.Query().Get("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &vars); err != nil {
				return executor.Params{}, nil, &requestError{"invalid 'variables' JSON"}
			}
		}
		op := r.URL.Query().Get("operationName")
		return executor.Params{Query: q, Variables: vars, OperationName: op}, nil, nil
	}

	// POST
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !strings.HasPrefix(ct, "application/json;") {
		return executor.Params{}, nil, &requestError{"unsupported Content-Type"}
	}
	defer r.Body.Close()
	reader := io.Reader(r.Body)
	if maxBody > 0 {
		reader = io.LimitReader(r.Body, maxBody+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return executor.Params{}, nil, &requestError{"failed to read body"}
	}
	if maxBody > 0 && int64(len(body)) > maxBody {
		return executor.Params{}, nil, &requestError{errBodyTooLargeMessage}
	}

	// Try array (batch)
	if len(body) > 0 && body[0] == '[' {
		var arr []executor.Params
		if err := json.Unmarshal(body, &arr); err != nil {
			return executor.Params{}, nil, &requestError{"invalid JSON"}
		}
		if len(arr) == 0 {
			return executor.Params{}, nil, &requestError{"empty batch"}
		}
		return executor.Params{}, arr, nil
	}
	var req executor.Params
	if err := json.Unmarshal(body, &req); err != nil {
		return executor.Params{}, nil, &requestError{"invalid JSON"}
	}
	if req.Query == "" {
		return executor.Params{}, nil, &requestError{"missing 'query'"}
	}
	return req, nil, nil
}

// ------------------ Response formatting ------------------

func errorResult(code, message string) *executor.Result {
	return &executor.Result{Errors: []executor.GraphQLError{{
		Message:    message,
		Extensions: map[string]any{"code": code},
	}}}
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

const errBodyTooLargeMessage = "body too large"

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := contains(opts.AllowedOrigins, "*")
	if !wildcard && !contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func acceptsHTML(accept string) bool {
	for _, p := range strings.Split(accept, ",") {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "text/html") || p == "*/*" {
			return true
		}
	}
	return false
}

// Routes mounts the GraphQL handler at path next to /healthz and, when
// metrics is not nil, /metrics.
func Routes(path string, graphql http.Handler, metrics http.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle(path, graphql)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
	return mux
}
