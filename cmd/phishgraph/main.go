package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/phishgraph/phishgraph/internal/config"
	"github.com/phishgraph/phishgraph/internal/eventbus"
	"github.com/phishgraph/phishgraph/internal/executor"
	"github.com/phishgraph/phishgraph/internal/geoip"
	"github.com/phishgraph/phishgraph/internal/graph"
	"github.com/phishgraph/phishgraph/internal/metrics"
	"github.com/phishgraph/phishgraph/internal/otel"
	"github.com/phishgraph/phishgraph/internal/plugin"
	"github.com/phishgraph/phishgraph/internal/request"
	"github.com/phishgraph/phishgraph/internal/schema"
	"github.com/phishgraph/phishgraph/internal/server"
	"github.com/phishgraph/phishgraph/internal/session"
	"github.com/phishgraph/phishgraph/internal/store"
)

const rootUsage = `phishgraph: read-only GraphQL access to King Phisher campaign data

USAGE:
  phishgraph <command> [flags]

COMMANDS:
  serve            Run the HTTP GraphQL server
  exec             Execute a query file and print the JSON result
  sdl              Print the GraphQL schema
  help             Show help for any command
`

const serveUsage = `serve FLAGS:
  --config <file>      Configuration file (default: $PHISHGRAPH_CONFIG)
  --addr <addr>        HTTP listen address, overrides server.addr
  --pretty             Pretty-print JSON responses, overrides server.pretty
`

const execUsage = `exec FLAGS:
  --config <file>      Configuration file (default: $PHISHGRAPH_CONFIG)
  --query-file <file>  GraphQL document to execute (required)
  --operation <name>   Operation to run when the document holds several
  --token <token>      Bearer token selecting the session; empty runs unauthenticated
  --var <name=value>   Variable value, parsed as JSON when possible. Repeatable
  --pretty             Indent the JSON output
`

const sdlUsage = `sdl FLAGS:
  --out <file>         Write the schema to file (default: stdout)
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return errors.New("missing command")
	}
	cmd, cmdArgs := args[0], args[1:]
	switch cmd {
	case "serve":
		return cmdServe(ctx, cmdArgs, stderr)
	case "exec":
		return cmdExec(ctx, cmdArgs, stdout, stderr)
	case "sdl":
		return cmdSDL(cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "serve":
		fmt.Fprint(stdout, serveUsage)
	case "exec":
		fmt.Fprint(stdout, execUsage)
	case "sdl":
		fmt.Fprint(stdout, sdlUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}

func cmdServe(ctx context.Context, args []string, stderr io.Writer) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "configuration file")
	addr := fs.String("addr", "", "HTTP listen address")
	pretty := fs.Bool("pretty", false, "pretty-print JSON responses")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, serveUsage)
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if fs.Changed("addr") {
		cfg.Server.Addr = *addr
	}
	if fs.Changed("pretty") {
		cfg.Server.Pretty = *pretty
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	eventbus.Use(eventbus.New())
	shutdownTracing, err := otel.Setup(ctx, cfg.OTel.Endpoint, cfg.OTel.Service)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	m := metrics.New()
	defer m.Subscribe()()

	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	sopts := []server.Option{
		server.WithTimeout(cfg.Server.Timeout),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
		server.WithGraphiQL(cfg.Server.GraphiQL),
		server.WithLogger(logger),
	}
	if cfg.Server.Pretty {
		sopts = append(sopts, server.WithPretty())
	}
	if len(cfg.Server.CORSOrigins) > 0 {
		sopts = append(sopts, server.WithCORS(cfg.Server.CORSOrigins...))
	}
	if len(cfg.Sessions) > 0 {
		sopts = append(sopts, server.WithSessions(cfg.Sessions, cfg.Server.AllowAnonymous))
	}
	h := server.New(env.exec, env.base, sopts...)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.Routes(cfg.Server.Path, h, m.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("graphql server listening", "addr", cfg.Server.Addr, "path", cfg.Server.Path, "version", cfg.Version)

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

type varsFlag map[string]any

func (v varsFlag) String() string { return "" }

func (v varsFlag) Type() string { return "name=value" }

func (v varsFlag) Set(s string) error {
	name, raw, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid variable %q", s)
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		value = raw
	}
	v[name] = value
	return nil
}

func cmdExec(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	vars := varsFlag{}
	fs := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "configuration file")
	queryFile := fs.String("query-file", "", "GraphQL document to execute")
	operation := fs.String("operation", "", "operation name")
	token := fs.String("token", "", "bearer token")
	pretty := fs.Bool("pretty", false, "indent the JSON output")
	fs.Var(vars, "var", "variable value")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, execUsage)
		return err
	}
	if *queryFile == "" {
		fmt.Fprint(stderr, execUsage)
		return errors.New("--query-file is required")
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	env, err := newEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	var sess session.Session
	if *token != "" {
		s, ok := cfg.Sessions.Lookup(*token)
		if !ok {
			return errors.New("unknown token")
		}
		sess = s
	}

	res, err := env.exec.ExecuteFile(ctx, *queryFile, executor.Params{
		OperationName: *operation,
		Variables:     vars,
	}, env.base.WithSession(sess))
	if err != nil {
		return err
	}
	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		return err
	}
	if res.Data == nil {
		return errors.New("query failed")
	}
	return nil
}

func cmdSDL(args []string, stdout, stderr io.Writer) error {
	fs := pflag.NewFlagSet("sdl", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	outFile := fs.String("out", "", "write the schema to file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprint(stderr, sdlUsage)
		return err
	}
	s, err := graph.Build(config.Default().Version)
	if err != nil {
		return fmt.Errorf("build schema: %w", err)
	}
	sdl := schema.Render(s)
	if *outFile == "" {
		_, err := io.WriteString(stdout, sdl)
		return err
	}
	return os.WriteFile(*outFile, []byte(sdl), 0o644)
}

// loadConfig reads path, falling back to $PHISHGRAPH_CONFIG and then to the
// defaults.
func loadConfig(path string) (*config.Config, error) {
	switch {
	case path != "":
		return config.LoadFile(path)
	case os.Getenv(config.EnvVar) != "":
		return config.Load()
	default:
		return config.Default(), nil
	}
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// environment is everything a request executes against.
type environment struct {
	exec    *executor.Executor
	base    *request.Context
	closers []io.Closer
}

func newEnvironment(cfg *config.Config, logger *slog.Logger) (*environment, error) {
	env := &environment{}

	mem := store.NewMemory()
	if cfg.Store.Fixture != "" {
		var err error
		if mem, err = store.LoadFixture(cfg.Store.Fixture); err != nil {
			return nil, err
		}
	}

	var lookup geoip.Lookup
	switch {
	case cfg.GeoIP.Database != "":
		mm, err := geoip.OpenMaxMind(cfg.GeoIP.Database)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, mm)
		lookup = mm
	case len(cfg.GeoIP.Table) > 0:
		lookup = cfg.GeoIP.Table
	}

	s, err := graph.Build(cfg.Version)
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("build schema: %w", err)
	}
	env.exec = executor.New(s,
		executor.WithMaxConcurrency(int(cfg.Executor.MaxConcurrency)),
		executor.WithLogger(logger))
	env.base = &request.Context{
		Store:   store.Instrument(mem),
		Plugins: plugin.FromList(cfg.Plugins),
		Geo:     geoip.NewLocator(lookup, geoip.WithLogger(logger)),
	}
	return env, nil
}

func (e *environment) Close() {
	for _, c := range e.closers {
		_ = c.Close()
	}
}
