// Package config loads the phishgraph configuration file.
//
// Configuration comes from one YAML file named by the --config flag or the
// PHISHGRAPH_CONFIG environment variable. Values not present in the file
// keep the defaults of Default. ${VAR} and ${VAR:-default} references in
// paths are expanded from the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/phishgraph/phishgraph/internal/geoip"
	"github.com/phishgraph/phishgraph/internal/plugin"
	"github.com/phishgraph/phishgraph/internal/session"
)

// EnvVar names the environment variable holding the config path.
const EnvVar = "PHISHGRAPH_CONFIG"

// Config is the complete server configuration.
type Config struct {
	// Version is reported by the version entry point.
	Version string `yaml:"version"`

	Server   ServerConfig   `yaml:"server"`
	Executor ExecutorConfig `yaml:"executor"`
	Store    StoreConfig    `yaml:"store"`
	GeoIP    GeoIPConfig    `yaml:"geoip"`
	OTel     OTelConfig     `yaml:"otel"`
	Log      LogConfig      `yaml:"log"`

	Plugins []plugin.Descriptor `yaml:"plugins"`

	// Sessions maps bearer tokens to the session they authenticate.
	Sessions session.Tokens `yaml:"sessions"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// Path is where the GraphQL endpoint is mounted.
	Path         string        `yaml:"path"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	Pretty       bool          `yaml:"pretty"`
	GraphiQL     bool          `yaml:"graphiql"`
	CORSOrigins  []string      `yaml:"cors_origins"`
	// AllowAnonymous admits requests without a bearer token when sessions
	// are configured.
	AllowAnonymous bool `yaml:"allow_anonymous"`
}

type ExecutorConfig struct {
	// MaxConcurrency bounds concurrently running resolvers per request.
	// Zero means unbounded.
	MaxConcurrency int64 `yaml:"max_concurrency"`
}

type StoreConfig struct {
	// Fixture is a YAML document loaded into the in-memory store.
	Fixture string `yaml:"fixture"`
}

type GeoIPConfig struct {
	// Database is a MaxMind City database. When empty, Table is used.
	Database string      `yaml:"database"`
	Table    geoip.Table `yaml:"table"`
}

type OTelConfig struct {
	// Endpoint is the OTLP gRPC collector address; empty disables tracing.
	Endpoint string `yaml:"endpoint"`
	Service  string `yaml:"service"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used as the base for every file.
func Default() *Config {
	return &Config{
		Version: "dev",
		Server: ServerConfig{
			Addr:         ":8080",
			Path:         "/graphql",
			Timeout:      30 * time.Second,
			MaxBodyBytes: 1 << 20,
			GraphiQL:     true,
		},
		OTel: OTelConfig{Service: "phishgraph"},
		Log:  LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads the file named by PHISHGRAPH_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return nil, fmt.Errorf("%s is not set; set it to the path of your config file or pass --config", EnvVar)
	}
	return LoadFile(path)
}

// LoadFile reads path on top of Default and validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document on top of Default and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.Store.Fixture = expandVars(c.Store.Fixture)
	c.GeoIP.Database = expandVars(c.GeoIP.Database)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if v := os.Getenv(parts[1]); v != "" {
			return v
		}
		return parts[2]
	})
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if !strings.HasPrefix(c.Server.Path, "/") {
		errs = append(errs, fmt.Errorf("server.path must start with /: %q", c.Server.Path))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, errors.New("server.timeout must not be negative"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Executor.MaxConcurrency < 0 {
		errs = append(errs, errors.New("executor.max_concurrency must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		errs = append(errs, fmt.Errorf("log.format must be text or json: %q", c.Log.Format))
	}
	seen := map[string]bool{}
	for i, p := range c.Plugins {
		if p.Name == "" {
			errs = append(errs, fmt.Errorf("plugins[%d].name is required", i))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Errorf("duplicate plugin %q", p.Name))
		}
		seen[p.Name] = true
	}
	for token, s := range c.Sessions {
		if token == "" {
			errs = append(errs, errors.New("sessions: empty token"))
		}
		if s == nil || s.User == "" {
			errs = append(errs, fmt.Errorf("sessions: token %s...: user is required", redact(token)))
		}
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// redact keeps a token prefix for error messages.
func redact(token string) string {
	if len(token) > 4 {
		return token[:4]
	}
	return token
}
