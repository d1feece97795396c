package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phishgraph/phishgraph/internal/geoip"
	"github.com/phishgraph/phishgraph/internal/plugin"
	"github.com/phishgraph/phishgraph/internal/session"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoadFile(t *testing.T) {
	t.Setenv("PHISHGRAPH_DATA", "")
	cfg, err := LoadFile("testdata/phishgraph.yaml")
	require.NoError(t, err)

	want := &Config{
		Version: "1.16.0",
		Server: ServerConfig{
			Addr:         "127.0.0.1:9000",
			Path:         "/graphql",
			Timeout:      5 * time.Second,
			MaxBodyBytes: 1 << 20,
			Pretty:       true,
			GraphiQL:     true,
			CORSOrigins:  []string{"https://console.example.com"},
		},
		Executor: ExecutorConfig{MaxConcurrency: 8},
		Store:    StoreConfig{Fixture: "/var/lib/phishgraph/fixture.yaml"},
		GeoIP: GeoIPConfig{Table: geoip.Table{
			"8.8.8.8": {City: "Mountain View", Country: "United States", Coordinates: []float64{37.386, -122.0838}},
		}},
		OTel: OTelConfig{Service: "phishgraph"},
		Log:  LogConfig{Level: "debug", Format: "json"},
		Plugins: []plugin.Descriptor{
			{Name: "spf", Title: "SPF Check", Authors: []string{"Spencer McIntyre"}, Version: "1.0"},
		},
		Sessions: session.Tokens{
			"s3cr3t-operator": {User: "alice", Deny: map[string][]string{"credentials": {"password", "mfa_token"}}},
			"s3cr3t-admin":    {User: "root", Admin: true},
		},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandFromEnvironment(t *testing.T) {
	t.Setenv("PHISHGRAPH_DATA", "/srv/data")
	cfg, err := LoadFile("testdata/phishgraph.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/srv/data/fixture.yaml", cfg.Store.Fixture)
}

func TestLoadFromEnvVar(t *testing.T) {
	t.Setenv(EnvVar, "")
	_, err := Load()
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "phishgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 2.0.0\n"), 0o600))
	t.Setenv(EnvVar, path)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "2.0.0", cfg.Version)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestEmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestUnknownKeysRejected(t *testing.T) {
	_, err := Parse([]byte("server:\n  adress: :1\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"relative path", func(c *Config) { c.Server.Path = "graphql" }, "server.path must start with /"},
		{"negative timeout", func(c *Config) { c.Server.Timeout = -time.Second }, "server.timeout"},
		{"zero body", func(c *Config) { c.Server.MaxBodyBytes = 0 }, "server.max_body_bytes"},
		{"negative concurrency", func(c *Config) { c.Executor.MaxConcurrency = -1 }, "executor.max_concurrency"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"unnamed plugin", func(c *Config) { c.Plugins = []plugin.Descriptor{{Title: "x"}} }, "plugins[0].name"},
		{"duplicate plugin", func(c *Config) { c.Plugins = []plugin.Descriptor{{Name: "a"}, {Name: "a"}} }, `duplicate plugin "a"`},
		{"session without user", func(c *Config) { c.Sessions = session.Tokens{"abcdefgh": {}} }, "token abcd...: user is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidateReportsEveryError(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Log.Format = "xml"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.addr")
	assert.Contains(t, err.Error(), "log.format")
}
