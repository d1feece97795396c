package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err = run(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := runCmd(t, "help", "exec")
	require.NoError(t, err)
	assert.Contains(t, out, "exec FLAGS")

	out, _, err = runCmd(t, "help")
	require.NoError(t, err)
	assert.Contains(t, out, "COMMANDS:")

	_, _, err = runCmd(t, "help", "compile")
	assert.EqualError(t, err, `unknown help topic "compile"`)
}

func TestUnknownCommand(t *testing.T) {
	_, stderr, err := runCmd(t, "launch")
	assert.EqualError(t, err, `unknown command "launch"`)
	assert.Contains(t, stderr, "USAGE:")

	_, _, err = runCmd(t)
	assert.EqualError(t, err, "missing command")
}

func TestSDL(t *testing.T) {
	out, _, err := runCmd(t, "sdl")
	require.NoError(t, err)
	assert.Contains(t, out, "type Query {")
	assert.Contains(t, out, "scalar DateTime")
	assert.NotContains(t, out, "__Schema")

	path := filepath.Join(t.TempDir(), "schema.graphql")
	_, _, err = runCmd(t, "sdl", "--out", path)
	require.NoError(t, err)
	written, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, out, string(written))
}

func TestExecWithSession(t *testing.T) {
	out, _, err := runCmd(t, "exec",
		"--config", "testdata/phishgraph.yaml",
		"--query-file", "testdata/credentials.graphql",
		"--token", "operator-token",
		"--var", "id=1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"db":{"campaign":{
		"name":"Quarterly",
		"credentials":{"edges":[{"node":{"username":"pgibbons","password":null}}]}
	}}}}`, out)
}

func TestExecUnauthenticated(t *testing.T) {
	out, _, err := runCmd(t, "exec",
		"--config", "testdata/phishgraph.yaml",
		"--query-file", "testdata/credentials.graphql",
		"--var", "id=1")
	require.NoError(t, err)
	assert.Contains(t, out, `"password":"hunter2"`)
}

func TestExecErrors(t *testing.T) {
	_, stderr, err := runCmd(t, "exec", "--config", "testdata/phishgraph.yaml")
	assert.EqualError(t, err, "--query-file is required")
	assert.Contains(t, stderr, "exec FLAGS")

	_, _, err = runCmd(t, "exec",
		"--config", "testdata/phishgraph.yaml",
		"--query-file", "testdata/credentials.graphql",
		"--token", "stolen")
	assert.EqualError(t, err, "unknown token")

	_, _, err = runCmd(t, "exec", "--var", "noequals", "--query-file", "q.graphql")
	assert.Error(t, err)
}

func TestExecValidationFailure(t *testing.T) {
	query := filepath.Join(t.TempDir(), "bad.graphql")
	require.NoError(t, os.WriteFile(query, []byte(`{ db { spaceships { id } } }`), 0o644))
	out, _, err := runCmd(t, "exec", "--config", "testdata/phishgraph.yaml", "--query-file", query)
	assert.EqualError(t, err, "query failed")
	assert.Contains(t, out, "GRAPHQL_VALIDATION_FAILED")
}

func TestVarsFlag(t *testing.T) {
	v := varsFlag{}
	require.NoError(t, v.Set("id=5"))
	require.NoError(t, v.Set("name=Quarterly"))
	require.NoError(t, v.Set(`ip="8.8.8.8"`))
	assert.Equal(t, varsFlag{"id": float64(5), "name": "Quarterly", "ip": "8.8.8.8"}, v)
	assert.Error(t, v.Set("=1"))
}

func TestLoadConfigFallsBackToDefaults(t *testing.T) {
	t.Setenv("PHISHGRAPH_CONFIG", "")
	cfg, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)

	t.Setenv("PHISHGRAPH_CONFIG", "testdata/phishgraph.yaml")
	cfg, err = loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "1.16.0", cfg.Version)
}
