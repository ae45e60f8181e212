package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	restina "github.com/ivupcn/restina-framework"
)

type pets struct{}

func (pets) Endpoints() []restina.Endpoint {
	show := func(restina.Context, restina.Args) (any, error) { return nil, nil }
	return []restina.Endpoint{
		restina.Handle("Show", show, `
			Show a pet.
			@route GET /pets/{id}
			@param int $id {@v required}
		`),
		restina.Handle("List", show, "@route GET /pets"),
	}
}

func writeConfig(t *testing.T, cache string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "app.yaml")
	cfg := "app:\n  name: pets\n  cache: " + cache + "\n" +
		"cache:\n  dir: " + filepath.Join(dir, "cache") + "\n" +
		"log:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "file")

	_, err := run(t, "routes", "--config", path)
	require.ErrorIs(t, err, errNotCached)

	_, err = restina.New(restina.WithConfigFile(path), restina.WithControllers(pets{}))
	require.NoError(t, err)

	out, err := run(t, "routes", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "/pets/{id}")
	assert.Contains(t, out, "pets::Show")

	out, err = run(t, "routes", "--json", "--config", path)
	require.NoError(t, err)
	var routes []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &routes))
	assert.Len(t, routes, 2)

	out, err = run(t, "openapi", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"/pets/{id}"`)
	assert.Contains(t, out, `"title": "pets"`)

	out, err = run(t, "openapi", "-f", "yaml", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "openapi: 3.0.0")

	_, err = run(t, "openapi", "-f", "xml", "--config", path)
	require.Error(t, err)

	out, err = run(t, "cache", "clear", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "route cache cleared (file)")

	_, err = run(t, "routes", "--config", path)
	require.ErrorIs(t, err, errNotCached)
}

func TestCacheDisabled(t *testing.T) {
	t.Parallel()

	_, err := run(t, "cache", "clear", "--config", writeConfig(t, `""`))
	require.ErrorIs(t, err, errCacheDisabled)
}

func TestConfigCheck(t *testing.T) {
	t.Parallel()

	out, err := run(t, "config", "check", "--config", writeConfig(t, "memory"))
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
	assert.Contains(t, out, "cache:  memory")

	_, err = run(t, "config", "check", "--config", writeConfig(t, "floppy"))
	require.Error(t, err)

	_, err = run(t, "config", "check", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	t.Parallel()

	out, err := run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", out)
}
