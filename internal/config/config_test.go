package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// isolate points the default config path at an empty directory.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, 5, cfg.MaxDepth)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoadFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
repo = "https://mirror.example.com/alpine/main/x86_64"
max_depth = 2
concurrency = 4
timeout = "15s"
budget = "1m"

[server]
addr = "0.0.0.0:9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://mirror.example.com/alpine/main/x86_64", cfg.Repo)
	assert.Equal(t, 2, cfg.MaxDepth)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, time.Minute, cfg.Budget)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Addr)
	assert.Equal(t, "text", cfg.Format, "unset keys keep their defaults")
}

func TestLoadDefaultPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "depviz"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "depviz", "config.toml"), []byte("mode = \"dir\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "dir", cfg.Mode)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "repo = \"/srv/mirror\"\nmax_depth = 2\n")
	t.Setenv("DEPVIZ_REPO", "https://env.example.com/repo")
	t.Setenv("DEPVIZ_MAX_DEPTH", "0")
	t.Setenv("DEPVIZ_TIMEOUT", "3s")
	t.Setenv("DEPVIZ_ADDR", ":7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com/repo", cfg.Repo)
	assert.Equal(t, 0, cfg.MaxDepth)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
		code deperrors.Code
	}{
		{"unknown key", "colour = \"red\"\n", nil, deperrors.ErrCodeInvalidInput},
		{"bad toml", "repo = \n", nil, deperrors.ErrCodeInvalidInput},
		{"negative depth", "max_depth = -1\n", nil, deperrors.ErrCodeInvalidDepth},
		{"negative concurrency", "concurrency = -1\n", nil, deperrors.ErrCodeInvalidInput},
		{"bad env int", "", map[string]string{"DEPVIZ_MAX_NODES": "many"}, deperrors.ErrCodeInvalidInput},
		{"bad env duration", "", map[string]string{"DEPVIZ_BUDGET": "soon"}, deperrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.True(t, deperrors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	isolate(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("DEPVIZ_FORMAT=json\nDEPVIZ_MODE=test\n"), 0o644))

	// Already-set variables win over .env.
	t.Setenv("DEPVIZ_MODE", "dir")
	// Registers cleanup so the variable set by .env is removed afterwards.
	t.Setenv("DEPVIZ_FORMAT", "")
	require.NoError(t, os.Unsetenv("DEPVIZ_FORMAT"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "dir", cfg.Mode)
}

func TestHTTPOptions(t *testing.T) {
	cfg := Default()
	cfg.Timeout = 2 * time.Second
	cfg.Retries = 1

	opts := cfg.HTTPOptions("depviz/test")
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, 1, opts.Attempts)
	assert.Equal(t, "depviz/test", opts.Headers["User-Agent"])
}
