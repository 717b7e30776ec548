// Package config loads depviz settings from a TOML file, a .env file and
// DEPVIZ_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment (including variables set by .env), command-line flags. Flags
// are applied by the CLI on top of the loaded [Config].
//
// Example config.toml:
//
//	repo = "https://dl-cdn.alpinelinux.org/alpine/v3.20/main/x86_64"
//	max_depth = 3
//	timeout = "15s"
//
//	[server]
//	addr = "0.0.0.0:8080"
package config

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	deperrors "github.com/Dima09182/depviz/pkg/errors"
	"github.com/Dima09182/depviz/pkg/fetch"
	"github.com/Dima09182/depviz/pkg/graph"
	"github.com/Dima09182/depviz/pkg/server"
)

const (
	appName = "depviz"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "DEPVIZ_"
)

// Config holds every setting that can come from a file or the environment.
type Config struct {
	Repo        string        `toml:"repo"`
	Mode        string        `toml:"mode"`
	MaxDepth    int           `toml:"max_depth"`
	Concurrency int           `toml:"concurrency"`
	Timeout     time.Duration `toml:"timeout"` // Per HTTP request
	Retries     int           `toml:"retries"` // Attempts per file
	Budget      time.Duration `toml:"budget"`  // Whole traversal; 0 means none
	MaxNodes    int           `toml:"max_nodes"`
	Format      string        `toml:"format"`
	Server      ServerConfig  `toml:"server"`
}

// ServerConfig holds the settings of `depviz serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Mode:        "auto",
		MaxDepth:    graph.DefaultMaxDepth,
		Concurrency: graph.DefaultConcurrency,
		Timeout:     fetch.DefaultTimeout,
		Retries:     fetch.DefaultAttempts,
		Format:      "text",
		Server:      ServerConfig{Addr: server.DefaultAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/depviz/config.toml, falling back to
// ~/.config/depviz/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// LoadDotEnv loads .env files into the process environment. Variables that
// are already set keep their values. Missing files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "load %s", f)
		}
	}
	return nil
}

// Load returns the defaults overlaid with the config file at path and the
// environment. An empty path selects [DefaultPath], which may be absent; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) decodeFile(path string, mustExist bool) error {
	if _, err := os.Stat(path); err != nil {
		if !mustExist && os.IsNotExist(err) {
			return nil
		}
		return deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "config file %s", path)
	}
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "parse config file %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return deperrors.New(deperrors.ErrCodeInvalidInput, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// applyEnv overlays DEPVIZ_* variables read through lookup.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, key)
		}
		*dst = n
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return deperrors.Wrap(deperrors.ErrCodeInvalidInput, err, "%s%s", EnvPrefix, key)
		}
		*dst = d
		return nil
	}

	str("REPO", &c.Repo)
	str("MODE", &c.Mode)
	str("FORMAT", &c.Format)
	str("ADDR", &c.Server.Addr)

	for key, dst := range map[string]*int{
		"MAX_DEPTH":   &c.MaxDepth,
		"CONCURRENCY": &c.Concurrency,
		"RETRIES":     &c.Retries,
		"MAX_NODES":   &c.MaxNodes,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}
	for key, dst := range map[string]*time.Duration{
		"TIMEOUT": &c.Timeout,
		"BUDGET":  &c.Budget,
	} {
		if err := dur(key, dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks the numeric settings. Repository, mode and format are
// validated when a run starts, after flags are applied.
func (c *Config) Validate() error {
	if err := deperrors.ValidateMaxDepth(c.MaxDepth); err != nil {
		return err
	}
	switch {
	case c.Concurrency < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "concurrency cannot be negative (got %d)", c.Concurrency)
	case c.Retries < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "retries cannot be negative (got %d)", c.Retries)
	case c.MaxNodes < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "max nodes cannot be negative (got %d)", c.MaxNodes)
	case c.Timeout < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "timeout cannot be negative (got %s)", c.Timeout)
	case c.Budget < 0:
		return deperrors.New(deperrors.ErrCodeInvalidInput, "budget cannot be negative (got %s)", c.Budget)
	}
	return nil
}

// HTTPOptions returns the fetch settings for remote repositories.
func (c *Config) HTTPOptions(userAgent string) fetch.HTTPOptions {
	return fetch.HTTPOptions{
		Timeout:  c.Timeout,
		Attempts: c.Retries,
		Headers:  map[string]string{"User-Agent": userAgent},
	}
}
