// Package config loads stacktile's user configuration.
//
// Configuration lives in a TOML file (by default
// $XDG_CONFIG_HOME/stacktile/config.toml). Missing files and missing keys
// fall back to [Default]; a few STACKTILE_* environment variables override
// the store settings. Command-line flags override both, which is the CLI's
// concern.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	serrors "github.com/matzehuels/stacktile/pkg/errors"
	"github.com/matzehuels/stacktile/pkg/store"
)

// Environment variables consulted by [Load].
const (
	EnvStore     = "STACKTILE_STORE"
	EnvRedisAddr = "STACKTILE_REDIS_ADDR"
	EnvMongoURI  = "STACKTILE_MONGO_URI"
)

// Config is the user configuration.
type Config struct {
	Width   int `toml:"width" json:"width"`
	Height  int `toml:"height" json:"height"`
	Padding int `toml:"padding" json:"padding"`
	Inter   int `toml:"inter" json:"inter"`

	Store store.Config `toml:"store" json:"store"`

	// Keys maps TUI actions (e.g. "open", "left") to key names.
	Keys map[string]string `toml:"keys" json:"keys"`
}

// DefaultKeys are the TUI bindings used when the file sets none.
var DefaultKeys = map[string]string{
	"open":         "o",
	"slot":         "O",
	"close":        "x",
	"left":         "h",
	"down":         "j",
	"up":           "k",
	"right":        "l",
	"parent":       "p",
	"child":        "c",
	"cursor-left":  "H",
	"cursor-down":  "J",
	"cursor-up":    "K",
	"cursor-right": "L",
	"cursor-clear": "esc",
	"move":         "m",
	"grow":         "+",
	"shrink":       "-",
	"equalize":     "=",
	"quit":         "q",
}

// Default returns the built-in configuration.
func Default() Config {
	keys := make(map[string]string, len(DefaultKeys))
	for k, v := range DefaultKeys {
		keys[k] = v
	}
	return Config{
		Width:   1200,
		Height:  800,
		Padding: 0,
		Inter:   4,
		Store:   store.Config{Backend: store.BackendFile},
		Keys:    keys,
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/stacktile/config.toml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "stacktile", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", "stacktile", "config.toml"), nil
}

// Load reads the configuration at path. An empty path means [DefaultPath];
// a missing file yields the defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if cfg, err = Parse(data); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, cfg.Validate()
}

// Parse decodes TOML on top of the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, serrors.Wrap(serrors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, serrors.New(serrors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	for k, v := range DefaultKeys {
		if _, ok := cfg.Keys[k]; !ok {
			cfg.Keys[k] = v
		}
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvStore); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		cfg.Store.RedisAddr = v
	}
	if v := os.Getenv(EnvMongoURI); v != "" {
		cfg.Store.MongoURI = v
	}
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return serrors.New(serrors.ErrCodeInvalidConfig, "screen size must be positive, got %dx%d", c.Width, c.Height)
	}
	if c.Padding < 0 || c.Inter < 0 {
		return serrors.New(serrors.ErrCodeInvalidConfig, "padding and inter must not be negative")
	}
	switch c.Store.Backend {
	case "", store.BackendFile, store.BackendSQLite, store.BackendRedis, store.BackendMongo:
	default:
		return serrors.New(serrors.ErrCodeInvalidConfig, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}
