// Package engine ties together the storage primitives (column, table, view)
// into a single, single-threaded processing instance: one shared
// stringpool.Pool, a registry of named tables and views, and the ambient
// concerns -- configuration, logging, error context -- that the rest of the
// module leaves to its caller.
package engine

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config is the instance-level configuration, normally loaded from a TOML
// file alongside the trace being processed.
type Config struct {
	// Name identifies this instance in logs; defaults to "tracecolumn" if
	// empty.
	Name string `toml:"name"`

	// ViewCacheSize bounds the number of distinct (constraints, orders)
	// query results an individual View keeps in its LRU cache. Zero means
	// use the view package's default.
	ViewCacheSize int `toml:"view_cache_size"`

	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	// Empty means "info".
	LogLevel string `toml:"log_level"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{Name: "tracecolumn", ViewCacheSize: 64, LogLevel: "info"}
}

// LoadConfig reads and decodes a TOML configuration file at path, filling in
// defaults for any field the file leaves unset.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "engine: decoding config %q", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, errors.Errorf("engine: config %q has unknown keys: %v", path, undecoded)
	}
	if cfg.Name == "" {
		cfg.Name = "tracecolumn"
	}
	if cfg.ViewCacheSize <= 0 {
		cfg.ViewCacheSize = 64
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
