// Package config handles configuration loading and defaults for colonel.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds the process configuration recognized by the core
// (spec.md §6).
type Config struct {
	// StoragePath is the root directory for per-document repositories and
	// the DocumentIndex file.
	StoragePath string `toml:"storage_path"`

	// ObjectStoreBackend names the object store backend handle. Only
	// "local" is implemented; the field exists so an alternate backend can
	// be selected without changing the Document API.
	ObjectStoreBackend string `toml:"object_store_backend"`

	// IndexName is the default search index name. It is loaded and
	// overridable from the environment, but nothing in this module passes
	// it to a search provider: EnsureIndex is never called.
	IndexName string `toml:"index_name"`

	// SearchBackend selects the search.Provider wired up at startup:
	// "memory" or "noop".
	SearchBackend string `toml:"search_backend"`

	// FileMode is decoded from file_mode but not applied anywhere: objects,
	// refs, and the DocumentIndex file are always written with mode 0644.
	FileMode uint32 `toml:"file_mode"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		StoragePath:        "./colonel-data",
		ObjectStoreBackend: "local",
		IndexName:          "colonel",
		SearchBackend:      "memory",
		FileMode:           0644,
	}
}

// ConfigPath returns the default configuration file path, honoring
// COLONEL_CONFIG_PATH if set.
func ConfigPath() string {
	if p := os.Getenv("COLONEL_CONFIG_PATH"); p != "" {
		return p
	}
	return "colonel.toml"
}

// Load reads configuration from path, falling back to DefaultConfig if the
// file is absent, then applies environment overrides. An empty path uses
// ConfigPath().
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = ConfigPath()
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg.ApplyEnvOverrides()
	return cfg, nil
}

// ApplyEnvOverrides layers COLONEL_*-prefixed environment variables on top
// of whatever was loaded from file or defaults.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("COLONEL_STORAGE_PATH"); v != "" {
		c.StoragePath = v
	}
	if v := os.Getenv("COLONEL_OBJECT_STORE_BACKEND"); v != "" {
		c.ObjectStoreBackend = v
	}
	if v := os.Getenv("COLONEL_INDEX_NAME"); v != "" {
		c.IndexName = v
	}
	if v := os.Getenv("COLONEL_SEARCH_BACKEND"); v != "" {
		c.SearchBackend = v
	}
}

// EnsureDirectories creates the storage root if absent.
func (c *Config) EnsureDirectories() error {
	return os.MkdirAll(c.StoragePath, 0755)
}

// IndexPath is the DocumentIndex file location under StoragePath.
func (c *Config) IndexPath() string {
	return filepath.Join(c.StoragePath, "index")
}
