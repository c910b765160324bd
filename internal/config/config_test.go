package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoragePath != "./colonel-data" {
		t.Errorf("got %q", cfg.StoragePath)
	}
}

func TestLoadDecodesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "colonel.toml")
	body := "storage_path = \"/var/colonel\"\nindex_name = \"docs\"\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StoragePath != "/var/colonel" {
		t.Errorf("got %q", cfg.StoragePath)
	}
	if cfg.IndexName != "docs" {
		t.Errorf("got %q", cfg.IndexName)
	}
	if cfg.SearchBackend != "memory" {
		t.Errorf("expected untouched field to keep its default, got %q", cfg.SearchBackend)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COLONEL_STORAGE_PATH", "/tmp/override")
	cfg := DefaultConfig()
	cfg.ApplyEnvOverrides()
	if cfg.StoragePath != "/tmp/override" {
		t.Errorf("got %q", cfg.StoragePath)
	}
}
