package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/FocuswithJustin/lectio/core/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.Batch.Workers < 1 {
		t.Errorf("Batch.Workers = %d", cfg.Batch.Workers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantField string
	}{
		{"valid default config", func(c *Config) {}, ""},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"negative timeout", func(c *Config) { c.Server.ShutdownTimeout = -time.Second }, "server.shutdown_timeout"},
		{"negative rate limit", func(c *Config) { c.Server.RateLimit = -1 }, "server.rate_limit"},
		{"rate limit without burst", func(c *Config) { c.Server.RateLimit = 60; c.Server.RateBurst = 0 }, "server.rate_burst"},
		{"zero citation length", func(c *Config) { c.Server.MaxCitationLength = 0 }, "server.max_citation_length"},
		{"negative cache size", func(c *Config) { c.Server.CacheSize = -1 }, "server.cache_size"},
		{"watch without path", func(c *Config) { c.Server.Watch = true }, "server.watch"},
		{"watch with path", func(c *Config) { c.Server.Watch = true; c.Catalog.Path = "c.xml" }, ""},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }, "batch.workers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			var ve *errors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want *ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lectio.yaml")
	content := `catalog:
  path: data/synodal.sqlite
  lazy: true
log:
  level: debug
server:
  port: 9090
  allowed_origins: ["https://example.org"]
  watch: true
batch:
  workers: 3
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	want := DefaultConfig()
	want.Catalog = CatalogConfig{Path: filepath.Join(dir, "data/synodal.sqlite"), Lazy: true}
	want.Log.Level = "debug"
	want.Server.Port = 9090
	want.Server.AllowedOrigins = []string{"https://example.org"}
	want.Server.Watch = true
	want.Batch.Workers = 3
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFromFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFromFile(filepath.Join(dir, "missing.yaml"))
	var ioErr *errors.IOError
	if !errors.As(err, &ioErr) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("server:\n  prot: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFromFile(bad)
	var pe *errors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("unknown key error = %v, want *ParseError", err)
	}
	if pe.Path != bad {
		t.Errorf("Path = %q, want %q", pe.Path, bad)
	}
}

func TestDecodeEmpty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("Decode(empty) mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() without file error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}

	if err := os.WriteFile(DefaultFile, []byte("server:\n  port: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(""); err == nil {
		t.Error("Load() with invalid port error = nil")
	}

	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("Load(missing explicit path) error = nil")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "lectio.yaml")
	cfg := DefaultConfig()
	cfg.Catalog.Path = "/srv/catalog.xml.xz"
	cfg.Server.Watch = true
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}
	got, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
