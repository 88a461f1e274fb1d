// Package config loads lectio's YAML configuration.
package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/lectio/core/errors"
	"github.com/FocuswithJustin/lectio/internal/logging"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "lectio.yaml"

// Config represents the complete lectio configuration.
type Config struct {
	Catalog CatalogConfig `yaml:"catalog"`
	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Batch   BatchConfig   `yaml:"batch"`
}

// CatalogConfig selects the book catalog.
type CatalogConfig struct {
	// Path is an .xml, .xml.xz or SQLite catalog file. Empty means the
	// bundled Synodal catalog.
	Path string `yaml:"path"`
	// Lazy defers loading chapter sizes from SQLite until a book needs them.
	Lazy bool `yaml:"lazy"`
}

// LogConfig configures the global logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig configures `lectio serve`.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// Watch reloads the catalog when its file changes.
	Watch           bool          `yaml:"watch"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RateLimit is requests per minute per client; 0 disables limiting.
	RateLimit int `yaml:"rate_limit"`
	RateBurst int `yaml:"rate_burst"`
	// MaxCitationLength truncates citation input, in bytes.
	MaxCitationLength int `yaml:"max_citation_length"`
	// CacheSize bounds the parse result cache; 0 disables it.
	CacheSize int `yaml:"cache_size"`
}

// BatchConfig bounds concurrent parsing.
type BatchConfig struct {
	Workers int `yaml:"workers"`
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port:              8080,
			AllowedOrigins:    []string{"*"},
			ShutdownTimeout:   10 * time.Second,
			RateBurst:         10,
			MaxCitationLength: 4096,
			CacheSize:         1024,
		},
		Batch: BatchConfig{
			Workers: runtime.NumCPU(),
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return &errors.ValidationError{Field: "log.level", Value: c.Log.Level, Message: err.Error()}
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		return &errors.ValidationError{Field: "log.format", Value: c.Log.Format, Message: err.Error()}
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &errors.ValidationError{
			Field:   "server.port",
			Value:   fmt.Sprint(c.Server.Port),
			Message: "must be between 1 and 65535",
		}
	}
	if c.Server.ShutdownTimeout < 0 {
		return errors.NewValidation("server.shutdown_timeout", "must not be negative")
	}
	if c.Server.RateLimit < 0 {
		return errors.NewValidation("server.rate_limit", "must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		return errors.NewValidation("server.rate_burst", "must be at least 1 when rate_limit is set")
	}
	if c.Server.MaxCitationLength < 1 {
		return errors.NewValidation("server.max_citation_length", "must be at least 1")
	}
	if c.Server.CacheSize < 0 {
		return errors.NewValidation("server.cache_size", "must not be negative")
	}
	if c.Server.Watch && c.Catalog.Path == "" {
		return errors.NewValidation("server.watch", "requires catalog.path")
	}
	if c.Batch.Workers < 1 {
		return &errors.ValidationError{
			Field:   "batch.workers",
			Value:   fmt.Sprint(c.Batch.Workers),
			Message: "must be at least 1",
		}
	}
	return nil
}

// Decode reads YAML over the defaults. Unknown keys are rejected.
func Decode(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, &errors.ParseError{Format: "config YAML", Message: err.Error(), Err: err}
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file. A relative
// catalog.path is resolved against the file's directory.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIO("read", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		var pe *errors.ParseError
		if errors.As(err, &pe) {
			pe.Path = path
		}
		return nil, err
	}
	if cfg.Catalog.Path != "" && !filepath.IsAbs(cfg.Catalog.Path) {
		cfg.Catalog.Path = filepath.Join(filepath.Dir(path), cfg.Catalog.Path)
	}
	return cfg, nil
}

// Load loads path, or DefaultFile from the working directory when path is
// empty. A missing DefaultFile yields the defaults. The result is validated.
func Load(path string) (*Config, error) {
	var cfg *Config
	switch {
	case path != "":
		c, err := LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	default:
		c, err := LoadFromFile(DefaultFile)
		switch {
		case err == nil:
			cfg = c
		case errors.Is(err, os.ErrNotExist):
			cfg = DefaultConfig()
		default:
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.NewIO("create directory for", path, err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config")
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}
