// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only; provider definitions are templates, never
// code.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"reelfetch/internal/httputil"
	"reelfetch/internal/pipeline"
	"reelfetch/internal/provider"
)

// Duration is a time.Duration written as a string ("10s") in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config holds all application configuration.
type Config struct {
	Listen        string            `toml:"listen"`
	LogLevel      string            `toml:"log_level"`
	LogFormat     string            `toml:"log_format"`
	Debug         bool              `toml:"debug"`
	Workers       int               `toml:"workers"`
	Deadline      Duration          `toml:"deadline"`
	EmbedTimeout  Duration          `toml:"embed_timeout"`
	SourceTimeout Duration          `toml:"source_timeout"`
	MaxRedirects  int               `toml:"max_redirects"`
	Fingerprint   string            `toml:"fingerprint"`
	Providers     []provider.Config `toml:"providers"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Listen:        ":8080",
		LogLevel:      "info",
		LogFormat:     "text",
		Workers:       pipeline.DefaultWorkers,
		Deadline:      Duration{pipeline.DefaultDeadline},
		EmbedTimeout:  Duration{pipeline.DefaultEmbedTimeout},
		SourceTimeout: Duration{5 * time.Second},
		MaxRedirects:  httputil.DefaultMaxRedirects,
		Providers:     provider.Defaults(),
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "reelfetch"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reelfetch"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file at the default location and merges it with
// defaults. If the file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads the config file at path and merges it with defaults. A
// file that defines providers replaces the default registry wholesale.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	// The decoder reuses existing slice elements, so start from none.
	cfg.Providers = nil
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if len(cfg.Providers) == 0 {
		cfg.Providers = provider.Defaults()
	}
	cfg.Workers = lo.Clamp(cfg.Workers, 1, pipeline.MaxWorkers)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address cannot be empty")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("unsupported log_level %q", c.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.LogFormat)] {
		return fmt.Errorf("unsupported log_format %q (valid: text, json)", c.LogFormat)
	}

	if c.Workers < 1 || c.Workers > pipeline.MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", pipeline.MaxWorkers, c.Workers)
	}
	durations := []struct {
		name string
		d    Duration
	}{
		{"deadline", c.Deadline},
		{"embed_timeout", c.EmbedTimeout},
		{"source_timeout", c.SourceTimeout},
	}
	for _, d := range durations {
		if d.d.Duration <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.d)
		}
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max_redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}

	validFingerprints := map[string]bool{"": true, "chrome": true}
	if !validFingerprints[strings.ToLower(c.Fingerprint)] {
		return fmt.Errorf("unsupported fingerprint %q (valid: chrome)", c.Fingerprint)
	}

	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// Registry builds the provider registry the configuration describes.
func (c *Config) Registry() (*provider.Registry, error) {
	return provider.NewRegistry(c.Providers)
}

// ClientOptions returns the transport settings. A max_redirects of zero
// disables redirects.
func (c *Config) ClientOptions() httputil.Options {
	maxRedirects := c.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = -1
	}
	return httputil.Options{
		MaxRedirects: maxRedirects,
		Fingerprint:  strings.ToLower(c.Fingerprint),
	}
}

// PipelineOptions returns the pipeline bounds.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Workers:      c.Workers,
		Deadline:     c.Deadline.Duration,
		EmbedTimeout: c.EmbedTimeout.Duration,
	}
}
