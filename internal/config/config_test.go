package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Listen != ":8080" {
		t.Errorf("default listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Workers != 6 {
		t.Errorf("default workers = %d, want 6", cfg.Workers)
	}
	if cfg.Deadline.Duration != 30*time.Second {
		t.Errorf("default deadline = %v, want 30s", cfg.Deadline)
	}
	if cfg.EmbedTimeout.Duration != 10*time.Second || cfg.SourceTimeout.Duration != 5*time.Second {
		t.Errorf("default timeouts = %v/%v, want 10s/5s", cfg.EmbedTimeout, cfg.SourceTimeout)
	}
	if len(cfg.Providers) != 2 || cfg.Providers[0].Name != "vidsrc.me" {
		t.Errorf("default providers = %+v", cfg.Providers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty listen", func(c *Config) { c.Listen = "" }, true},
		{"invalid log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"invalid log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero workers", func(c *Config) { c.Workers = 0 }, true},
		{"too many workers", func(c *Config) { c.Workers = 17 }, true},
		{"zero deadline", func(c *Config) { c.Deadline = Duration{} }, true},
		{"negative source timeout", func(c *Config) { c.SourceTimeout = Duration{-time.Second} }, true},
		{"too many redirects", func(c *Config) { c.MaxRedirects = 11 }, true},
		{"unknown fingerprint", func(c *Config) { c.Fingerprint = "firefox" }, true},
		{"no providers", func(c *Config) { c.Providers = nil }, true},
		{"duplicate providers", func(c *Config) { c.Providers[1].Name = c.Providers[0].Name }, true},
		{"bad pattern", func(c *Config) { c.Providers[0].Patterns.InlineStream = []string{"("} }, true},
		{"valid chrome", func(c *Config) { c.Fingerprint = "chrome" }, false},
		{"valid json", func(c *Config) { c.LogFormat = "json" }, false},
		{"valid debug level", func(c *Config) { c.LogLevel = "debug" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	content := `
listen = "127.0.0.1:9000"
log_format = "json"
workers = 4
deadline = "45s"
source_timeout = "2s"
fingerprint = "chrome"
`
	dir := filepath.Join(tmpDir, "reelfetch")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeConfig(t, dir, content)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("log_format = %q", cfg.LogFormat)
	}
	if cfg.Workers != 4 {
		t.Errorf("workers = %d, want 4", cfg.Workers)
	}
	if cfg.Deadline.Duration != 45*time.Second {
		t.Errorf("deadline = %v, want 45s", cfg.Deadline)
	}
	if cfg.SourceTimeout.Duration != 2*time.Second {
		t.Errorf("source_timeout = %v, want 2s", cfg.SourceTimeout)
	}
	if cfg.EmbedTimeout.Duration != 10*time.Second {
		t.Errorf("embed_timeout should keep its default, got %v", cfg.EmbedTimeout)
	}
	if len(cfg.Providers) != 2 {
		t.Errorf("providers = %d, want defaults", len(cfg.Providers))
	}
	if opts := cfg.ClientOptions(); opts.Fingerprint != "chrome" {
		t.Errorf("client fingerprint = %q", opts.Fingerprint)
	}
}

func TestLoadProvidersReplaceDefaults(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
[[providers]]
name = "mirror"
base_url = "https://mirror.example"
priority = 5
source_api_path = "/ajax/embed/source/{sourceId}"

[providers.embed_path]
movie = "/e/movie/{id}"
tv = "/e/tv/{id}/{season}-{episode}"

[providers.headers]
Origin = "https://mirror.example"

[providers.patterns]
script_markers = ["jwplayer"]
dom_attributes = ["data-hash"]
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if len(cfg.Providers) != 1 {
		t.Fatalf("providers = %d, want 1", len(cfg.Providers))
	}

	p := cfg.Providers[0]
	if p.Name != "mirror" || p.Priority != 5 || p.EmbedPath.TV != "/e/tv/{id}/{season}-{episode}" {
		t.Errorf("provider = %+v", p)
	}
	if p.Headers["Origin"] != "https://mirror.example" {
		t.Errorf("headers = %v", p.Headers)
	}
	if len(p.Headers) != 1 {
		t.Errorf("default provider headers leaked in: %v", p.Headers)
	}
	if p.StreamAPIPath.Movie != "" {
		t.Errorf("default stream API leaked in: %+v", p.StreamAPIPath)
	}
	if got := strings.Join(p.Patterns.DomAttributes, ","); got != "data-hash" {
		t.Errorf("dom_attributes = %s", got)
	}

	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("Registry() error: %v", err)
	}
	if reg.Len() != 1 {
		t.Errorf("registry size = %d", reg.Len())
	}
}

func TestLoadClampsWorkers(t *testing.T) {
	tests := []struct {
		content string
		want    int
	}{
		{"workers = 64", 16},
		{"workers = -2", 1},
		{"workers = 9", 9},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, t.TempDir(), tt.content))
			if err != nil {
				t.Fatalf("LoadFile() error: %v", err)
			}
			if cfg.Workers != tt.want {
				t.Errorf("workers = %d, want %d", cfg.Workers, tt.want)
			}
		})
	}
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", `deadline = "soon"`},
		{"bad toml", `listen = `},
		{"bad provider", "[[providers]]\nname = \"x\"\nbase_url = \"ftp://x\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadFile(writeConfig(t, t.TempDir(), tt.content)); err == nil {
				t.Error("LoadFile() should fail")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() should not error on missing file: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Errorf("missing file should return defaults, got listen = %q", cfg.Listen)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadFile() of an explicit missing path should fail")
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath() error: %v", err)
	}
	if path != "/tmp/xdg/reelfetch/config.toml" {
		t.Errorf("ConfigPath() = %q", path)
	}
}

func TestClientOptionsRedirects(t *testing.T) {
	cfg := Default()
	if got := cfg.ClientOptions().MaxRedirects; got != 3 {
		t.Errorf("MaxRedirects = %d, want 3", got)
	}
	cfg.MaxRedirects = 0
	if got := cfg.ClientOptions().MaxRedirects; got >= 0 {
		t.Errorf("MaxRedirects = %d, want redirects disabled", got)
	}
}
