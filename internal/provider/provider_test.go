package provider

import (
	"strings"
	"testing"

	"reelfetch/internal/media"
)

func testConfig(name string, priority int) Config {
	return Config{
		Name:     name,
		BaseURL:  "https://" + name + "/",
		Priority: priority,
		EmbedPath: Paths{
			Movie: "/embed/movie/{id}",
			TV:    "/embed/tv/{id}/{season}/{episode}",
		},
		SourceAPIPath: "/ajax/sources/{sourceId}",
	}
}

func TestNewRegistryOrdersByPriority(t *testing.T) {
	reg, err := NewRegistry([]Config{
		testConfig("c.example", 3),
		testConfig("a.example", 1),
		testConfig("b1.example", 2),
		testConfig("b2.example", 2),
	})
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}

	var names []string
	for _, p := range reg.Providers() {
		names = append(names, p.Name())
	}
	got := strings.Join(names, ",")
	want := "a.example,b1.example,b2.example,c.example"
	if got != want {
		t.Errorf("order = %s, want %s", got, want)
	}
	if reg.Len() != 4 {
		t.Errorf("Len() = %d, want 4", reg.Len())
	}

	// Providers hands out a copy.
	ps := reg.Providers()
	ps[0] = nil
	if reg.Providers()[0] == nil {
		t.Error("mutating Providers() result changed the registry")
	}
}

func TestNewRegistryRejects(t *testing.T) {
	tests := []struct {
		name string
		cfgs []Config
	}{
		{"empty", nil},
		{"duplicate names", []Config{testConfig("a.example", 1), testConfig("a.example", 2)}},
		{"invalid provider", []Config{testConfig("a.example", 1), {Name: "broken"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRegistry(tt.cfgs); err == nil {
				t.Error("NewRegistry() should fail")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"no name", func(c *Config) { c.Name = "" }, "name"},
		{"bad scheme", func(c *Config) { c.BaseURL = "ftp://a.example" }, "base_url"},
		{"no host", func(c *Config) { c.BaseURL = "https://" }, "base_url"},
		{"movie path without id", func(c *Config) { c.EmbedPath.Movie = "/embed/movie" }, "embed_path.movie"},
		{"tv path without episode", func(c *Config) { c.EmbedPath.TV = "/embed/tv/{id}/{season}" }, "{episode}"},
		{"source path without id", func(c *Config) { c.SourceAPIPath = "/ajax/sources" }, "source_api_path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig("a.example", 1)
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsBadPatterns(t *testing.T) {
	cfg := testConfig("a.example", 1)
	cfg.Patterns.ScriptConfig = []string{"("}
	if _, err := New(cfg); err == nil {
		t.Error("New() should reject an invalid pattern")
	}
}

func TestURLBuilding(t *testing.T) {
	cfg := testConfig("a.example", 1)
	cfg.StreamAPIPath = Paths{Movie: "/api/source/{id}"}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	movie, err := media.MovieRequest("603")
	if err != nil {
		t.Fatalf("MovieRequest() error: %v", err)
	}
	show, err := media.EpisodeRequest("1399", 1, 2)
	if err != nil {
		t.Fatalf("EpisodeRequest() error: %v", err)
	}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"movie embed", p.EmbedURL(movie), "https://a.example/embed/movie/603"},
		{"tv embed", p.EmbedURL(show), "https://a.example/embed/tv/1399/1/2"},
		{"source", p.SourceURL(movie, "12345"), "https://a.example/ajax/sources/12345"},
		{"stream api", p.StreamAPIURL(movie).OrEmpty(), "https://a.example/api/source/603"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}

	if p.StreamAPIURL(show).IsPresent() {
		t.Error("StreamAPIURL should be absent when no tv template is configured")
	}
}

func TestHeaderProfiles(t *testing.T) {
	cfg := testConfig("a.example", 1)
	cfg.Headers = map[string]string{"Cache-Control": "no-cache"}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	embed := p.EmbedHeaders()
	if embed["Referer"] != "https://a.example/" {
		t.Errorf("embed Referer = %q", embed["Referer"])
	}
	if embed["Cache-Control"] != "no-cache" {
		t.Errorf("embed Cache-Control = %q", embed["Cache-Control"])
	}

	src := p.SourceHeaders("https://a.example/embed/movie/603")
	if src["Referer"] != "https://a.example/embed/movie/603" {
		t.Errorf("source Referer = %q", src["Referer"])
	}

	mirror := testConfig("b.example", 1)
	mirror.BaseURL = "https://b.example/mirror/"
	mp, err := New(mirror)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := mp.EmbedHeaders()["Referer"]; got != "https://b.example/" {
		t.Errorf("mirror embed Referer = %q, want the bare origin", got)
	}

	// Header maps are fresh per call.
	embed["Referer"] = "x"
	if p.EmbedHeaders()["Referer"] == "x" {
		t.Error("EmbedHeaders shares state between calls")
	}
}

func TestDefaultsBuildRegistry(t *testing.T) {
	reg, err := NewRegistry(Defaults())
	if err != nil {
		t.Fatalf("NewRegistry(Defaults()) error: %v", err)
	}
	ps := reg.Providers()
	if len(ps) != 2 || ps[0].Name() != "vidsrc.me" || ps[1].Name() != "vidsrc.to" {
		t.Errorf("default registry = %v", ps)
	}
	req, err := media.MovieRequest("603")
	if err != nil {
		t.Fatalf("MovieRequest() error: %v", err)
	}
	if !ps[0].StreamAPIURL(req).IsPresent() {
		t.Error("vidsrc.me should expose a direct stream API")
	}
}
