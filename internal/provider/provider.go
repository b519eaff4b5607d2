// Package provider holds the ordered registry of upstream embed providers
// and builds the URLs and header profiles used to query them.
package provider

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/samber/mo"

	"reelfetch/internal/extract"
	"reelfetch/internal/httputil"
	"reelfetch/internal/media"
)

// Paths holds one path template per media kind.
type Paths struct {
	Movie string `toml:"movie"`
	TV    string `toml:"tv"`
}

func (p Paths) forKind(k media.Kind) string {
	if k == media.Series {
		return p.TV
	}
	return p.Movie
}

// Config is the static description of one upstream provider.
//
// Templates may reference {id}, {season}, {episode} and, for the source
// API, {sourceId}.
type Config struct {
	Name          string            `toml:"name"`
	BaseURL       string            `toml:"base_url"`
	Priority      int               `toml:"priority"`
	Headers       map[string]string `toml:"headers"`
	EmbedPath     Paths             `toml:"embed_path"`
	SourceAPIPath string            `toml:"source_api_path"`
	StreamAPIPath Paths             `toml:"stream_api_path"` // Optional
	Patterns      extract.Patterns  `toml:"patterns"`
}

// Provider is a validated Config with its extraction chain compiled.
type Provider struct {
	cfg   Config
	chain *extract.Chain
}

// New validates cfg and compiles its patterns.
func New(cfg Config) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	chain, err := extract.NewChain(cfg.Patterns)
	if err != nil {
		return nil, fmt.Errorf("provider %s: %w", cfg.Name, err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Provider{cfg: cfg, chain: chain}, nil
}

// Validate checks that the provider can build every URL it will need.
func (c Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}
	if err := httputil.ValidateURL(c.BaseURL); err != nil {
		return fmt.Errorf("provider %s: base_url: %w", c.Name, err)
	}
	if !strings.Contains(c.EmbedPath.Movie, "{id}") {
		return fmt.Errorf("provider %s: embed_path.movie must contain {id}", c.Name)
	}
	for _, ph := range []string{"{id}", "{season}", "{episode}"} {
		if !strings.Contains(c.EmbedPath.TV, ph) {
			return fmt.Errorf("provider %s: embed_path.tv must contain %s", c.Name, ph)
		}
	}
	if !strings.Contains(c.SourceAPIPath, "{sourceId}") {
		return fmt.Errorf("provider %s: source_api_path must contain {sourceId}", c.Name)
	}
	return nil
}

func (p *Provider) Name() string { return p.cfg.Name }
func (p *Provider) BaseURL() string { return p.cfg.BaseURL }
func (p *Provider) Priority() int { return p.cfg.Priority }
func (p *Provider) Chain() *extract.Chain { return p.chain }
func (p *Provider) Config() Config { return p.cfg }

func (p *Provider) String() string {
	return p.cfg.Name
}

// EmbedURL builds the embed document URL for req.
func (p *Provider) EmbedURL(req media.Request) string {
	return httputil.JoinPath(p.cfg.BaseURL, expand(p.cfg.EmbedPath.forKind(req.Kind()), req, ""))
}

// SourceURL builds the per-source API URL for a candidate identifier.
func (p *Provider) SourceURL(req media.Request, sourceID string) string {
	return httputil.JoinPath(p.cfg.BaseURL, expand(p.cfg.SourceAPIPath, req, sourceID))
}

// StreamAPIURL builds the direct stream API URL, if the provider has one
// for req's kind.
func (p *Provider) StreamAPIURL(req media.Request) mo.Option[string] {
	tmpl := p.cfg.StreamAPIPath.forKind(req.Kind())
	if tmpl == "" {
		return mo.None[string]()
	}
	return mo.Some(httputil.JoinPath(p.cfg.BaseURL, expand(tmpl, req, "")))
}

// EmbedHeaders is the header profile for embed document requests: the
// provider's configured headers plus a Referer on its own origin.
func (p *Provider) EmbedHeaders() map[string]string {
	h := map[string]string{"Referer": httputil.Origin(p.cfg.BaseURL)}
	for k, v := range p.cfg.Headers {
		h[k] = v
	}
	return h
}

// SourceHeaders is the header profile for secondary calls made on behalf
// of the embed page at referer.
func (p *Provider) SourceHeaders(referer string) map[string]string {
	h := make(map[string]string, len(p.cfg.Headers)+1)
	for k, v := range p.cfg.Headers {
		h[k] = v
	}
	h["Referer"] = referer
	return h
}

// expand substitutes request fields into a path template. Values are path
// escaped; absent season/episode expand to "".
func expand(tmpl string, req media.Request, sourceID string) string {
	season, episode := "", ""
	if s, ok := req.Season().Get(); ok {
		season = strconv.Itoa(s)
	}
	if e, ok := req.Episode().Get(); ok {
		episode = strconv.Itoa(e)
	}
	r := strings.NewReplacer(
		"{id}", url.PathEscape(req.ID()),
		"{season}", season,
		"{episode}", episode,
		"{sourceId}", url.PathEscape(sourceID),
	)
	return r.Replace(tmpl)
}
