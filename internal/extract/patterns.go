package extract

import (
	"fmt"
	"regexp"
)

// Patterns is one provider's set of extraction pattern families. Upstream
// markup is unversioned, so the concrete expressions live in configuration.
type Patterns struct {
	// ScriptMarkers restricts tier 1 to scripts containing any marker.
	// Empty means every script qualifies.
	ScriptMarkers []string `toml:"script_markers"`

	// ScriptConfig regexes; capture group 1 is the source identifier.
	ScriptConfig []string `toml:"script_config"`

	// DomAttributes lists identifier-bearing attributes in preference order.
	DomAttributes []string `toml:"dom_attributes"`

	// InlineStream regexes; capture group 1 is a playlist URL. JSON escaped
	// slashes in the capture are unescaped before use.
	InlineStream []string `toml:"inline_stream"`
}

// DefaultPatterns returns the pattern families observed on vidsrc-style
// JWPlayer embeds.
func DefaultPatterns() Patterns {
	return Patterns{
		ScriptConfig: []string{
			`(?:^|[^A-Za-z0-9_])["']?(?:sourceId|source_id|sourceID|data-source-id)["']?\s*[:=]\s*["']?(\d+)`,
		},
		DomAttributes: []string{
			"data-source-id",
			"data-id",
		},
		InlineStream: []string{
			`"file"\s*:\s*"(https?:\\?/\\?/[^"]+\.m3u8[^"]*)"`,
			`data-source="(https?://[^"]+\.m3u8[^"]*)"`,
		},
	}
}

// WithDefaults fills every empty family from DefaultPatterns.
func (p Patterns) WithDefaults() Patterns {
	def := DefaultPatterns()
	if len(p.ScriptConfig) == 0 {
		p.ScriptConfig = def.ScriptConfig
	}
	if len(p.DomAttributes) == 0 {
		p.DomAttributes = def.DomAttributes
	}
	if len(p.InlineStream) == 0 {
		p.InlineStream = def.InlineStream
	}
	return p
}

// compileAll compiles exprs in order, requiring a capture group in each.
func compileAll(family string, exprs []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for i, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("%s pattern %d: %w", family, i, err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("%s pattern %d: %q has no capture group", family, i, expr)
		}
		out = append(out, re)
	}
	return out, nil
}

// validAttribute matches HTML attribute names safe to splice into a selector.
var validAttribute = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
