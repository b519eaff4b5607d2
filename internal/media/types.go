// Package media defines shared types for the reelfetch application.
package media

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/samber/mo"
)

// Kind represents whether content is a movie or a series.
type Kind int

const (
	Movie Kind = iota
	Series
)

func (k Kind) String() string {
	switch k {
	case Movie:
		return "movie"
	case Series:
		return "tv"
	default:
		return "unknown"
	}
}

// Tier identifies the extraction strategy that discovered a candidate.
// Lower tiers have higher priority.
type Tier int

const (
	ScriptConfig Tier = iota
	DomAttribute
	InlineText
)

func (t Tier) String() string {
	switch t {
	case ScriptConfig:
		return "script-config"
	case DomAttribute:
		return "dom-attribute"
	case InlineText:
		return "inline-text"
	default:
		return "unknown"
	}
}

// EmbedDocument is the raw embed page a provider served for one attempt.
type EmbedDocument struct {
	ProviderBaseURL string
	RequestURL      string
	Status          int
	Body            string
}

// SourceCandidate is an identifier that might resolve to a stream.
type SourceCandidate struct {
	ID        string // Digits only
	Tier      Tier
	OriginURL string // Embed document the candidate came from
}

// StreamDescriptor is a named, playable playlist URL for one media item.
type StreamDescriptor struct {
	Name        string
	PosterImage mo.Option[string]
	MediaID     string
	StreamURL   string
}

// descriptorJSON is the wire shape handed to callers.
type descriptorJSON struct {
	Name    string `json:"name"`
	Image   string `json:"image"`
	MediaID string `json:"mediaId"`
	Stream  string `json:"stream"`
}

// MarshalJSON renders the descriptor as {name, image, mediaId, stream},
// with an absent poster encoded as an empty string.
func (d StreamDescriptor) MarshalJSON() ([]byte, error) {
	return json.Marshal(descriptorJSON{
		Name:    d.Name,
		Image:   d.PosterImage.OrEmpty(),
		MediaID: d.MediaID,
		Stream:  d.StreamURL,
	})
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (d *StreamDescriptor) UnmarshalJSON(data []byte) error {
	var w descriptorJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*d = StreamDescriptor{
		Name:        w.Name,
		PosterImage: mo.EmptyableToOption(w.Image),
		MediaID:     w.MediaID,
		StreamURL:   w.Stream,
	}
	return nil
}

// IsPlaylistURL reports whether raw is an absolute http(s) URL whose path
// names an HLS playlist. Query strings and fragments are allowed.
func IsPlaylistURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.Host == "" {
		return false
	}
	return strings.HasSuffix(strings.ToLower(u.Path), ".m3u8")
}
