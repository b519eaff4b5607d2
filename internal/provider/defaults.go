package provider

import "reelfetch/internal/extract"

// Defaults returns the built-in registry: vidsrc.me first, vidsrc.to as
// the fallback host.
func Defaults() []Config {
	browser := map[string]string{
		"Sec-Fetch-Dest": "document",
		"Sec-Fetch-Mode": "navigate",
		"Sec-Fetch-Site": "same-origin",
		"Cache-Control":  "no-cache",
		"Pragma":         "no-cache",
	}

	return []Config{
		{
			Name:     "vidsrc.me",
			BaseURL:  "https://vidsrc.me",
			Priority: 1,
			Headers:  browser,
			EmbedPath: Paths{
				Movie: "/embed/movie/{id}",
				TV:    "/embed/tv/{id}/{season}/{episode}",
			},
			SourceAPIPath: "/embed/sources/{sourceId}",
			StreamAPIPath: Paths{
				Movie: "/api/source/{id}",
				TV:    "/api/source/{id}/{season}/{episode}",
			},
			Patterns: extract.DefaultPatterns(),
		},
		{
			Name:     "vidsrc.to",
			BaseURL:  "https://vidsrc.to",
			Priority: 2,
			EmbedPath: Paths{
				Movie: "/embed/movie/{id}",
				TV:    "/embed/tv/{id}/{season}/{episode}",
			},
			SourceAPIPath: "/embed/sources/{sourceId}",
			Patterns:      extract.DefaultPatterns(),
		},
	}
}
