// Package httputil provides a security-hardened HTTP client, the document
// fetcher used against upstream providers, and input validation helpers.
package httputil

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// DefaultMaxRedirects is the redirect budget for upstream fetches.
const DefaultMaxRedirects = 3

// Browser header profile presented to upstream providers.
const (
	UserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36"
	AcceptHTML     = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
	AcceptJSON     = "application/json"
	AcceptLanguage = "en-US,en;q=0.5"
)

// Options tunes the client built by NewClient.
type Options struct {
	// MaxRedirects caps how many redirects a single request may follow.
	// Zero means DefaultMaxRedirects; negative disables redirects.
	MaxRedirects int

	// Fingerprint selects a TLS ClientHello to imitate. "" uses crypto/tls,
	// "chrome" dials through uTLS.
	Fingerprint string
}

var errTooManyRedirects = errors.New("redirect budget exhausted")

// NewClient creates a hardened HTTP client with secure defaults.
// Per-request deadlines come from the request context, so the client-wide
// timeout is only a backstop.
func NewClient(opts Options) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        32,
		IdleConnTimeout:     30 * time.Second,
		DisableCompression:  false,
		MaxIdleConnsPerHost: 8,
	}

	switch opts.Fingerprint {
	case "":
	case "chrome":
		transport.DialTLSContext = dialChromeTLS
		transport.ForceAttemptHTTP2 = false
	default:
		return nil, fmt.Errorf("unsupported TLS fingerprint %q (valid: chrome)", opts.Fingerprint)
	}

	maxRedirects := opts.MaxRedirects
	if maxRedirects == 0 {
		maxRedirects = DefaultMaxRedirects
	}

	return &http.Client{
		Timeout:   time.Minute,
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return fmt.Errorf("%w (limit %d)", errTooManyRedirects, maxRedirects)
			}
			return nil
		},
	}, nil
}
