package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 10 * 1024 * 1024

// FailureKind classifies a failed fetch.
type FailureKind int

const (
	Timeout FailureKind = iota
	Network
	HTTPStatus
)

func (k FailureKind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case Network:
		return "network"
	case HTTPStatus:
		return "http-status"
	default:
		return "unknown"
	}
}

// FetchError is the only error type Fetch returns.
type FetchError struct {
	Kind   FailureKind
	URL    string
	Status int // Set when Kind is HTTPStatus
	Err    error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case HTTPStatus:
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.Status)
	case Timeout:
		return fmt.Sprintf("fetch %s: timed out", e.URL)
	default:
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Page is a successfully fetched upstream response.
type Page struct {
	URL    string
	Status int
	Body   []byte
}

// Fetcher issues single GET requests with a browser header profile.
// It never retries; escalation policy belongs to the caller.
type Fetcher struct {
	client *http.Client
}

// NewFetcher wraps client. A nil client gets NewClient's defaults.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client, _ = NewClient(Options{})
	}
	return &Fetcher{client: client}
}

// Fetch performs a GET for an HTML document. headers are layered over the
// default browser profile; a zero timeout relies on ctx alone.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) (*Page, error) {
	return f.do(ctx, rawURL, AcceptHTML, headers, timeout)
}

// FetchJSON performs a GET against a JSON endpoint the way the embed
// player's own XHR calls do.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, headers map[string]string, timeout time.Duration) (*Page, error) {
	merged := map[string]string{"X-Requested-With": "XMLHttpRequest"}
	for k, v := range headers {
		merged[k] = v
	}
	return f.do(ctx, rawURL, AcceptJSON, merged, timeout)
}

func (f *Fetcher) do(ctx context.Context, rawURL, accept string, headers map[string]string, timeout time.Duration) (*Page, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, &FetchError{Kind: Network, URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &FetchError{Kind: Network, URL: rawURL, Err: fmt.Errorf("creating request: %w", err)}
	}

	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", AcceptLanguage)
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(ctx, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Kind: HTTPStatus, URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, classify(ctx, rawURL, fmt.Errorf("reading response: %w", err))
	}

	return &Page{URL: rawURL, Status: resp.StatusCode, Body: body}, nil
}

func classify(ctx context.Context, rawURL string, err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &FetchError{Kind: Timeout, URL: rawURL, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &FetchError{Kind: Timeout, URL: rawURL, Err: err}
	}
	return &FetchError{Kind: Network, URL: rawURL, Err: err}
}
