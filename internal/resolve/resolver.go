// Package resolve turns source candidates into playable stream descriptors
// through each provider's secondary JSON endpoints.
package resolve

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"

	"reelfetch/internal/httputil"
	"reelfetch/internal/logging"
	"reelfetch/internal/media"
	"reelfetch/internal/provider"
)

const (
	// DefaultName labels a source entry that carries no label of its own.
	DefaultName = "Stream"

	// DirectStreamName labels descriptors from a provider's stream API.
	DirectStreamName = "Direct Stream"
)

// sourceList is the source API response: {"sources":[{file, src, label}]}.
// Entries stay raw so a malformed sibling cannot spoil the first one.
type sourceList struct {
	Sources []json.RawMessage `json:"sources"`
}

type sourceEntry struct {
	File  mo.Option[string]
	Src   mo.Option[string]
	Label mo.Option[string]
}

// Resolver performs the secondary fetches. It holds no per-request state
// and is safe for concurrent use.
type Resolver struct {
	fetcher *httputil.Fetcher
	timeout time.Duration
	log     *logrus.Entry
}

// New returns a Resolver that bounds every secondary fetch by timeout.
func New(fetcher *httputil.Fetcher, timeout time.Duration, log *logrus.Entry) *Resolver {
	return &Resolver{fetcher: fetcher, timeout: timeout, log: logging.OrDiscard(log)}
}

// Resolve fetches the source API entry for cand and returns its playable
// stream. Failures are logged and yield None; they never affect sibling
// candidates.
func (r *Resolver) Resolve(ctx context.Context, req media.Request, cand media.SourceCandidate, p *provider.Provider, referer string) mo.Option[media.StreamDescriptor] {
	log := r.log.WithFields(logrus.Fields{
		"provider":  p.Name(),
		"candidate": cand.ID,
	})

	if err := httputil.ValidateNumericID(cand.ID); err != nil {
		log.WithError(err).Warn("skipping candidate")
		return mo.None[media.StreamDescriptor]()
	}

	page, err := r.fetcher.FetchJSON(ctx, p.SourceURL(req, cand.ID), p.SourceHeaders(referer), r.timeout)
	if err != nil {
		log.WithError(err).Warn("source fetch failed")
		return mo.None[media.StreamDescriptor]()
	}

	entry, err := firstSource(page.Body)
	if err != nil {
		log.WithError(err).Warn("source response unusable")
		return mo.None[media.StreamDescriptor]()
	}

	stream, ok := nonEmpty(entry.File)
	if !ok {
		stream, ok = nonEmpty(entry.Src)
	}
	if !ok || !media.IsPlaylistURL(stream) {
		log.WithField("stream", stream).Debug("source is not a playlist, dropping")
		return mo.None[media.StreamDescriptor]()
	}

	name, ok := nonEmpty(entry.Label)
	if !ok {
		name = DefaultName
	}
	return mo.Some(media.StreamDescriptor{
		Name:      name,
		MediaID:   req.ID(),
		StreamURL: stream,
	})
}

// ResolveDirect queries the provider's stream API, if it has one for req.
// It is the last resort for an embed document that yielded nothing.
func (r *Resolver) ResolveDirect(ctx context.Context, req media.Request, p *provider.Provider, referer string) mo.Option[media.StreamDescriptor] {
	apiURL, ok := p.StreamAPIURL(req).Get()
	if !ok {
		return mo.None[media.StreamDescriptor]()
	}
	log := r.log.WithField("provider", p.Name())

	page, err := r.fetcher.FetchJSON(ctx, apiURL, p.SourceHeaders(referer), r.timeout)
	if err != nil {
		log.WithError(err).Warn("stream API fetch failed")
		return mo.None[media.StreamDescriptor]()
	}

	fields, err := decodeObject(page.Body)
	if err != nil {
		log.WithError(err).Warn("stream API response unusable")
		return mo.None[media.StreamDescriptor]()
	}
	stream, ok := nonEmpty(stringField(fields, "stream"))
	if !ok || !media.IsPlaylistURL(stream) {
		log.WithField("stream", stream).Debug("stream API returned no playlist")
		return mo.None[media.StreamDescriptor]()
	}

	return mo.Some(media.StreamDescriptor{
		Name:      DirectStreamName,
		MediaID:   req.ID(),
		StreamURL: stream,
	})
}

func firstSource(body []byte) (sourceEntry, error) {
	var list sourceList
	if err := json.Unmarshal(body, &list); err != nil {
		return sourceEntry{}, fmt.Errorf("decoding sources: %w", err)
	}
	if len(list.Sources) == 0 {
		return sourceEntry{}, fmt.Errorf("no sources listed")
	}
	fields, err := decodeObject(list.Sources[0])
	if err != nil {
		return sourceEntry{}, fmt.Errorf("first source: %w", err)
	}
	return sourceEntry{
		File:  stringField(fields, "file"),
		Src:   stringField(fields, "src"),
		Label: stringField(fields, "label"),
	}, nil
}

func decodeObject(raw []byte) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("decoding object: %w", err)
	}
	return fields, nil
}

// stringField reads key as a string. A missing or mistyped value is absent.
func stringField(fields map[string]json.RawMessage, key string) mo.Option[string] {
	raw, ok := fields[key]
	if !ok {
		return mo.None[string]()
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return mo.None[string]()
	}
	return mo.Some(v)
}

// nonEmpty treats a present but blank string the same as an absent one.
func nonEmpty(o mo.Option[string]) (string, bool) {
	v, ok := o.Get()
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
