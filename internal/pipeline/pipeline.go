// Package pipeline drives a media request through each provider in
// priority order until one of them yields playable streams.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"reelfetch/internal/extract"
	"reelfetch/internal/httputil"
	"reelfetch/internal/logging"
	"reelfetch/internal/media"
	"reelfetch/internal/provider"
	"reelfetch/internal/resolve"
)

const (
	DefaultWorkers      = 6
	MaxWorkers          = 16
	DefaultDeadline     = 30 * time.Second
	DefaultEmbedTimeout = 10 * time.Second
)

var (
	// ErrNoMatches means the embed document yielded nothing on any tier.
	ErrNoMatches = errors.New("embed document yielded no sources")

	// ErrNothingResolved means candidates were found but none resolved to a
	// playlist.
	ErrNothingResolved = errors.New("no candidate resolved to a playlist")
)

type state int

const (
	stateInit state = iota
	stateFetchEmbed
	stateRunExtraction
	stateResolveCandidates
	stateResolveDirect
	stateAggregate
	stateEscalate
	stateSuccess
	stateEmpty
)

func (s state) String() string {
	switch s {
	case stateInit:
		return "init"
	case stateFetchEmbed:
		return "fetch-embed"
	case stateRunExtraction:
		return "run-extraction"
	case stateResolveCandidates:
		return "resolve-candidates"
	case stateResolveDirect:
		return "resolve-direct"
	case stateAggregate:
		return "aggregate"
	case stateEscalate:
		return "escalate"
	case stateSuccess:
		return "success"
	case stateEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Options bounds a pipeline run. Zero values take the package defaults.
type Options struct {
	Workers      int
	Deadline     time.Duration
	EmbedTimeout time.Duration
}

func (o Options) withDefaults() Options {
	switch {
	case o.Workers < 1:
		o.Workers = DefaultWorkers
	case o.Workers > MaxWorkers:
		o.Workers = MaxWorkers
	}
	if o.Deadline <= 0 {
		o.Deadline = DefaultDeadline
	}
	if o.EmbedTimeout <= 0 {
		o.EmbedTimeout = DefaultEmbedTimeout
	}
	return o
}

// AttemptResult is the outcome of trying one provider.
type AttemptResult struct {
	Provider    string
	Descriptors []media.StreamDescriptor
	Failed      bool
	Reason      error
}

// Pipeline resolves requests against a provider registry. It keeps no
// per-request state, so one Pipeline serves concurrent callers.
type Pipeline struct {
	registry *provider.Registry
	fetcher  *httputil.Fetcher
	resolver *resolve.Resolver
	opts     Options
	log      *logrus.Entry
}

// New assembles a pipeline.
func New(registry *provider.Registry, fetcher *httputil.Fetcher, resolver *resolve.Resolver, opts Options, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		registry: registry,
		fetcher:  fetcher,
		resolver: resolver,
		opts:     opts.withDefaults(),
		log:      logging.OrDiscard(log),
	}
}

// Options returns the effective options.
func (p *Pipeline) Options() Options {
	return p.opts
}

// Resolve tries each provider in ascending priority until one produces at
// least one descriptor. Running out of providers (or time) is not an
// error: the result is then an empty slice. Only an invalid request fails.
func (p *Pipeline) Resolve(ctx context.Context, req media.Request) ([]media.StreamDescriptor, error) {
	if req.IsZero() {
		return nil, fmt.Errorf("%w: empty request", media.ErrInvalidRequest)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Deadline)
	defer cancel()

	log := p.log.WithField("request", req.String())
	providers := p.registry.Providers()
	next := 0
	var last AttemptResult

	st := stateInit
	for {
		log.WithField("state", st).Debug("pipeline transition")

		switch st {
		case stateInit:
			if next >= len(providers) || ctx.Err() != nil {
				st = stateEmpty
				continue
			}
			last = p.Attempt(ctx, req, providers[next])
			next++
			if last.Failed {
				st = stateEscalate
			} else {
				st = stateSuccess
			}

		case stateEscalate:
			log.WithFields(logrus.Fields{
				"provider": last.Provider,
				"reason":   last.Reason,
			}).Info("provider attempt failed, escalating")
			st = stateInit

		case stateSuccess:
			log.WithFields(logrus.Fields{
				"provider": last.Provider,
				"streams":  len(last.Descriptors),
			}).Info("streams resolved")
			return last.Descriptors, nil

		case stateEmpty:
			if err := ctx.Err(); err != nil {
				log.WithError(err).Info("deadline reached, no streams found")
			} else {
				log.WithField("providers", len(providers)).Info("providers exhausted, no streams found")
			}
			return []media.StreamDescriptor{}, nil
		}
	}
}

// attempt carries one provider attempt between states.
type attempt struct {
	provider *provider.Provider
	doc      *media.EmbedDocument
	result   extract.Result
	descs    []media.StreamDescriptor
	reason   error
}

// Attempt runs a single provider from embed fetch through aggregation.
func (p *Pipeline) Attempt(ctx context.Context, req media.Request, prov *provider.Provider) AttemptResult {
	log := p.log.WithFields(logrus.Fields{
		"request":  req.String(),
		"provider": prov.Name(),
	})
	a := &attempt{provider: prov}

	st := stateFetchEmbed
	for st != stateSuccess && st != stateEscalate {
		log.WithField("state", st).Debug("attempt transition")
		st = p.step(ctx, req, a, st, log)
	}

	res := AttemptResult{Provider: prov.Name(), Descriptors: a.descs}
	if st == stateEscalate {
		res.Failed = true
		res.Reason = a.reason
		res.Descriptors = nil
	}
	return res
}

func (p *Pipeline) step(ctx context.Context, req media.Request, a *attempt, st state, log *logrus.Entry) state {
	switch st {
	case stateFetchEmbed:
		embedURL := a.provider.EmbedURL(req)
		page, err := p.fetcher.Fetch(ctx, embedURL, a.provider.EmbedHeaders(), p.opts.EmbedTimeout)
		if err != nil {
			a.reason = err
			return stateEscalate
		}
		a.doc = &media.EmbedDocument{
			ProviderBaseURL: a.provider.BaseURL(),
			RequestURL:      page.URL,
			Status:          page.Status,
			Body:            string(page.Body),
		}
		return stateRunExtraction

	case stateRunExtraction:
		a.result = a.provider.Chain().Extract(a.doc, req.ID())
		log.WithFields(logrus.Fields{
			"candidates": len(a.result.Candidates),
			"inline":     len(a.result.Inline),
		}).Debug("extraction finished")
		switch {
		case len(a.result.Inline) > 0:
			a.descs = a.result.Inline
			return stateAggregate
		case len(a.result.Candidates) > 0:
			return stateResolveCandidates
		default:
			return stateResolveDirect
		}

	case stateResolveCandidates:
		a.descs = p.resolveAll(ctx, req, a.provider, a.result.Candidates, a.doc.RequestURL)
		if len(a.descs) == 0 {
			a.reason = ErrNothingResolved
		}
		return stateAggregate

	case stateResolveDirect:
		a.reason = ErrNoMatches
		if d, ok := p.resolver.ResolveDirect(ctx, req, a.provider, a.doc.RequestURL).Get(); ok {
			a.descs = []media.StreamDescriptor{d}
		}
		return stateAggregate

	case stateAggregate:
		a.descs = Aggregate(a.descs...)
		if len(a.descs) == 0 {
			if a.reason == nil {
				a.reason = ErrNothingResolved
			}
			return stateEscalate
		}
		a.reason = nil
		return stateSuccess
	}

	a.reason = fmt.Errorf("unexpected state %s", st)
	return stateEscalate
}

// resolveAll resolves candidates with bounded concurrency. Results land in
// per-candidate slots so discovery order survives.
func (p *Pipeline) resolveAll(ctx context.Context, req media.Request, prov *provider.Provider, cands []media.SourceCandidate, referer string) []media.StreamDescriptor {
	slots := make([]mo.Option[media.StreamDescriptor], len(cands))

	var g errgroup.Group
	g.SetLimit(p.opts.Workers)
	for i, cand := range cands {
		g.Go(func() error {
			slots[i] = p.resolver.Resolve(ctx, req, cand, prov, referer)
			return nil
		})
	}
	_ = g.Wait()

	var out []media.StreamDescriptor
	for _, s := range slots {
		if d, ok := s.Get(); ok {
			out = append(out, d)
		}
	}
	return out
}
