package media

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/mo"
)

// ErrInvalidRequest marks a request the pipeline cannot run at all.
var ErrInvalidRequest = errors.New("invalid media request")

// requestIDPattern matches catalog IDs such as "603" or "tt0133093".
var requestIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

const maxRequestIDLen = 64

// Request identifies one media item to resolve. It is immutable once built
// by NewRequest.
type Request struct {
	id      string
	kind    Kind
	season  mo.Option[int]
	episode mo.Option[int]
}

// ParseKind maps caller input onto a Kind.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return Movie, nil
	case "tv", "series", "show":
		return Series, nil
	default:
		return Movie, fmt.Errorf("%w: unsupported type %q (valid: movie, tv)", ErrInvalidRequest, s)
	}
}

// NewRequest validates and builds a Request. Season and episode must be
// present and positive for series, and absent for movies.
func NewRequest(id string, kind Kind, season, episode mo.Option[int]) (Request, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Request{}, fmt.Errorf("%w: id cannot be empty", ErrInvalidRequest)
	}
	if len(id) > maxRequestIDLen {
		return Request{}, fmt.Errorf("%w: id too long: %d characters", ErrInvalidRequest, len(id))
	}
	if !requestIDPattern.MatchString(id) {
		return Request{}, fmt.Errorf("%w: id contains invalid characters: %q", ErrInvalidRequest, id)
	}

	switch kind {
	case Movie:
		if season.IsPresent() || episode.IsPresent() {
			return Request{}, fmt.Errorf("%w: season and episode are only valid for tv", ErrInvalidRequest)
		}
	case Series:
		s, okS := season.Get()
		e, okE := episode.Get()
		if !okS || !okE {
			return Request{}, fmt.Errorf("%w: season and episode are required for tv", ErrInvalidRequest)
		}
		if s < 1 || e < 1 {
			return Request{}, fmt.Errorf("%w: season and episode must be positive, got %d/%d", ErrInvalidRequest, s, e)
		}
	default:
		return Request{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidRequest, kind)
	}

	return Request{id: id, kind: kind, season: season, episode: episode}, nil
}

// MovieRequest is shorthand for NewRequest(id, Movie, None, None).
func MovieRequest(id string) (Request, error) {
	return NewRequest(id, Movie, mo.None[int](), mo.None[int]())
}

// EpisodeRequest is shorthand for a series request.
func EpisodeRequest(id string, season, episode int) (Request, error) {
	return NewRequest(id, Series, mo.Some(season), mo.Some(episode))
}

func (r Request) ID() string { return r.id }
func (r Request) Kind() Kind { return r.kind }
func (r Request) Season() mo.Option[int] { return r.season }
func (r Request) Episode() mo.Option[int] { return r.episode }

// IsZero reports whether r was not produced by NewRequest.
func (r Request) IsZero() bool {
	return r.id == ""
}

func (r Request) String() string {
	if r.kind == Series {
		return fmt.Sprintf("%s S%02dE%02d", r.id, r.season.OrEmpty(), r.episode.OrEmpty())
	}
	return r.id
}
