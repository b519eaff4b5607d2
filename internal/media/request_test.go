package media

import (
	"errors"
	"testing"

	"github.com/samber/mo"
)

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		kind    Kind
		season  mo.Option[int]
		episode mo.Option[int]
		wantErr bool
	}{
		{"movie", "603", Movie, mo.None[int](), mo.None[int](), false},
		{"imdb movie", "tt0133093", Movie, mo.None[int](), mo.None[int](), false},
		{"series", "1399", Series, mo.Some(1), mo.Some(2), false},
		{"empty id", "", Movie, mo.None[int](), mo.None[int](), true},
		{"path traversal id", "../603", Movie, mo.None[int](), mo.None[int](), true},
		{"slash in id", "603/1", Movie, mo.None[int](), mo.None[int](), true},
		{"movie with season", "603", Movie, mo.Some(1), mo.None[int](), true},
		{"series missing episode", "1399", Series, mo.Some(1), mo.None[int](), true},
		{"series missing both", "1399", Series, mo.None[int](), mo.None[int](), true},
		{"series zero season", "1399", Series, mo.Some(0), mo.Some(2), true},
		{"series negative episode", "1399", Series, mo.Some(1), mo.Some(-2), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewRequest(tt.id, tt.kind, tt.season, tt.episode)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !errors.Is(err, ErrInvalidRequest) {
					t.Errorf("error %v does not wrap ErrInvalidRequest", err)
				}
				if !req.IsZero() {
					t.Error("failed NewRequest should return the zero Request")
				}
				return
			}
			if req.ID() != tt.id {
				t.Errorf("ID() = %q, want %q", req.ID(), tt.id)
			}
			if req.Kind() != tt.kind {
				t.Errorf("Kind() = %v, want %v", req.Kind(), tt.kind)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"movie", Movie, false},
		{"MOVIE", Movie, false},
		{"tv", Series, false},
		{"series", Series, false},
		{" show ", Series, false},
		{"anime", Movie, true},
		{"", Movie, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRequestString(t *testing.T) {
	movie, err := MovieRequest("603")
	if err != nil {
		t.Fatal(err)
	}
	if movie.String() != "603" {
		t.Errorf("movie String() = %q, want 603", movie.String())
	}

	ep, err := EpisodeRequest("1399", 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if ep.String() != "1399 S01E02" {
		t.Errorf("episode String() = %q, want '1399 S01E02'", ep.String())
	}
}
