package bot

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/user/moviedash-go/internal/dashboard"
)

func intPtr(v int) *int { return &v }

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name    string
		args    string
		minYear *int
		maxYear *int
		genres  []string
		match   string
	}{
		{"empty", "", nil, nil, nil, ""},
		{"single year", "2015", intPtr(2015), intPtr(2015), nil, ""},
		{"range and genres", "2010-2020 Action, Science Fiction", intPtr(2010), intPtr(2020), []string{"Action", "Science Fiction"}, ""},
		{"match without years", "match=raw Drama", nil, nil, []string{"Drama"}, "raw"},
		{"years and match", "2015 match=RAW", intPtr(2015), intPtr(2015), nil, "raw"},
		{"blank genres dropped", " Action,, Drama , ", nil, nil, []string{"Action", "Drama"}, ""},
		{"not a year", "0999", nil, nil, []string{"0999"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := ParseQuery(tt.args)
			if err != nil {
				t.Fatalf("ParseQuery(%q) error = %v", tt.args, err)
			}
			if !reflect.DeepEqual(req.MinYear, tt.minYear) || !reflect.DeepEqual(req.MaxYear, tt.maxYear) {
				t.Errorf("years = %v-%v, want %v-%v", req.MinYear, req.MaxYear, tt.minYear, tt.maxYear)
			}
			if !reflect.DeepEqual(req.Genres, tt.genres) {
				t.Errorf("genres = %#v, want %#v", req.Genres, tt.genres)
			}
			if req.Match != tt.match {
				t.Errorf("match = %q, want %q", req.Match, tt.match)
			}
		})
	}
}

func TestParseQuery_ReversedYears(t *testing.T) {
	if _, err := ParseQuery("2020-2010"); !errors.Is(err, dashboard.ErrInvalidYearRange) {
		t.Errorf("ParseQuery() error = %v, want ErrInvalidYearRange", err)
	}
}

func TestCanonicalGenres(t *testing.T) {
	labels := []string{"Action", "Drama", "Science Fiction"}

	got, err := CanonicalGenres([]string{"drama", "SCIENCE fiction", "Drama"}, labels)
	if err != nil {
		t.Fatalf("CanonicalGenres() error = %v", err)
	}
	if want := []string{"Drama", "Science Fiction"}; !reflect.DeepEqual(got, want) {
		t.Errorf("CanonicalGenres() = %v, want %v", got, want)
	}

	if got, err := CanonicalGenres(nil, labels); err != nil || got != nil {
		t.Errorf("CanonicalGenres(nil) = %v, %v, want nil", got, err)
	}

	_, err = CanonicalGenres([]string{"Horror"}, labels)
	if !errors.Is(err, ErrUnknownGenre) || !strings.Contains(err.Error(), "Horror") {
		t.Errorf("CanonicalGenres(Horror) error = %v", err)
	}
}

// A query rendered from years and genres parses back to the same request
func TestProperty_ParseQueryRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	labels := []string{"Action", "Adventure", "Drama", "Science Fiction", "TV Movie"}
	genreGen := gen.SliceOf(gen.IntRange(0, len(labels)-1).Map(func(i int) string {
		return labels[i]
	}))

	properties.Property("years and genres survive formatting", prop.ForAll(
		func(minYear, span int, genres []string, raw bool) bool {
			maxYear := minYear + span
			args := fmt.Sprintf("%d-%d", minYear, maxYear)
			if raw {
				args += " match=raw"
			}
			args += " " + strings.Join(genres, ", ")

			req, err := ParseQuery(args)
			if err != nil {
				return false
			}
			if req.MinYear == nil || *req.MinYear != minYear || req.MaxYear == nil || *req.MaxYear != maxYear {
				return false
			}
			if raw != (req.Match == "raw") {
				return false
			}
			if len(genres) == 0 {
				return req.Genres == nil
			}
			return reflect.DeepEqual(req.Genres, genres)
		},
		gen.IntRange(1900, 2030),
		gen.IntRange(0, 30),
		genreGen,
		gen.Bool(),
	))

	properties.TestingRun(t)
}
