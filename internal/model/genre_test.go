package model

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestSplitGenres(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"single genre", "Drama", []string{"Drama"}},
		{"two genres", "Action, Drama", []string{"Action", "Drama"}},
		{"no spaces", "Action,Drama", []string{"Action", "Drama"}},
		{"extra spaces", "  Action ,   Science Fiction ", []string{"Action", "Science Fiction"}},
		{"trailing comma", "Action, ", []string{"Action"}},
		{"empty string", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SplitGenres(tt.input)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("SplitGenres(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// Exploded labels are never empty and never carry surrounding whitespace or separators
func TestProperty_SplitGenresLabels(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	labelGen := gen.RegexMatch(`[A-Za-z][A-Za-z ]{0,12}[A-Za-z]`)

	properties.Property("labels are trimmed and non-empty", prop.ForAll(
		func(labels []string) bool {
			raw := strings.Join(labels, " ,  ")
			for _, genre := range SplitGenres(raw) {
				if genre == "" || genre != strings.TrimSpace(genre) || strings.Contains(genre, GenreSeparator) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(labelGen),
	))

	properties.Property("joining labels round-trips", prop.ForAll(
		func(labels []string) bool {
			result := SplitGenres(strings.Join(labels, ", "))
			return len(result) == len(labels)
		},
		gen.SliceOf(labelGen),
	))

	properties.TestingRun(t)
}

func TestSubscription_GenreList(t *testing.T) {
	sub := &Subscription{}
	if sub.GenreList() != nil {
		t.Errorf("GenreList() = %v, want nil", sub.GenreList())
	}

	sub.SetGenreList([]string{"Action", "Science Fiction"})
	if sub.Genres != "Action|Science Fiction" {
		t.Errorf("Genres = %q, want %q", sub.Genres, "Action|Science Fiction")
	}
	if !reflect.DeepEqual(sub.GenreList(), []string{"Action", "Science Fiction"}) {
		t.Errorf("GenreList() = %v", sub.GenreList())
	}
	if sub.HasYears() {
		t.Error("HasYears() = true, want false")
	}
	sub.MinYear, sub.MaxYear = 2000, 2010
	if !sub.HasYears() {
		t.Error("HasYears() = false, want true")
	}
}
