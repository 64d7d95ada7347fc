package pipeline

import (
	"fmt"
)

// GenreMatch selects how the genre predicate compares a record to the selection
type GenreMatch string

const (
	// MatchExploded keeps a record when any of its exploded genres is selected
	MatchExploded GenreMatch = "exploded"
	// MatchRaw keeps a record only when its whole raw genre string is selected
	MatchRaw GenreMatch = "raw"
)

// ParseGenreMatch parses a match mode, empty selects MatchExploded
func ParseGenreMatch(s string) (GenreMatch, error) {
	switch GenreMatch(s) {
	case "", MatchExploded:
		return MatchExploded, nil
	case MatchRaw:
		return MatchRaw, nil
	default:
		return "", fmt.Errorf("unknown genre match mode %q", s)
	}
}

// Params are the filter control values for one pipeline run
type Params struct {
	MinYear int        `json:"min_year"`
	MaxYear int        `json:"max_year"`
	Genres  []string   `json:"genres"`
	Match   GenreMatch `json:"match"`
}

func (p Params) genreSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Genres))
	for _, genre := range p.Genres {
		set[genre] = struct{}{}
	}
	return set
}
