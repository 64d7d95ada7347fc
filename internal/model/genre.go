package model

import (
	"strings"
)

// GenreSeparator separates individual genres inside the raw Genre field
const GenreSeparator = ","

// SplitGenres explodes a raw genre field into trimmed labels.
// Empty labels (e.g. from a trailing comma) are skipped.
func SplitGenres(raw string) []string {
	parts := strings.Split(raw, GenreSeparator)
	genres := make([]string, 0, len(parts))
	for _, part := range parts {
		genre := strings.TrimSpace(part)
		if genre == "" {
			continue
		}
		genres = append(genres, genre)
	}
	return genres
}
