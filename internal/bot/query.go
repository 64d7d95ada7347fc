package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/user/moviedash-go/internal/dashboard"
)

var (
	// ErrUnknownGenre is returned when a query names a genre the table does not have
	ErrUnknownGenre = errors.New("unknown genre")

	yearsPattern = regexp.MustCompile(`^([1-9]\d{3})(?:-([1-9]\d{3}))?$`)
)

const matchPrefix = "match="

// ParseQuery parses command arguments of the form
//
//	[YYYY | YYYY-YYYY] [match=exploded|raw] [genre, genre, ...]
//
// A single year selects that year only. Missing genres select every label.
func ParseQuery(args string) (dashboard.Request, error) {
	var req dashboard.Request
	rest := strings.TrimSpace(args)

	token, tail := nextToken(rest)
	if m := yearsPattern.FindStringSubmatch(token); m != nil {
		minYear, _ := strconv.Atoi(m[1])
		maxYear := minYear
		if m[2] != "" {
			maxYear, _ = strconv.Atoi(m[2])
		}
		if minYear > maxYear {
			return req, fmt.Errorf("%w: %d > %d", dashboard.ErrInvalidYearRange, minYear, maxYear)
		}
		req.MinYear = &minYear
		req.MaxYear = &maxYear
		rest = tail
	}

	token, tail = nextToken(rest)
	if strings.HasPrefix(strings.ToLower(token), matchPrefix) {
		req.Match = strings.ToLower(token[len(matchPrefix):])
		rest = tail
	}

	for _, genre := range strings.Split(rest, ",") {
		if genre = strings.TrimSpace(genre); genre != "" {
			req.Genres = append(req.Genres, genre)
		}
	}
	return req, nil
}

// CanonicalGenres maps each requested genre onto a known label, ignoring case.
// Duplicates are dropped and nil stays nil.
func CanonicalGenres(requested, labels []string) ([]string, error) {
	if requested == nil {
		return nil, nil
	}

	known := make(map[string]string, len(labels))
	for _, label := range labels {
		known[strings.ToLower(label)] = label
	}

	seen := make(map[string]bool, len(requested))
	out := make([]string, 0, len(requested))
	for _, genre := range requested {
		label, ok := known[strings.ToLower(genre)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGenre, genre)
		}
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}
	return out, nil
}

func nextToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t\n"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}
