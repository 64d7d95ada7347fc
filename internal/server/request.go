package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/user/moviedash-go/internal/dashboard"
)

// ErrBadParam is returned for a malformed query parameter
var ErrBadParam = errors.New("bad query parameter")

// ParseRequest reads min_year, max_year, genre and match from a query string.
// An absent genre parameter selects every label, a present but empty one
// selects none.
func ParseRequest(q url.Values) (dashboard.Request, error) {
	var req dashboard.Request

	var err error
	if req.MinYear, err = yearParam(q, "min_year"); err != nil {
		return req, err
	}
	if req.MaxYear, err = yearParam(q, "max_year"); err != nil {
		return req, err
	}

	if values, ok := q["genre"]; ok {
		req.Genres = make([]string, 0, len(values))
		for _, v := range values {
			if v = strings.TrimSpace(v); v != "" {
				req.Genres = append(req.Genres, v)
			}
		}
	}

	req.Match = strings.TrimSpace(q.Get("match"))
	return req, nil
}

func yearParam(q url.Values, name string) (*int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q is not a year", ErrBadParam, name, raw)
	}
	return &year, nil
}
