package dashboard

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/dataset"
	"github.com/user/moviedash-go/internal/metrics"
	"github.com/user/moviedash-go/internal/pipeline"
)

var (
	// ErrInvalidYearRange is returned when the requested min year exceeds the max year
	ErrInvalidYearRange = errors.New("min year exceeds max year")
	// ErrInvalidMatch is returned for an unknown genre match mode
	ErrInvalidMatch = errors.New("invalid genre match mode")
)

// Defaults are the filter control values used when a request leaves them out
type Defaults struct {
	MinYear int
	MaxYear int
	Match   pipeline.GenreMatch
}

// Request holds optional filter control values. A nil year falls back to the
// default range, nil Genres selects every genre label and an empty Match
// selects the default mode.
type Request struct {
	MinYear *int
	MaxYear *int
	Genres  []string
	Match   string
}

// Options describes the filter controls offered for the loaded table
type Options struct {
	MinYear        int                   `json:"min_year"`
	MaxYear        int                   `json:"max_year"`
	DefaultMinYear int                   `json:"default_min_year"`
	DefaultMaxYear int                   `json:"default_max_year"`
	Genres         []string              `json:"genres"`
	Matches        []pipeline.GenreMatch `json:"matches"`
	DefaultMatch   pipeline.GenreMatch   `json:"default_match"`
	Total          int                   `json:"total"`
}

// Service owns the loaded table and answers dashboard requests against it.
// It is safe for concurrent use.
type Service struct {
	table    *dataset.Table
	defaults Defaults
}

// NewService creates a dashboard service over an immutable table
func NewService(table *dataset.Table, defaults Defaults) *Service {
	if defaults.Match == "" {
		defaults.Match = pipeline.MatchExploded
	}
	metrics.SetMoviesLoaded(table.Len())
	return &Service{table: table, defaults: defaults}
}

// Table returns the loaded table
func (s *Service) Table() *dataset.Table {
	return s.table
}

// DefaultYears returns the default year range clamped to the observed bounds.
// When the clamped range is empty the full observed range is used.
func (s *Service) DefaultYears() (int, int) {
	lo, hi, ok := s.table.YearBounds()
	if !ok {
		return s.defaults.MinYear, s.defaults.MaxYear
	}

	minYear, maxYear := s.defaults.MinYear, s.defaults.MaxYear
	if minYear < lo {
		minYear = lo
	}
	if maxYear > hi {
		maxYear = hi
	}
	if minYear > maxYear {
		return lo, hi
	}
	return minYear, maxYear
}

// Options returns the filter controls for the loaded table
func (s *Service) Options() Options {
	lo, hi, ok := s.table.YearBounds()
	defMin, defMax := s.DefaultYears()
	if !ok {
		lo, hi = defMin, defMax
	}
	return Options{
		MinYear:        lo,
		MaxYear:        hi,
		DefaultMinYear: defMin,
		DefaultMaxYear: defMax,
		Genres:         s.table.GenreLabels(),
		Matches:        []pipeline.GenreMatch{pipeline.MatchExploded, pipeline.MatchRaw},
		DefaultMatch:   s.defaults.Match,
		Total:          s.table.Len(),
	}
}

// Resolve fills the request's missing values with defaults and validates it
func (s *Service) Resolve(req Request) (pipeline.Params, error) {
	minYear, maxYear := s.DefaultYears()
	if req.MinYear != nil {
		minYear = *req.MinYear
	}
	if req.MaxYear != nil {
		maxYear = *req.MaxYear
	}
	if minYear > maxYear {
		return pipeline.Params{}, fmt.Errorf("%w: %d > %d", ErrInvalidYearRange, minYear, maxYear)
	}

	match := s.defaults.Match
	if req.Match != "" {
		m, err := pipeline.ParseGenreMatch(req.Match)
		if err != nil {
			return pipeline.Params{}, fmt.Errorf("%w: %q", ErrInvalidMatch, req.Match)
		}
		match = m
	}

	genres := req.Genres
	if genres == nil {
		genres = s.table.GenreLabels()
	}

	return pipeline.Params{
		MinYear: minYear,
		MaxYear: maxYear,
		Genres:  genres,
		Match:   match,
	}, nil
}

// Build resolves the request and runs the pipeline
func (s *Service) Build(req Request) (*pipeline.Dashboard, error) {
	p, err := s.Resolve(req)
	if err != nil {
		metrics.RecordError("request")
		return nil, err
	}
	return s.Run(p), nil
}

// Run runs the pipeline with resolved parameters
func (s *Service) Run(p pipeline.Params) *pipeline.Dashboard {
	start := time.Now()
	d := pipeline.Run(s.table, p)
	duration := time.Since(start)

	metrics.RecordPipelineRun("ok", duration)
	log.Debug().
		Int("min_year", p.MinYear).
		Int("max_year", p.MaxYear).
		Int("genres", len(p.Genres)).
		Str("match", string(p.Match)).
		Int("rows", d.Total).
		Dur("duration", duration).
		Msg("Dashboard built")

	return d
}
