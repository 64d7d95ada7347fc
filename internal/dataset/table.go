package dataset

import (
	"sort"

	"github.com/user/moviedash-go/internal/model"
)

// Stats describes what the cleaner did with the raw rows
type Stats struct {
	RowsRead    int `json:"rows_read"`
	RowsDropped int `json:"rows_dropped"`
	NullDates   int `json:"null_dates"`
}

// Table is an immutable, cleaned movie table. It is safe for concurrent readers.
type Table struct {
	movies  []model.Movie
	stats   Stats
	minYear int
	maxYear int
	hasYear bool
	genres  []string
}

// NewTable builds a table from cleaned records. The slice is copied so later
// changes by the caller do not leak into the table.
func NewTable(movies []model.Movie) *Table {
	t := &Table{
		movies: make([]model.Movie, len(movies)),
	}
	copy(t.movies, movies)

	seen := make(map[string]struct{})
	for i := range t.movies {
		m := &t.movies[i]
		if year, ok := m.Year(); ok {
			if !t.hasYear || year < t.minYear {
				t.minYear = year
			}
			if !t.hasYear || year > t.maxYear {
				t.maxYear = year
			}
			t.hasYear = true
		}
		for _, genre := range m.Genres() {
			if _, ok := seen[genre]; ok {
				continue
			}
			seen[genre] = struct{}{}
			t.genres = append(t.genres, genre)
		}
	}
	sort.Strings(t.genres)

	return t
}

// Len returns the number of records
func (t *Table) Len() int {
	return len(t.movies)
}

// At returns a pointer to the i-th record. Callers must not modify it.
func (t *Table) At(i int) *model.Movie {
	return &t.movies[i]
}

// Movies returns a copy of all records
func (t *Table) Movies() []model.Movie {
	out := make([]model.Movie, len(t.movies))
	copy(out, t.movies)
	return out
}

// YearBounds returns the observed min and max release year.
// ok is false when no record has a release date.
func (t *Table) YearBounds() (minYear, maxYear int, ok bool) {
	return t.minYear, t.maxYear, t.hasYear
}

// GenreLabels returns the sorted, unique exploded genre labels
func (t *Table) GenreLabels() []string {
	out := make([]string, len(t.genres))
	copy(out, t.genres)
	return out
}

// Stats returns the load statistics
func (t *Table) Stats() Stats {
	return t.stats
}
