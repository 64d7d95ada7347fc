package pipeline

import (
	"github.com/user/moviedash-go/internal/dataset"
	"github.com/user/moviedash-go/internal/model"
)

// Row is a filtered record carrying its derived release year
type Row struct {
	model.Movie
	Year int `json:"Year"`
}

// Filter applies the year-range and genre predicates to the table.
// Records without a release date never satisfy the year predicate. An inverted
// range or an empty genre selection yields an empty, non-nil subset.
func Filter(table *dataset.Table, p Params) []Row {
	rows := make([]Row, 0)
	if p.MinYear > p.MaxYear || len(p.Genres) == 0 {
		return rows
	}

	selected := p.genreSet()
	for i := 0; i < table.Len(); i++ {
		m := table.At(i)
		year, ok := m.Year()
		if !ok || year < p.MinYear || year > p.MaxYear {
			continue
		}
		if !matchesGenre(m, selected, p.Match) {
			continue
		}
		rows = append(rows, Row{Movie: *m, Year: year})
	}
	return rows
}

func matchesGenre(m *model.Movie, selected map[string]struct{}, match GenreMatch) bool {
	if match == MatchRaw {
		_, ok := selected[m.Genre]
		return ok
	}
	for _, genre := range m.Genres() {
		if _, ok := selected[genre]; ok {
			return true
		}
	}
	return false
}
