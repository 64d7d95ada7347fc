package pipeline

import (
	"github.com/user/moviedash-go/internal/dataset"
)

// ReleaseDateLayout formats release dates in the data table
const ReleaseDateLayout = "2006-01-02"

// TableRow is a row of the filtered data table
type TableRow struct {
	Title       string  `json:"Title"`
	Genre       string  `json:"Genre"`
	ReleaseDate string  `json:"Release_Date"`
	VoteAverage float64 `json:"Vote_Average"`
	Popularity  float64 `json:"Popularity"`
}

// Dashboard holds every table produced by one pipeline run
type Dashboard struct {
	Params            Params         `json:"params"`
	Total             int            `json:"total"`
	Movies            []TableRow     `json:"movies"`
	GenreCounts       []GenreCount   `json:"genre_counts"`
	TopRated          []Row          `json:"top_rated"`
	MostPopular       []Row          `json:"most_popular"`
	YearlyAverage     []YearlyRating `json:"yearly_average"`
	GenreDistribution []GenreCount   `json:"genre_distribution"`
	TopByRating       []RatedMovie   `json:"top_by_rating"`
	RatingHistogram   []HistogramBin `json:"rating_histogram"`
	MoviesPerYear     []YearCount    `json:"movies_per_year"`
}

// Run filters the table and computes every aggregation. Each aggregation reads
// only the filtered subset (or the full table for GenreCounts).
func Run(table *dataset.Table, p Params) *Dashboard {
	rows := Filter(table, p)

	return &Dashboard{
		Params:            p,
		Total:             len(rows),
		Movies:            DataTable(rows),
		GenreCounts:       GenreCounts(table, TopGenresLimit),
		TopRated:          TopRated(rows, TopMoviesLimit),
		MostPopular:       MostPopular(rows, TopMoviesLimit),
		YearlyAverage:     YearlyAverage(rows),
		GenreDistribution: GenreDistribution(rows),
		TopByRating:       TopByRating(rows, MinVotesExclusive, TopMoviesLimit),
		RatingHistogram:   RatingHistogram(rows, HistogramBins),
		MoviesPerYear:     MoviesPerYear(rows),
	}
}

// DataTable projects filtered rows onto the data table columns
func DataTable(rows []Row) []TableRow {
	out := make([]TableRow, 0, len(rows))
	for i := range rows {
		var releaseDate string
		if rows[i].ReleaseDate != nil {
			releaseDate = rows[i].ReleaseDate.Format(ReleaseDateLayout)
		}
		out = append(out, TableRow{
			Title:       rows[i].Title,
			Genre:       rows[i].Genre,
			ReleaseDate: releaseDate,
			VoteAverage: rows[i].VoteAverage,
			Popularity:  rows[i].Popularity,
		})
	}
	return out
}
