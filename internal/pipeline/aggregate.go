package pipeline

import (
	"sort"

	"github.com/user/moviedash-go/internal/dataset"
)

const (
	// TopGenresLimit caps the global genre counts table
	TopGenresLimit = 15
	// TopMoviesLimit caps the top rated and most popular tables
	TopMoviesLimit = 10
	// MinVotesExclusive is the vote count a movie must exceed for TopByRating
	MinVotesExclusive = 10
	// HistogramBins is the number of equal-width rating bins
	HistogramBins = 20
)

// GenreCount is a genre label with its number of records
type GenreCount struct {
	Genre string `json:"Genre"`
	Count int    `json:"Count"`
}

// YearlyRating is the mean vote average of a release year
type YearlyRating struct {
	Year        int     `json:"Year"`
	VoteAverage float64 `json:"Vote_Average"`
}

// YearCount is the number of records released in a year
type YearCount struct {
	Year  int `json:"Year"`
	Count int `json:"Count"`
}

// RatedMovie is a TopByRating entry
type RatedMovie struct {
	Title       string  `json:"Title"`
	VoteAverage float64 `json:"Vote_Average"`
	VoteCount   int64   `json:"Vote_Count"`
}

// labelCounter counts labels and remembers first appearance for tie-breaking
type labelCounter struct {
	index  map[string]int
	counts []GenreCount
}

func newLabelCounter() *labelCounter {
	return &labelCounter{index: make(map[string]int), counts: make([]GenreCount, 0)}
}

func (c *labelCounter) add(label string) {
	if i, ok := c.index[label]; ok {
		c.counts[i].Count++
		return
	}
	c.index[label] = len(c.counts)
	c.counts = append(c.counts, GenreCount{Genre: label, Count: 1})
}

// sorted returns counts by descending count, ties in first-appearance order
func (c *labelCounter) sorted() []GenreCount {
	sort.SliceStable(c.counts, func(i, j int) bool {
		return c.counts[i].Count > c.counts[j].Count
	})
	return c.counts
}

// GenreCounts counts records per raw genre string over the full table and
// returns the top limit entries.
func GenreCounts(table *dataset.Table, limit int) []GenreCount {
	counter := newLabelCounter()
	for i := 0; i < table.Len(); i++ {
		counter.add(table.At(i).Genre)
	}
	return head(counter.sorted(), limit)
}

// TopRated returns the first n rows by descending vote average
func TopRated(rows []Row, n int) []Row {
	return topBy(rows, n, func(r *Row) float64 { return r.VoteAverage })
}

// MostPopular returns the first n rows by descending popularity
func MostPopular(rows []Row, n int) []Row {
	return topBy(rows, n, func(r *Row) float64 { return r.Popularity })
}

func topBy(rows []Row, n int, key func(r *Row) float64) []Row {
	sorted := make([]Row, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return key(&sorted[i]) > key(&sorted[j])
	})
	return head(sorted, n)
}

// YearlyAverage returns the mean vote average per year in ascending year order
func YearlyAverage(rows []Row) []YearlyRating {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for i := range rows {
		sums[rows[i].Year] += rows[i].VoteAverage
		counts[rows[i].Year]++
	}

	out := make([]YearlyRating, 0, len(counts))
	for _, year := range sortedYears(counts) {
		out = append(out, YearlyRating{Year: year, VoteAverage: sums[year] / float64(counts[year])})
	}
	return out
}

// GenreDistribution counts exploded genres over the rows, descending by count
func GenreDistribution(rows []Row) []GenreCount {
	counter := newLabelCounter()
	for i := range rows {
		for _, genre := range rows[i].Genres() {
			counter.add(genre)
		}
	}
	return counter.sorted()
}

// TopByRating returns the first n rows by descending vote average among rows
// with a title and more than minVotes votes.
func TopByRating(rows []Row, minVotes int64, n int) []RatedMovie {
	eligible := make([]Row, 0, len(rows))
	for i := range rows {
		if rows[i].Title == "" || rows[i].VoteCount <= minVotes {
			continue
		}
		eligible = append(eligible, rows[i])
	}

	top := TopRated(eligible, n)
	out := make([]RatedMovie, 0, len(top))
	for i := range top {
		out = append(out, RatedMovie{
			Title:       top[i].Title,
			VoteAverage: top[i].VoteAverage,
			VoteCount:   top[i].VoteCount,
		})
	}
	return out
}

// MoviesPerYear counts rows per year in ascending year order
func MoviesPerYear(rows []Row) []YearCount {
	counts := make(map[int]int)
	for i := range rows {
		counts[rows[i].Year]++
	}

	out := make([]YearCount, 0, len(counts))
	for _, year := range sortedYears(counts) {
		out = append(out, YearCount{Year: year, Count: counts[year]})
	}
	return out
}

func sortedYears(counts map[int]int) []int {
	years := make([]int, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Ints(years)
	return years
}

func head[T any](items []T, n int) []T {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
