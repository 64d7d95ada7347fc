package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/model"
)

// Dataset column names
const (
	ColTitle            = "Title"
	ColOverview         = "Overview"
	ColPopularity       = "Popularity"
	ColVoteCount        = "Vote_Count"
	ColVoteAverage      = "Vote_Average"
	ColOriginalLanguage = "Original_Language"
	ColGenre            = "Genre"
	ColReleaseDate      = "Release_Date"
)

// RequiredColumns must be present in the source file
var RequiredColumns = []string{
	ColTitle, ColOverview, ColPopularity, ColVoteCount,
	ColVoteAverage, ColOriginalLanguage, ColGenre, ColReleaseDate,
}

// ErrMissingColumn is returned when the source lacks a required column
var ErrMissingColumn = errors.New("missing required column")

type loadConfig struct {
	Delimiter   rune
	DateLayouts []string
}

// Option configures Load and Read
type Option func(*loadConfig)

// WithDelimiter sets the field delimiter
func WithDelimiter(delimiter rune) Option {
	return func(c *loadConfig) {
		c.Delimiter = delimiter
	}
}

// WithDateLayouts replaces the accepted release date layouts
func WithDateLayouts(layouts ...string) Option {
	return func(c *loadConfig) {
		c.DateLayouts = layouts
	}
}

// Load reads and cleans the dataset at path
func Load(path string, options ...Option) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	table, err := Read(file, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return table, nil
}

// Read parses and cleans a delimited movie table from r
func Read(r io.Reader, options ...Option) (*Table, error) {
	cfg := &loadConfig{
		Delimiter:   ',',
		DateLayouts: DefaultDateLayouts,
	}
	for _, option := range options {
		option(cfg)
	}

	// Every column stays a string; coercion happens per field below so a bad
	// cell only nulls that cell instead of changing the column type.
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithDelimiter(cfg.Delimiter),
		dataframe.NaNValues(NullMarkers),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", df.Err)
	}

	columns, err := requiredColumns(df)
	if err != nil {
		return nil, err
	}

	movies, stats := clean(columns, df.Nrow(), cfg.DateLayouts)

	table := NewTable(movies)
	table.stats = stats

	log.Info().
		Int("rowsRead", stats.RowsRead).
		Int("rowsDropped", stats.RowsDropped).
		Int("nullDates", stats.NullDates).
		Int("rows", table.Len()).
		Msg("Dataset cleaned")

	return table, nil
}

// column is a string column with its null mask
type column struct {
	values []string
	null   []bool
}

func (c column) get(i int) (string, bool) {
	if c.null[i] {
		return "", false
	}
	value := strings.TrimSpace(c.values[i])
	return value, value != ""
}

func requiredColumns(df dataframe.DataFrame) (map[string]column, error) {
	present := make(map[string]bool)
	for _, name := range df.Names() {
		present[name] = true
	}

	columns := make(map[string]column, len(RequiredColumns))
	for _, name := range RequiredColumns {
		if !present[name] {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		s := df.Col(name)
		if s.Err != nil {
			return nil, fmt.Errorf("failed to read column %s: %w", name, s.Err)
		}
		columns[name] = column{values: s.Records(), null: s.IsNaN()}
	}
	return columns, nil
}

// clean coerces typed fields and drops rows with a null required field.
// Records are appended contiguously, which gives the dense row index.
func clean(columns map[string]column, rows int, layouts []string) ([]model.Movie, Stats) {
	stats := Stats{RowsRead: rows}
	movies := make([]model.Movie, 0, rows)

	for i := 0; i < rows; i++ {
		title, okTitle := columns[ColTitle].get(i)
		overview, okOverview := columns[ColOverview].get(i)
		language, okLanguage := columns[ColOriginalLanguage].get(i)
		genre, okGenre := columns[ColGenre].get(i)

		rawPopularity, _ := columns[ColPopularity].get(i)
		popularity, okPopularity := parseFloat(rawPopularity)
		okPopularity = okPopularity && popularity >= 0

		rawCount, _ := columns[ColVoteCount].get(i)
		voteCount, okCount := parseCount(rawCount)

		rawAverage, _ := columns[ColVoteAverage].get(i)
		voteAverage, okAverage := parseFloat(rawAverage)

		if !(okTitle && okOverview && okLanguage && okGenre && okPopularity && okCount && okAverage) {
			stats.RowsDropped++
			continue
		}

		rawDate, _ := columns[ColReleaseDate].get(i)
		releaseDate := parseDate(rawDate, layouts)
		if releaseDate == nil {
			stats.NullDates++
		}

		movies = append(movies, model.Movie{
			Title:            title,
			Overview:         overview,
			Popularity:       popularity,
			VoteCount:        voteCount,
			VoteAverage:      voteAverage,
			OriginalLanguage: language,
			Genre:            genre,
			ReleaseDate:      releaseDate,
		})
	}

	return movies, stats
}
