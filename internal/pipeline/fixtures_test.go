package pipeline

import (
	"fmt"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/user/moviedash-go/internal/dataset"
	"github.com/user/moviedash-go/internal/model"
)

var rawGenres = []string{
	"Action",
	"Drama",
	"Action, Drama",
	"Comedy, Drama, Romance",
	"Horror",
	"Science Fiction, Action",
}

var genreLabels = []string{"Action", "Comedy", "Drama", "Horror", "Romance", "Science Fiction"}

// movie builds a record; year 0 means no release date
func movie(title, genre string, year int, voteAverage, popularity float64, voteCount int64) model.Movie {
	m := model.Movie{
		Title:            title,
		Overview:         "Overview of " + title,
		Popularity:       popularity,
		VoteCount:        voteCount,
		VoteAverage:      voteAverage,
		OriginalLanguage: "en",
		Genre:            genre,
	}
	if year != 0 {
		d := time.Date(year, time.June, 1, 0, 0, 0, 0, time.UTC)
		m.ReleaseDate = &d
	}
	return m
}

func table(movies ...model.Movie) *dataset.Table {
	return dataset.NewTable(movies)
}

// genMovie generates records spread over 1990-2024, some without a release date
func genMovie() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 1_000_000),
		gen.IntRange(1990, 2024),
		gen.Bool(),
		gen.IntRange(0, len(rawGenres)-1),
		gen.Float64Range(0, 10),
		gen.Float64Range(0, 5000),
		gen.Int64Range(0, 20000),
	).Map(func(values []interface{}) model.Movie {
		year := values[1].(int)
		if !values[2].(bool) {
			year = 0
		}
		return movie(
			fmt.Sprintf("Movie %d", values[0].(int)),
			rawGenres[values[3].(int)],
			year,
			values[4].(float64),
			values[5].(float64),
			values[6].(int64),
		)
	})
}

func genMovies() gopter.Gen {
	return gen.SliceOf(genMovie())
}

// genYearRange generates a valid [a, b] interval
func genYearRange() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(1985, 2030),
		gen.IntRange(0, 20),
	).Map(func(values []interface{}) [2]int {
		a := values[0].(int)
		return [2]int{a, a + values[1].(int)}
	})
}

func genSelection(options []string) gopter.Gen {
	return gen.SliceOf(gen.IntRange(0, len(options)-1).Map(func(i int) string {
		return options[i]
	}))
}
