package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/user/moviedash-go/internal/dataset"
	"github.com/user/moviedash-go/internal/model"
	"github.com/user/moviedash-go/internal/pipeline"
)

func movie(title, genre string, year int) model.Movie {
	m := model.Movie{
		Title:            title,
		Overview:         "Overview",
		Popularity:       float64(year % 100),
		VoteCount:        100,
		VoteAverage:      float64(year%10) + 0.5,
		OriginalLanguage: "en",
		Genre:            genre,
	}
	if year != 0 {
		d := time.Date(year, time.March, 3, 0, 0, 0, 0, time.UTC)
		m.ReleaseDate = &d
	}
	return m
}

func newTestService(movies ...model.Movie) *Service {
	return NewService(dataset.NewTable(movies), Defaults{MinYear: 2010, MaxYear: 2020})
}

func intPtr(v int) *int {
	return &v
}

func TestDefaultYears(t *testing.T) {
	tests := []struct {
		name    string
		years   []int
		wantMin int
		wantMax int
	}{
		{"wider data keeps defaults", []int{2000, 2022}, 2010, 2020},
		{"narrower data clamps", []int{2013, 2016}, 2013, 2016},
		{"clamps low end only", []int{2015, 2023}, 2015, 2020},
		{"data outside defaults uses full range", []int{1990, 1995}, 1990, 1995},
		{"no dated rows keeps defaults", []int{0}, 2010, 2020},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var movies []model.Movie
			for _, year := range tt.years {
				movies = append(movies, movie("M", "Drama", year))
			}
			gotMin, gotMax := newTestService(movies...).DefaultYears()
			if gotMin != tt.wantMin || gotMax != tt.wantMax {
				t.Errorf("DefaultYears() = (%d, %d), want (%d, %d)", gotMin, gotMax, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	svc := newTestService(
		movie("A", "Action, Drama", 2005),
		movie("B", "Comedy", 2018),
	)

	t.Run("defaults", func(t *testing.T) {
		p, err := svc.Resolve(Request{})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.MinYear != 2010 || p.MaxYear != 2018 {
			t.Errorf("years = [%d, %d], want [2010, 2018]", p.MinYear, p.MaxYear)
		}
		if len(p.Genres) != 3 {
			t.Errorf("Genres = %v, want all 3 labels", p.Genres)
		}
		if p.Match != pipeline.MatchExploded {
			t.Errorf("Match = %q, want exploded", p.Match)
		}
	})

	t.Run("explicit values", func(t *testing.T) {
		p, err := svc.Resolve(Request{MinYear: intPtr(2001), MaxYear: intPtr(2003), Genres: []string{"Comedy"}, Match: "raw"})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.MinYear != 2001 || p.MaxYear != 2003 || p.Match != pipeline.MatchRaw {
			t.Errorf("Resolve() = %+v", p)
		}
		if len(p.Genres) != 1 || p.Genres[0] != "Comedy" {
			t.Errorf("Genres = %v, want [Comedy]", p.Genres)
		}
	})

	t.Run("empty genre selection is kept", func(t *testing.T) {
		p, err := svc.Resolve(Request{Genres: []string{}})
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if p.Genres == nil || len(p.Genres) != 0 {
			t.Errorf("Genres = %v, want empty selection", p.Genres)
		}
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := svc.Resolve(Request{MinYear: intPtr(2020), MaxYear: intPtr(2010)})
		if !errors.Is(err, ErrInvalidYearRange) {
			t.Errorf("Resolve() error = %v, want ErrInvalidYearRange", err)
		}
	})

	t.Run("only min beyond default max", func(t *testing.T) {
		_, err := svc.Resolve(Request{MinYear: intPtr(2019)})
		if !errors.Is(err, ErrInvalidYearRange) {
			t.Errorf("Resolve() error = %v, want ErrInvalidYearRange", err)
		}
	})

	t.Run("unknown match", func(t *testing.T) {
		_, err := svc.Resolve(Request{Match: "fuzzy"})
		if !errors.Is(err, ErrInvalidMatch) {
			t.Errorf("Resolve() error = %v, want ErrInvalidMatch", err)
		}
	})
}

func TestResolve_DefaultMatchFromConfig(t *testing.T) {
	svc := NewService(dataset.NewTable(nil), Defaults{MinYear: 2010, MaxYear: 2020, Match: pipeline.MatchRaw})
	p, err := svc.Resolve(Request{})
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if p.Match != pipeline.MatchRaw {
		t.Errorf("Match = %q, want raw", p.Match)
	}
}

func TestOptions(t *testing.T) {
	svc := newTestService(
		movie("A", "Action, Drama", 2005),
		movie("B", "Comedy", 2018),
		movie("C", "Horror", 0),
	)

	opts := svc.Options()
	if opts.MinYear != 2005 || opts.MaxYear != 2018 {
		t.Errorf("bounds = [%d, %d], want [2005, 2018]", opts.MinYear, opts.MaxYear)
	}
	if opts.DefaultMinYear != 2010 || opts.DefaultMaxYear != 2018 {
		t.Errorf("defaults = [%d, %d], want [2010, 2018]", opts.DefaultMinYear, opts.DefaultMaxYear)
	}
	if len(opts.Genres) != 4 || opts.Total != 3 {
		t.Errorf("Genres = %v, Total = %d", opts.Genres, opts.Total)
	}
	if opts.DefaultMatch != pipeline.MatchExploded || len(opts.Matches) != 2 {
		t.Errorf("matches = %v, default %q", opts.Matches, opts.DefaultMatch)
	}
}

func TestBuild(t *testing.T) {
	svc := newTestService(
		movie("A", "Action, Drama", 2012),
		movie("B", "Drama", 2015),
		movie("C", "Comedy", 2021),
	)

	d, err := svc.Build(Request{Genres: []string{"Drama"}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if d.Total != 2 {
		t.Errorf("Total = %d, want 2", d.Total)
	}

	d, err = svc.Build(Request{Genres: []string{"Drama"}, Match: "raw"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if d.Total != 1 || d.Movies[0].Title != "B" {
		t.Errorf("raw Build() = %+v, want only B", d.Movies)
	}

	if _, err := svc.Build(Request{Match: "nope"}); err == nil {
		t.Error("Build() with bad match succeeded")
	}
}
