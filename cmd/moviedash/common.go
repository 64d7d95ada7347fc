package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/user/moviedash-go/internal/config"
	"github.com/user/moviedash-go/internal/dashboard"
	"github.com/user/moviedash-go/internal/dataset"
	"github.com/user/moviedash-go/internal/fetcher"
	"github.com/user/moviedash-go/internal/pipeline"
)

// prepare loads and validates the configuration and sets up logging to w
func prepare(w io.Writer) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Log.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(w).With().Timestamp().Caller().Logger()

	log.Debug().Msg("Configuration loaded successfully")
	return cfg, nil
}

// fetchDataset downloads DATA_URL to DATA_PATH when a URL is configured.
// An existing local file is kept when the download fails.
func fetchDataset(ctx context.Context, cfg *config.Config) error {
	if cfg.Data.URL == "" {
		return nil
	}

	err := download(ctx, cfg)
	if err != nil {
		if _, statErr := os.Stat(cfg.Data.Path); statErr == nil {
			log.Warn().Err(err).Str("path", cfg.Data.Path).Msg("Dataset download failed, using existing file")
			return nil
		}
	}
	return err
}

// download fetches DATA_URL to DATA_PATH
func download(ctx context.Context, cfg *config.Config) error {
	f, err := fetcher.NewHTTPFetcher(&cfg.Fetch)
	if err != nil {
		return err
	}

	result, err := f.Fetch(ctx, cfg.Data.URL, cfg.Data.Path)
	if err != nil {
		return err
	}

	log.Info().
		Str("url", result.URL).
		Str("path", result.Path).
		Int64("bytes", result.Bytes).
		Dur("duration", result.Duration).
		Msg("Dataset downloaded")
	return nil
}

// loadTable reads and cleans DATA_PATH
func loadTable(cfg *config.Config) (*dataset.Table, error) {
	table, err := dataset.Load(cfg.Data.Path, dataset.WithDelimiter(cfg.Data.DelimiterRune()))
	if err != nil {
		return nil, err
	}

	stats := table.Stats()
	minYear, maxYear, _ := table.YearBounds()
	log.Info().
		Str("path", cfg.Data.Path).
		Int("rows_read", stats.RowsRead).
		Int("rows_dropped", stats.RowsDropped).
		Int("null_dates", stats.NullDates).
		Int("movies", table.Len()).
		Int("min_year", minYear).
		Int("max_year", maxYear).
		Int("genres", len(table.GenreLabels())).
		Msg("Dataset loaded")
	return table, nil
}

func newDashboards(cfg *config.Config, table *dataset.Table) *dashboard.Service {
	return dashboard.NewService(table, dashboard.Defaults{
		MinYear: cfg.Filter.DefaultMinYear,
		MaxYear: cfg.Filter.DefaultMaxYear,
		Match:   pipeline.GenreMatch(cfg.Filter.GenreMatch),
	})
}
