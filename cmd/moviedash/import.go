package main

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"
	"github.com/user/moviedash-go/internal/store"
)

func makeImportCMD() cli.Command {
	return cli.Command{
		Name:   "import",
		Usage:  "Mirrors the cleaned movie table into the database",
		Action: importMovies,
	}
}

func importMovies(c *cli.Context) error {
	cfg, err := prepare(os.Stdout)
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := fetchDataset(ctx, cfg); err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}

	sqlStore, err := store.Open(&cfg.DB)
	if err != nil {
		return err
	}
	defer sqlStore.Close()

	start := time.Now()
	n, err := sqlStore.ReplaceMovies(ctx, table.Movies())
	if err != nil {
		return err
	}

	log.Info().
		Str("driver", cfg.DB.Driver).
		Int("movies", n).
		Dur("duration", time.Since(start)).
		Msg("Movies imported")
	return nil
}
