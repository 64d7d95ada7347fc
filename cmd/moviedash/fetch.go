package main

import (
	"context"
	"errors"
	"os"

	"github.com/urfave/cli"
)

const (
	urlFlag  = "url"
	destFlag = "dest"
)

func makeFetchCMD() cli.Command {
	return cli.Command{
		Name:  "fetch",
		Usage: "Downloads the dataset from DATA_URL to DATA_PATH",
		Flags: []cli.Flag{
			cli.StringFlag{Name: urlFlag, Usage: "dataset or index page url, overrides DATA_URL"},
			cli.StringFlag{Name: destFlag, Usage: "destination file, overrides DATA_PATH"},
		},
		Action: fetch,
	}
}

func fetch(c *cli.Context) error {
	cfg, err := prepare(os.Stdout)
	if err != nil {
		return err
	}
	if c.IsSet(urlFlag) {
		cfg.Data.URL = c.String(urlFlag)
	}
	if c.IsSet(destFlag) {
		cfg.Data.Path = c.String(destFlag)
	}
	if cfg.Data.URL == "" {
		return errors.New("no dataset url, set DATA_URL or --url")
	}

	if err := download(context.Background(), cfg); err != nil {
		return err
	}

	// the download must load as a movie table
	_, err = loadTable(cfg)
	return err
}
