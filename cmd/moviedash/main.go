package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"
)

// Version is set at build time
var Version = "dev"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Caller().Logger()

	app := cli.NewApp()
	app.Name = "moviedash"
	app.Usage = "Filters and aggregates a movie table into dashboard tables"
	app.Version = Version
	configure(app)

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Msg("Command failed")
	}
}

func configure(app *cli.App) {
	app.Commands = []cli.Command{
		makeServeCMD(),
		makeSummaryCMD(),
		makeImportCMD(),
		makeFetchCMD(),
	}
}
