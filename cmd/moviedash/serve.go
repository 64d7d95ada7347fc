package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"
	"github.com/user/moviedash-go/internal/bot"
	"github.com/user/moviedash-go/internal/push"
	"github.com/user/moviedash-go/internal/scheduler"
	"github.com/user/moviedash-go/internal/server"
	"github.com/user/moviedash-go/internal/store"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout = 30 * time.Second

	portFlag = "port"
)

func makeServeCMD() cli.Command {
	return cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves the dashboard over HTTP and, with BOT_TOKEN set, Telegram",
		Flags: []cli.Flag{
			cli.IntFlag{
				Name:  portFlag,
				Usage: "http port, overrides SERVER_PORT",
			},
		},
		Action: serve,
	}
}

func serve(c *cli.Context) error {
	cfg, err := prepare(os.Stdout)
	if err != nil {
		return err
	}
	if c.IsSet(portFlag) {
		cfg.Server.Port = c.Int(portFlag)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fetchDataset(ctx, cfg); err != nil {
		return err
	}
	table, err := loadTable(cfg)
	if err != nil {
		return err
	}
	dashboards := newDashboards(cfg, table)

	sqlStore, err := store.Open(&cfg.DB)
	if err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("Database connection established")

	var (
		telegramClient *bot.Client
		sched          *scheduler.Scheduler
	)
	if cfg.Bot.Enabled() {
		telegramClient, err = bot.NewClient(cfg.Bot.Token)
		if err != nil {
			return err
		}
		log.Info().Str("username", telegramClient.Username()).Msg("Telegram client initialized")

		pushService := push.NewService(sqlStore, telegramClient, dashboards, cfg.Digest.RateLimit, cfg.Digest.Interval)
		sched = scheduler.NewScheduler(pushService, &cfg.Digest)
		botHandler := bot.NewHandler(sqlStore, dashboards, telegramClient)

		sched.Start(ctx)

		go func() {
			log.Info().Msg("Starting Telegram bot polling")
			for update := range telegramClient.GetUpdates() {
				botHandler.HandleUpdate(ctx, update)
			}
		}()
	} else {
		log.Info().Msg("BOT_TOKEN not set, Telegram bot disabled")
	}

	httpServer := server.NewServer(sqlStore, dashboards)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		if err := httpServer.Start(cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	log.Info().Int("movies", table.Len()).Msg("Movie dashboard started successfully")

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	log.Info().Msg("Starting graceful shutdown...")

	if sched != nil {
		sched.Stop()
	}
	if telegramClient != nil {
		telegramClient.StopReceivingUpdates()
		log.Info().Msg("Telegram bot polling stopped")
	}

	if err := httpServer.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping HTTP server")
	} else {
		log.Info().Msg("HTTP server stopped")
	}

	if err := sqlStore.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing database connection")
	} else {
		log.Info().Msg("Database connection closed")
	}

	cancel()

	select {
	case <-shutdownCtx.Done():
		if errors.Is(shutdownCtx.Err(), context.DeadlineExceeded) {
			log.Warn().Msg("Shutdown timeout exceeded, forcing exit")
		}
	default:
		log.Info().Msg("Graceful shutdown completed")
	}
	return nil
}
