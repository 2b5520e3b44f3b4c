package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"taskninja/internal/apiclient"
	"taskninja/internal/config"
	apperrors "taskninja/internal/errors"
	"taskninja/internal/infrastructure"
)

// app carries the shared runtime handed to every subcommand.
type app struct {
	cfg    *config.Config
	paths  *config.Paths
	client *apiclient.Client
	logger *slog.Logger
}

func bootstrap(cmd *cli.Command) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	paths, err := config.NewPaths(cfg.Paths.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create directories: %w", err)
	}

	return &app{
		cfg:    cfg,
		paths:  paths,
		client: apiclient.New(
			apiclient.WithTimeout(cfg.HTTP.Timeout),
			apiclient.WithRetries(cfg.HTTP.Retries, 500*time.Millisecond),
			apiclient.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst),
		),
		logger: logger,
	}, nil
}

// withApp wraps a subcommand action with the shared bootstrap.
func withApp(fn func(ctx context.Context, cmd *cli.Command, a *app) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		a, err := bootstrap(cmd)
		if err != nil {
			return err
		}
		defer infrastructure.CloseLogFile()
		if err := fn(ctx, cmd, a); err != nil {
			return friendlyError(err)
		}
		return nil
	}
}

// friendlyError prefixes coded errors so the cause is visible at a glance.
func friendlyError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return fmt.Errorf("%s: %w", appErr.Code, err)
	}
	return err
}

func main() {
	root := &cli.Command{
		Name:  "taskninja",
		Usage: "Everyday task toolkit: data files, reports, charts, and small utilities",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file",
				Value:   "taskninja.yaml",
				Sources: cli.EnvVars("TASKNINJA_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			calcCmd(),
			todoCmd(),
			guessCmd(),
			convertCmd(),
			clockCmd(),
			datasetCmd(),
			jsonCmd(),
			apiCmd(),
			weatherCmd(),
			currencyCmd(),
			organizeCmd(),
			emailCmd(),
			whatsappCmd(),
			pdfCmd(),
			reportCmd(),
			aggregateCmd(),
			chartCmd(),
			trendCmd(),
			dashboardCmd(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.Run(ctx, os.Args); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
