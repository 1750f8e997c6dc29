package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/hirenest/internal/buildinfo"
	"github.com/dmitrijs2005/hirenest/internal/client/cli"
	"github.com/dmitrijs2005/hirenest/internal/client/config"
	"github.com/dmitrijs2005/hirenest/internal/logging"

	_ "modernc.org/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, flush, err := logging.New(cfg.LogBackend, cfg.LogFormat, cfg.LogLevel, os.Stderr)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = flush() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, log)
	if err != nil {
		return err
	}

	log.Debug(ctx, "client started", "api", cfg.APIBaseURL, "db", cfg.DatabaseDSN)
	app.Run(ctx)
	return nil
}
