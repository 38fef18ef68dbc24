package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexanderramin/shiftdash/internal/api"
	"github.com/alexanderramin/shiftdash/internal/cli"
	"github.com/alexanderramin/shiftdash/internal/config"
	"github.com/alexanderramin/shiftdash/internal/db"
	"github.com/alexanderramin/shiftdash/internal/logging"
	"github.com/alexanderramin/shiftdash/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logging.New(os.Stderr, cfg.LogLevel)

	// Open the local session database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return errors.Wrap(err, "opening database")
	}
	defer database.Close()

	clock := clockwork.NewRealClock()
	sessions := session.NewStore(database, clock)

	// Wire API observability
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	observers := api.MultiObserver{api.NewMetricsObserver(registry)}
	if cfg.LogCalls {
		observers = append(observers, api.NewLogObserver(log))
	}

	app := &cli.App{
		API:      api.NewClient(cfg.API(), sessions, observers),
		Sessions: sessions,
		Config:   cfg,
		Log:      log,
		Clock:    clock,
		Metrics:  registry,
	}

	// Only a terminal gets the dashboard when no subcommand is given.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
