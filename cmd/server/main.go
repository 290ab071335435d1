package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/codechella/scoreboard/internal/config"
	"github.com/codechella/scoreboard/internal/scoreboard"
	"github.com/codechella/scoreboard/internal/server"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Score hub ---
	hub := scoreboard.NewHub(
		scoreboard.NewStore(),
		scoreboard.NewCatalog(),
		scoreboard.NewRegistry(),
		logger.With("component", "hub"),
		scoreboard.WithOutboxSize(cfg.OutboxSize),
	)

	// --- HTTP Server ---
	srv := server.New(cfg, logger, hub)

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		// Closing the hub ends live streams so Shutdown is not left waiting on them.
		hub.Close()
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}
