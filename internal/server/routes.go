package server

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codechella/scoreboard/internal/config"
	"github.com/codechella/scoreboard/internal/handler/health"
	"github.com/codechella/scoreboard/internal/scoreboard"
)

func addRoutes(r chi.Router, cfg *config.Config, logger *slog.Logger, hub *scoreboard.Hub) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", handleSwaggerUI())
	r.Mount("/healthz", health.NewHandler(logger, map[string]health.Checker{
		"hub": hub,
	}).Routes())

	// Producer webhooks.
	r.Post("/webhook/update_game", handleUpdateGame(hub, logger))
	r.Post("/webhook/update_sheets", handleUpdateSheets(hub, logger))

	// Reads and live streams.
	r.Get("/api/games/{game}", handleGameSnapshot(hub))
	r.Get("/api/sheets", handleSheetNames(hub))
	r.Get("/api/stats", handleStats(hub))
	r.Get("/events/{game}", handleEvents(hub, logger, orDefault(cfg.SSEPingInterval, 30*time.Second)))

	r.Get("/socket", handleSocket(hub, logger, socketOptions{
		originPatterns: cfg.AllowedOrigins,
		pingInterval:   orDefault(cfg.WSPingInterval, 30*time.Second),
		writeTimeout:   orDefault(cfg.WSWriteTimeout, 3*time.Second),
	}))

	// Pages.
	r.Get("/", handleIndex())
	r.Get("/select_game", handleSelectGame(hub))
	r.Post("/select_game", handleChooseGame())
	r.Get("/scoreboard/{game}", handleScoreboard(hub))
	r.Get("/audio/{file}", handleAudio(cfg.AudioDir))
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
