package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

// handleEvents streams one game's score updates as Server-Sent Events,
// starting with the current snapshot.
func handleEvents(hub *scoreboard.Hub, logger *slog.Logger, pingInterval time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		game := chi.URLParam(r, "game")

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		sess, err := hub.NewSession()
		if err != nil {
			writeError(w, http.StatusServiceUnavailable, "server shutting down")
			return
		}
		defer sess.Close()

		if err := sess.Join(game); err != nil {
			var subErr *scoreboard.SubscriptionError
			if errors.As(err, &subErr) {
				writeError(w, http.StatusBadRequest, subErr.Reason)
				return
			}
			logger.Error("sse join failed", "game", game, "error", err)
			writeError(w, http.StatusServiceUnavailable, "could not subscribe")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		ping := time.NewTicker(pingInterval)
		defer ping.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-sess.Done():
				return
			case ev := <-sess.Outbox():
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
				flusher.Flush()
			case <-ping.C:
				fmt.Fprintf(w, ": ping\n\n")
				flusher.Flush()
			}
		}
	}
}
