package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"nhooyr.io/websocket"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

type socketOptions struct {
	originPatterns []string
	pingInterval   time.Duration
	writeTimeout   time.Duration
}

var errSessionEnded = errors.New("session ended")

// handleSocket upgrades to a websocket carrying join_game/leave_game from the
// viewer and score_update/score_error back to it. The server pings every
// pingInterval; a viewer that misses a pong, or closes the socket, is
// disconnected.
func handleSocket(hub *scoreboard.Hub, logger *slog.Logger, opts socketOptions) http.HandlerFunc {
	accept := &websocket.AcceptOptions{}
	if anyOrigin(opts.originPatterns) {
		accept.InsecureSkipVerify = true
	} else {
		accept.OriginPatterns = opts.originPatterns
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, accept)
		if err != nil {
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		sess, err := hub.NewSession()
		if err != nil {
			conn.Close(websocket.StatusTryAgainLater, "server shutting down")
			return
		}
		defer sess.Close()

		log := logger.With("session", sess.ID(), "remote", r.RemoteAddr)
		log.Debug("websocket connected")

		g, ctx := errgroup.WithContext(r.Context())
		g.Go(func() error { return readFrames(ctx, conn, sess, log) })
		g.Go(func() error { return writeEvents(ctx, conn, sess, opts) })

		err = g.Wait()
		log.Debug("websocket closed", "reason", err)
	}
}

// readFrames also keeps pongs flowing; Ping only completes while a Read is
// in progress.
func readFrames(ctx context.Context, conn *websocket.Conn, sess *scoreboard.Session, log *slog.Logger) error {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return errSessionEnded
			}
			return err
		}

		if err := sess.Handle(data); err != nil {
			if errors.Is(err, scoreboard.ErrSessionClosed) || errors.Is(err, scoreboard.ErrHubClosed) {
				return err
			}
			log.Warn("client frame failed", "error", err)
		}
	}
}

func writeEvents(ctx context.Context, conn *websocket.Conn, sess *scoreboard.Session, opts socketOptions) error {
	ping := time.NewTicker(opts.pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sess.Done():
			conn.Close(websocket.StatusGoingAway, "session closed")
			return errSessionEnded
		case ev := <-sess.Outbox():
			frame, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			wctx, cancel := context.WithTimeout(ctx, opts.writeTimeout)
			err = conn.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				return err
			}
		case <-ping.C:
			pctx, cancel := context.WithTimeout(ctx, opts.pingInterval)
			err := conn.Ping(pctx)
			cancel()
			if err != nil {
				return fmt.Errorf("ping: %w", err)
			}
		}
	}
}
