package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

// UpdateGameRequest documents the body of POST /webhook/update_game. The
// numeric fields accept any JSON value and are stored as its text.
type UpdateGameRequest struct {
	Game         string `json:"game" required:"true" minLength:"1"`
	Team1Balance any    `json:"team1_balance,omitempty" description:"Stored as text, \"0\" when absent."`
	Team2Balance any    `json:"team2_balance,omitempty" description:"Stored as text, \"0\" when absent."`
	Team1Tickets any    `json:"team1_tickets,omitempty" description:"Stored as text, \"0\" when absent."`
	Team2Tickets any    `json:"team2_tickets,omitempty" description:"Stored as text, \"0\" when absent."`
}

// UpdateSheetsRequest documents the body of POST /webhook/update_sheets.
type UpdateSheetsRequest struct {
	SheetNames []string `json:"sheet_names"`
}

// StatusResponse acknowledges a webhook call.
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func handleUpdateGame(hub *scoreboard.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWebhook(w, r, logger)

		body, err := readBody(w, r)
		if err != nil {
			writeBodyError(w, err)
			return
		}

		st, err := scoreboard.DecodeUpdate(body)
		if err == nil {
			st, err = hub.ApplyUpdate(st)
		}
		if err != nil {
			writeIngestError(w, r, logger, err)
			return
		}

		writeJSON(w, http.StatusOK, StatusResponse{
			Status:  "success",
			Message: fmt.Sprintf("Game %s updated", st.Game),
		})
	}
}

func handleUpdateSheets(hub *scoreboard.Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer recoverWebhook(w, r, logger)

		body, err := readBody(w, r)
		if err != nil {
			writeBodyError(w, err)
			return
		}

		names, err := scoreboard.DecodeCatalog(body)
		if err != nil {
			writeIngestError(w, r, logger, err)
			return
		}
		hub.ApplyCatalog(names)

		writeJSON(w, http.StatusOK, StatusResponse{
			Status:  "success",
			Message: fmt.Sprintf("Updated %d sheet names", len(names)),
		})
	}
}

func writeIngestError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var vErr *scoreboard.ValidationError
	if errors.As(err, &vErr) {
		writeError(w, http.StatusBadRequest, vErr.Reason)
		return
	}
	logger.Error("webhook failed", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeBodyError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	writeError(w, http.StatusBadRequest, "could not read request body")
}

// recoverWebhook turns a panic into the JSON 500 webhook callers expect.
func recoverWebhook(w http.ResponseWriter, r *http.Request, logger *slog.Logger) {
	rec := recover()
	if rec == nil {
		return
	}
	if rec == http.ErrAbortHandler {
		panic(rec)
	}
	logger.Error("webhook panic", "path", r.URL.Path, "panic", fmt.Sprint(rec))
	writeError(w, http.StatusInternalServerError, "internal error")
}
