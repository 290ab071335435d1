package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

// GameRequest carries the {game} path parameter.
type GameRequest struct {
	Game string `path:"game"`
}

// SheetNamesResponse lists the selectable games in producer order.
type SheetNamesResponse struct {
	SheetNames []string `json:"sheet_names"`
}

func handleGameSnapshot(hub *scoreboard.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.Snapshot(chi.URLParam(r, "game")))
	}
}

func handleSheetNames(hub *scoreboard.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, SheetNamesResponse{SheetNames: hub.SheetNames()})
	}
}

func handleStats(hub *scoreboard.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, hub.Stats())
	}
}
