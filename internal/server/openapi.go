package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
	"github.com/swaggest/swgui/v5emb"

	"github.com/codechella/scoreboard/internal/handler/health"
	"github.com/codechella/scoreboard/internal/scoreboard"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "CodeChella Scoreboard API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Webhook ingestion and live score distribution for carnival games.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Reports whether the score hub is accepting subscribers.")
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Report{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /webhook/update_game
	postGame, _ := r.NewOperationContext(http.MethodPost, "/webhook/update_game")
	postGame.SetSummary("Update game")
	postGame.SetDescription("Replaces the scoreboard of one game and pushes it to that game's subscribers.")
	postGame.AddReqStructure(UpdateGameRequest{})
	postGame.AddRespStructure(StatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGame.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postGame)

	// POST /webhook/update_sheets
	postSheets, _ := r.NewOperationContext(http.MethodPost, "/webhook/update_sheets")
	postSheets.SetSummary("Update sheet names")
	postSheets.SetDescription("Replaces the list of selectable games.")
	postSheets.AddReqStructure(UpdateSheetsRequest{})
	postSheets.AddRespStructure(StatusResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSheets.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSheets.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusInternalServerError))
	_ = r.AddOperation(postSheets)

	// GET /api/games/{game}
	getGame, _ := r.NewOperationContext(http.MethodGet, "/api/games/{game}")
	getGame.SetSummary("Get game snapshot")
	getGame.SetDescription("Returns the current scoreboard of a game; all zeros if it has never been updated.")
	getGame.AddReqStructure(GameRequest{})
	getGame.AddRespStructure(scoreboard.GameState{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getGame)

	// GET /api/sheets
	getSheets, _ := r.NewOperationContext(http.MethodGet, "/api/sheets")
	getSheets.SetSummary("List sheet names")
	getSheets.AddRespStructure(SheetNamesResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getSheets)

	// GET /api/stats
	getStats, _ := r.NewOperationContext(http.MethodGet, "/api/stats")
	getStats.SetSummary("Hub statistics")
	getStats.AddRespStructure(scoreboard.Stats{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(getStats)

	// GET /socket
	getSocket, _ := r.NewOperationContext(http.MethodGet, "/socket")
	getSocket.SetSummary("Live scores (WebSocket)")
	getSocket.SetDescription(`Upgrades to a WebSocket. Frames are {"event": name, "data": {...}}. ` +
		`Send join_game / leave_game with {"game": "..."}; receive score_update and score_error.`)
	getSocket.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getSocket)

	// GET /events/{game}
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/events/{game}")
	getEvents.SetSummary("Live scores (SSE)")
	getEvents.SetDescription("Server-Sent Events stream of score_update events for one game, starting with the current snapshot.")
	getEvents.AddReqStructure(GameRequest{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

func handleSwaggerUI() http.HandlerFunc {
	return v5emb.New("CodeChella Scoreboard API", "/openapi.json", "/docs").ServeHTTP
}
