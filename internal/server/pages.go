package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/codechella/scoreboard/internal/scoreboard"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, indexPage())
	}
}

func handleSelectGame(hub *scoreboard.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, selectGamePage(hub.SheetNames()))
	}
}

func handleChooseGame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		game := r.FormValue("game")
		if game == "" {
			http.Error(w, "game is required", http.StatusBadRequest)
			return
		}
		http.Redirect(w, r, scoreboardPath(game), http.StatusSeeOther)
	}
}

// handleScoreboard renders the snapshot current at page load. Later updates
// reach the page over the websocket.
func handleScoreboard(hub *scoreboard.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, r, scoreboardPage(hub.Snapshot(chi.URLParam(r, "game"))))
	}
}

func scoreboardPath(game string) string {
	return "/scoreboard/" + url.PathEscape(game)
}

func indexPage() templ.Component {
	return layout("CodeChella Carnival", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<h1>CodeChella Carnival</h1><p><a href="/select_game">Choose a game</a></p>`)
		return err
	}))
}

func selectGamePage(names []string) templ.Component {
	return layout("Select game", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<h1>Select a game</h1>`)
		if len(names) == 0 {
			b.WriteString(`<p>No games available yet.</p>`)
		}
		b.WriteString(`<form method="post" action="/select_game"><select name="game">`)
		for _, name := range names {
			n := templ.EscapeString(name)
			fmt.Fprintf(&b, `<option value="%s">%s</option>`, n, n)
		}
		b.WriteString(`</select><button type="submit">Open scoreboard</button></form>`)
		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func scoreboardPage(st scoreboard.GameState) templ.Component {
	return layout(st.Game, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<main id="scoreboard" data-game="%s">
<h1>%s</h1>
<table>
<tr><th></th><th>Team 1</th><th>Team 2</th></tr>
<tr><th>Balance</th><td id="team1_balance">%s</td><td id="team2_balance">%s</td></tr>
<tr><th>Tickets</th><td id="team1_tickets">%s</td><td id="team2_tickets">%s</td></tr>
</table>
</main>
<script>%s</script>`,
			templ.EscapeString(st.Game),
			templ.EscapeString(st.Game),
			templ.EscapeString(st.Team1Balance),
			templ.EscapeString(st.Team2Balance),
			templ.EscapeString(st.Team1Tickets),
			templ.EscapeString(st.Team2Tickets),
			scoreboardScript,
		)
		return err
	}))
}

const scoreboardScript = `(function () {
  var game = document.getElementById("scoreboard").dataset.game;
  var fields = ["team1_balance", "team2_balance", "team1_tickets", "team2_tickets"];
  function connect() {
    var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/socket");
    ws.onopen = function () { ws.send(JSON.stringify({event: "join_game", data: {game: game}})); };
    ws.onmessage = function (msg) {
      var ev = JSON.parse(msg.data);
      if (ev.event !== "score_update" || ev.data.game !== game) return;
      fields.forEach(function (f) { document.getElementById(f).textContent = ev.data[f]; });
    };
    ws.onclose = function () { setTimeout(connect, 2000); };
  }
  connect();
})();`

func layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>%s</title></head><body>`,
			templ.EscapeString(title)); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
