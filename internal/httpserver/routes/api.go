package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scoreboard/internal/auth"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/handlers"
)

func init() { Register(registerAPI) }

// registerAPI mounts the scoring API. Every route needs a bearer token.
func registerAPI(r chi.Router, d deps.Deps) {
	r.Route("/api", func(api chi.Router) {
		api.Use(auth.Require(d.Tokens, d.Logger))

		api.Get("/leaderboard", handlers.Leaderboard(d))
		api.Get("/matrix", handlers.Matrix(d))
		api.Get("/dashboard", handlers.Dashboard(d))
		api.Get("/services", handlers.Services(d))
		api.Get("/team-services/{teamID}/{serviceID}/uptime", handlers.Uptime(d))

		api.Get("/teams", handlers.Teams(d))
		api.Get("/teams/scores", handlers.TeamScores(d))
		api.Get("/teams/{teamID}/scores", handlers.TeamScore(d))
	})
}
