package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/mw"
)

func init() { Register(registerOps) }

// registerOps mounts the operator endpoints, restricted to AllowedCIDRS.
func registerOps(r chi.Router, d deps.Deps) {
	ops := r.With(mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger))

	ops.Get("/infra", handlers.Infra(d))
	ops.Post("/reload", handlers.Reload(d))
	if d.Metrics != nil {
		ops.Method("GET", "/metrics", d.Metrics.Handler())
	}
}
