package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/scoreboard/internal/httpserver/deps"
)

// Registrar mounts one group of routes.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register adds a registrar. Route files call it from init().
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// RegisterAll mounts every registered route. Called once from server.New().
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
