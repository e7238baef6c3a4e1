package main

import (
	"log"

	"github.com/MrSnakeDoc/scoreboard/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		log.Fatalf("❌ scoreboard failed to initialize: %v", err)
	}
	if err := a.Run(); err != nil {
		log.Fatalf("❌ scoreboard failed: %v", err)
	}
}
