package main

import (
	"log"

	"github.com/MrSnakeDoc/guide/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ guide failed to start: %v", err)
	}
}
