package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/httpserver/handlers"
)

func init() { Register(registerMeta) }

func registerMeta(r chi.Router, d deps.Deps) {
	r.Get("/meta", handlers.Meta(d))
}
