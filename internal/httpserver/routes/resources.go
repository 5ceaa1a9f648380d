package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/httpserver/handlers"
)

func init() { Register(registerResources) }

func registerResources(r chi.Router, d deps.Deps) {
	r.Route("/resources", func(r chi.Router) {
		r.Post("/", handlers.Submit(d))
		r.Get("/{id}", handlers.GetResource(d))
		r.Patch("/{id}/tags", handlers.UpdateTags(d))
		r.Post("/{id}/vote", handlers.Vote(d))
		r.Delete("/{id}", handlers.Remove(d))
		r.Put("/{id}/bookmark", handlers.Bookmark(d))
		r.Delete("/{id}/bookmark", handlers.Unbookmark(d))
	})
}
