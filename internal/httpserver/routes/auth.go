package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/guide/internal/httpserver/deps"
	"github.com/MrSnakeDoc/guide/internal/httpserver/handlers"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	r.Post("/login", handlers.Login(d))
	r.Post("/logout", handlers.Logout(d))
	r.Get("/me", handlers.Profile(d))
}
