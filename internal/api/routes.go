package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	Auth      *AuthHandler
	Memories  *MemoryHandler
	Reminders *ReminderHandler
	Users     *UserHandler
}

// RegisterRoutes mounts every /api route on r. authenticate guards all
// routes except health, register and login.
func RegisterRoutes(r chi.Router, h Handlers, authenticate func(http.Handler) http.Handler) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", Health)

		// Authentication endpoints (public)
		r.Post("/auth/register", h.Auth.Register)
		r.Post("/auth/login", h.Auth.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/refresh", h.Auth.Refresh)

			r.Route("/memories", func(r chi.Router) {
				r.Get("/", h.Memories.List)
				r.Post("/", h.Memories.Create)
				r.Get("/stats", h.Memories.Stats)
				r.Get("/{id}", h.Memories.Get)
				r.Put("/{id}", h.Memories.Update)
				r.Delete("/{id}", h.Memories.Delete)
				r.Post("/{id}/insights", h.Memories.Insights)
			})

			r.Route("/reminders", func(r chi.Router) {
				r.Get("/", h.Reminders.List)
				r.Post("/", h.Reminders.Create)
				r.Get("/upcoming", h.Reminders.Upcoming)
				r.Get("/overdue", h.Reminders.Overdue)
				r.Get("/{id}", h.Reminders.Get)
				r.Put("/{id}", h.Reminders.Update)
				r.Delete("/{id}", h.Reminders.Delete)
				r.Post("/{id}/complete", h.Reminders.Complete)
				r.Post("/{id}/uncomplete", h.Reminders.Uncomplete)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/profile", h.Users.Profile)
				r.Put("/profile", h.Users.UpdateProfile)
				r.Post("/change-password", h.Users.ChangePassword)
				r.Get("/subscription", h.Users.Subscription)
				r.Post("/subscription/upgrade", h.Users.Upgrade)
				r.Post("/subscription/downgrade", h.Users.Downgrade)
				r.Get("/dashboard", h.Users.Dashboard)
				r.Post("/deactivate", h.Users.Deactivate)
			})
		})
	})
}
