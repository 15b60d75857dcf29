/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. CORS:       Cross-origin requests for the admin frontend

SECURITY NOTE:
  No authentication middleware. Identity/session management is an external
  collaborator; deploy behind one.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/cycles", h.ListCycles)
		r.Get("/employees", h.ListEmployees)

		r.Route("/weeks", func(r chi.Router) {
			r.Get("/{id}", h.GetWeek)
			r.Get("/{id}/coverage", h.GetWeekCoverage)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/import", h.ImportWorkbook)
			r.Post("/cycles", h.BootstrapCycle)
			r.Post("/cycles/{id}/activate", h.ActivateCycle)
			r.Post("/needs/bulk", h.BulkUpsertNeeds)
		})
	})

	return r
}
