package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/igbo-calendar-api/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
//
// Route structure:
//
//	GET    /health
//	GET    /api/v1/moon/{date}
//	GET    /api/v1/new-moon?near=&window=
//	GET    /api/v1/years?from=&count=
//	GET    /api/v1/years/{index}?start=&market=
//	GET    /api/v1/years/{index}/leap
//	GET    /api/v1/locate/{date}
//	GET    /api/v1/today
//	GET    /api/v1/admin/seeds          (API key)
//	PUT    /api/v1/admin/seeds/{index}  (API key)
//	DELETE /api/v1/admin/seeds/{index}  (API key)
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(baseMiddleware(logger)...)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", "METHOD_NOT_ALLOWED")
	})

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/moon/{date}", handlers.GetMoon)
		r.Get("/new-moon", handlers.GetNewMoon)

		r.Get("/years", handlers.GetYears)
		r.Get("/years/{index}", handlers.GetYear)
		r.Get("/years/{index}/leap", handlers.GetLeap)

		r.Get("/locate/{date}", handlers.GetLocate)
		r.Get("/today", handlers.GetToday)

		// ======================================================================
		// Admin routes (API key)
		// ======================================================================
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(cfg, logger))

			r.Get("/seeds", handlers.ListSeeds)
			r.Put("/seeds/{index}", handlers.PutSeed)
			r.Delete("/seeds/{index}", handlers.DeleteSeed)
		})
	})

	return r
}
