package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecmwf/earthkit-time/internal/config"
)

// SetupRoutes configures all HTTP routes and returns the router.
func SetupRoutes(handlers *Handlers, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(RecoveryMiddleware(logger))
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware)

	authWrap := AuthMiddleware(cfg, logger)

	// ==========================================================================
	// Public routes
	// ==========================================================================
	r.Get("/health", handlers.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/presets", handlers.ListPresets)

		r.Route("/sequences/{name}", func(r chi.Router) {
			r.Get("/next", handlers.SeqNext)
			r.Get("/previous", handlers.SeqPrevious)
			r.Get("/nearest", handlers.SeqNearest)
			r.Get("/range", handlers.SeqRange)
			r.Get("/bracket", handlers.SeqBracket)
			r.Get("/calendar.ics", handlers.SeqCalendar)
		})

		r.Route("/climatology", func(r chi.Router) {
			r.Get("/range", handlers.ClimatologyRange)
			r.Get("/mclim", handlers.ClimatologyModelClimate)
		})

		// ======================================================================
		// Mutating routes (API key required outside development)
		// ======================================================================
		r.Group(func(r chi.Router) {
			r.Use(authWrap)
			r.Post("/presets", handlers.CreatePreset)
			r.Delete("/presets/{name}", handlers.DeletePreset)
		})
	})

	return r
}
