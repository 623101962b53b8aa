// Package playground serves the browser editor. Requests carry the editor
// state as datastar signals and results are streamed back as signal patches.
package playground

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/sqlplay/internal/engine"
)

// SetupRoutes registers the playground feature routes.
func SetupRoutes(router chi.Router, eng *engine.Engine, logger *slog.Logger) error {
	handlers := NewHandlers(eng, logger)

	router.Route("/api/playground", func(r chi.Router) {
		r.Post("/run", handlers.RunSSE)
		r.Post("/explain", handlers.ExplainSSE)
		r.Get("/datasets/{id}", handlers.PreviewSSE)
	})

	return nil
}
