// Package query runs, explains and exports learner queries over plain
// JSON endpoints.
package query

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/sqlplay/internal/engine"
)

// SetupRoutes registers the query feature routes.
func SetupRoutes(router chi.Router, eng *engine.Engine, logger *slog.Logger) error {
	handlers := NewHandlers(eng, logger)

	router.Post("/run-query", handlers.RunQuery)
	router.Post("/explain-query", handlers.ExplainQuery)
	router.Post("/translate-error", handlers.TranslateError)
	router.Post("/export", handlers.Export)

	return nil
}
