// Package datasets serves the dataset catalog, previews and CSV uploads.
package datasets

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
)

// SetupRoutes registers the datasets feature routes.
func SetupRoutes(
	router chi.Router,
	eng *engine.Engine,
	notify *notifier.Notifier,
	maxUploadBytes int64,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(eng, notify, maxUploadBytes, logger)

	router.Get("/sample-datasets", handlers.SampleDatasets)
	router.Post("/upload-dataset", handlers.UploadDataset)

	router.Route("/datasets", func(r chi.Router) {
		r.Get("/", handlers.ListDatasets)
		r.Get("/{id}", handlers.GetDataset)
		r.Get("/{id}/data", handlers.PreviewDataset)
	})

	router.Get("/api/datasets/updates", handlers.UpdatesSSE)

	return nil
}
