package datasets

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/common"
	"github.com/leapstack-labs/sqlplay/internal/server/notifier"
	"github.com/leapstack-labs/sqlplay/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// DefaultMaxUploadBytes caps an upload when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20

// Handlers provides HTTP handlers for the datasets feature.
type Handlers struct {
	engine         *engine.Engine
	notifier       *notifier.Notifier
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, notify *notifier.Notifier, maxUploadBytes int64, logger *slog.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:         eng,
		notifier:       notify,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// SampleDatasets lists the built-in table names.
func (h *Handlers) SampleDatasets(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, SampleList{Datasets: h.engine.SampleNames()})
}

// ListDatasets returns the whole catalog.
func (h *Handlers) ListDatasets(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, List{Datasets: h.engine.Datasets()})
}

// GetDataset returns one catalog entry.
func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	ds, err := h.engine.Dataset(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, ds)
}

// PreviewDataset returns the first rows of a dataset.
func (h *Handlers) PreviewDataset(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.WriteError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	preview, err := h.engine.Preview(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, preview)
}

// UploadDataset accepts a multipart "file" field holding a CSV.
func (h *Handlers) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
			return
		}
		common.WriteError(w, http.StatusBadRequest, "A CSV file is required in the \"file\" field")
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.engine.Upload(r.Context(), header.Filename, file)
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

// UpdatesSSE streams the catalog to datastar clients whenever an upload
// lands. The current catalog is sent once on connect.
func (h *Handlers) UpdatesSSE(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	updates := h.notifier.Subscribe()
	defer h.notifier.Unsubscribe(updates)

	if err := sse.MarshalAndPatchSignals(h.signals(nil)); err != nil {
		return
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-updates:
			if !ok {
				return
			}
			if err := sse.MarshalAndPatchSignals(h.signals(&ev.Dataset)); err != nil {
				_ = sse.ConsoleError(err)
				return
			}
		}
	}
}

func (h *Handlers) signals(latest *core.Dataset) CatalogSignals {
	s := CatalogSignals{Datasets: h.engine.Datasets()}
	if latest != nil {
		s.LastUpload = latest.TableName
	}
	return s
}
