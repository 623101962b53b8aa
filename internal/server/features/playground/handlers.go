package playground

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/common"
)

// Handlers provides HTTP handlers for the playground feature.
type Handlers struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{engine: eng, logger: logger}
}

// refusal turns an engine error into the message shown in the editor.
func (h *Handlers) refusal(err error) string {
	status, detail := common.Status(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("playground request failed", slog.String("error", err.Error()))
	}
	return detail
}

// RunSSE runs the editor query and patches the result signals.
func (h *Handlers) RunSSE(w http.ResponseWriter, r *http.Request) {
	// Read signals BEFORE creating SSE (SSE consumes the request body)
	var signals EditorSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.MarshalAndPatchSignals(emptyResult("Failed to read signals: " + err.Error()))
		return
	}

	sse := datastar.NewSSE(w, r)

	res, err := h.engine.Run(r.Context(), signals.SQL)
	if err != nil {
		_ = sse.MarshalAndPatchSignals(emptyResult(h.refusal(err)))
		return
	}

	out := emptyResult("")
	if res.Failed() {
		out.Explanation = res.Error
		out.RawError = res.RawError
		out.Source = res.Source
	} else {
		if res.Columns != nil {
			out.Columns = res.Columns
		}
		if res.Rows != nil {
			out.Rows = res.Rows
		}
		out.RowCount = res.RowCount
		out.Truncated = res.Truncated
	}

	if err := sse.MarshalAndPatchSignals(out); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// ExplainSSE explains the editor query and patches the explanation signals.
func (h *Handlers) ExplainSSE(w http.ResponseWriter, r *http.Request) {
	var signals EditorSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		sse := datastar.NewSSE(w, r)
		_ = sse.MarshalAndPatchSignals(ExplainSignals{Steps: []string{}, Message: "Failed to read signals: " + err.Error()})
		return
	}

	sse := datastar.NewSSE(w, r)

	res, err := h.engine.Explain(r.Context(), signals.SQL)
	if err != nil {
		_ = sse.MarshalAndPatchSignals(ExplainSignals{Steps: []string{}, Message: h.refusal(err)})
		return
	}

	if err := sse.MarshalAndPatchSignals(ExplainSignals{Steps: res.Steps, Method: res.Source}); err != nil {
		_ = sse.ConsoleError(err)
	}
}

// PreviewSSE loads the first rows of a dataset into the result panel.
func (h *Handlers) PreviewSSE(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			sse := datastar.NewSSE(w, r)
			_ = sse.MarshalAndPatchSignals(emptyResult("limit must be a number"))
			return
		}
		limit = n
	}

	sse := datastar.NewSSE(w, r)

	preview, err := h.engine.Preview(r.Context(), chi.URLParam(r, "id"), limit)
	if err != nil {
		_ = sse.MarshalAndPatchSignals(emptyResult(h.refusal(err)))
		return
	}

	out := emptyResult("")
	if preview.Columns != nil {
		out.Columns = preview.Columns
	}
	if preview.Rows != nil {
		out.Rows = preview.Rows
	}
	out.RowCount = len(out.Rows)
	if err := sse.MarshalAndPatchSignals(out); err != nil {
		_ = sse.ConsoleError(err)
	}
}
