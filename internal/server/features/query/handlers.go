package query

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/leapstack-labs/sqlplay/internal/engine"
	"github.com/leapstack-labs/sqlplay/internal/server/features/common"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Handlers provides HTTP handlers for the query feature.
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

// TranslateResponse is the /translate-error response.
type TranslateResponse struct {
	Explanation core.ErrorExplanation `json:"error_explanation"`
	Source      core.Source           `json:"source"`
}

func (h *Handlers) params(w http.ResponseWriter, r *http.Request) (common.Params, bool) {
	p, err := common.ReadParams(r)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return p, true
}

// RunQuery executes the "query" parameter. Engine failures are reported
// with status 200 and an explanation.
func (h *Handlers) RunQuery(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r)
	if !ok {
		return
	}
	res, err := h.engine.Run(r.Context(), p.Get("query"))
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

// ExplainQuery describes the "query" parameter step by step.
func (h *Handlers) ExplainQuery(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r)
	if !ok {
		return
	}
	res, err := h.engine.Explain(r.Context(), p.Get("query"))
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, res)
}

// TranslateError explains the "message" parameter.
func (h *Handlers) TranslateError(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r)
	if !ok {
		return
	}
	msg := p.Get("message")
	if strings.TrimSpace(msg) == "" {
		common.WriteError(w, http.StatusBadRequest, "message must not be empty")
		return
	}
	explanation, source := h.engine.TranslateError(r.Context(), msg)
	common.WriteJSON(w, http.StatusOK, TranslateResponse{Explanation: explanation, Source: source})
}

// Export returns the full result of "query" as a csv attachment or a JSON array.
func (h *Handlers) Export(w http.ResponseWriter, r *http.Request) {
	p, ok := h.params(w, r)
	if !ok {
		return
	}
	res, err := h.engine.Export(r.Context(), p.Get("query"), p.Get("format"))
	if err != nil {
		common.WriteEngineError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(res.Data)))
	if res.Truncated {
		w.Header().Set("X-Result-Truncated", "true")
	}
	if res.ContentType != "application/json" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+res.Filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Data)
}
