package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlplay/internal/translator"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// Tutor explains through a Completer and falls back to another Tutor when
// the completer is missing, fails, or yields nothing usable.
type Tutor struct {
	completer Completer
	fallback  core.Tutor
	timeout   time.Duration
	logger    *slog.Logger
}

// NewTutor creates a Tutor. A nil completer makes every call go straight
// to fallback.
func NewTutor(completer Completer, fallback core.Tutor, timeout time.Duration, logger *slog.Logger) *Tutor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Tutor{
		completer: completer,
		fallback:  fallback,
		timeout:   timeout,
		logger:    logger,
	}
}

// Available reports whether a completer is configured.
func (t *Tutor) Available() bool {
	return t.completer != nil
}

// ExplainQuery asks the service for numbered steps.
func (t *Tutor) ExplainQuery(ctx context.Context, query string) (core.Steps, core.Source) {
	if t.completer == nil {
		return t.fallback.ExplainQuery(ctx, query)
	}

	prompt, err := ExplainPrompt(query)
	if err != nil {
		t.logger.Warn("failed to render explain prompt", slog.Any("error", err))
		return t.fallback.ExplainQuery(ctx, query)
	}

	response, err := t.complete(ctx, Request{Prompt: prompt, Temperature: explainTemperature})
	if err != nil {
		t.logger.Warn("explain via completion failed, using rule-based steps", slog.Any("error", err))
		return t.fallback.ExplainQuery(ctx, query)
	}

	steps := ParseSteps(response)
	if len(steps) == 0 {
		t.logger.Debug("completion produced no steps, using rule-based steps")
		return t.fallback.ExplainQuery(ctx, query)
	}
	return steps, core.SourceLLM
}

// TranslateError asks the service for a Meaning/Reason/How to Fix answer.
// Partial answers (any empty section) are discarded in favor of the
// fallback so callers always get all three sections.
func (t *Tutor) TranslateError(ctx context.Context, message string) (core.ErrorExplanation, core.Source) {
	if t.completer == nil {
		return t.fallback.TranslateError(ctx, message)
	}

	prompt, err := ErrorPrompt(message)
	if err != nil {
		t.logger.Warn("failed to render error prompt", slog.Any("error", err))
		return t.fallback.TranslateError(ctx, message)
	}

	response, err := t.complete(ctx, Request{Prompt: prompt, Temperature: translateTemperature})
	if err != nil {
		t.logger.Warn("error translation via completion failed, using rule-based translation", slog.Any("error", err))
		return t.fallback.TranslateError(ctx, message)
	}

	exp := ParseErrorExplanation(response)
	if !exp.IsComplete() {
		t.logger.Debug("completion produced an incomplete explanation, using rule-based translation",
			slog.Int("meaning", len(exp.Meaning)),
			slog.Int("reason", len(exp.Reason)),
			slog.Int("fix", len(exp.Fix)),
		)
		return t.fallback.TranslateError(ctx, message)
	}
	// The completion only writes the sections; the category comes from
	// the same classifier the rule-based path uses.
	exp.Category, _ = translator.Classify(message)
	return exp, core.SourceLLM
}

func (t *Tutor) complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	start := time.Now()
	response, err := t.completer.Complete(ctx, req)
	t.logger.Debug("completion finished", slog.Duration("elapsed", time.Since(start)), slog.Bool("ok", err == nil))
	return response, err
}

var _ core.Tutor = (*Tutor)(nil)
