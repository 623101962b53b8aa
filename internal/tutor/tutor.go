// Package tutor selects how queries and errors are explained: through the
// text-completion service when one is configured, otherwise with the
// deterministic rule-based components.
package tutor

import (
	"context"
	"log/slog"
	"time"

	"github.com/leapstack-labs/sqlplay/internal/explainer"
	"github.com/leapstack-labs/sqlplay/internal/llm"
	"github.com/leapstack-labs/sqlplay/internal/translator"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

// RuleBased explains with the keyword explainer and the error translator.
type RuleBased struct{}

// ExplainQuery returns the rule-based steps for query.
func (RuleBased) ExplainQuery(_ context.Context, query string) (core.Steps, core.Source) {
	return explainer.Explain(query), core.SourceRuleBased
}

// TranslateError returns the rule-based explanation for message.
func (RuleBased) TranslateError(_ context.Context, message string) (core.ErrorExplanation, core.Source) {
	return translator.Translate(message), core.SourceRuleBased
}

// New picks the implementation once at startup. With a nil completer the
// rule-based tutor is returned directly.
func New(completer llm.Completer, timeout time.Duration, logger *slog.Logger) core.Tutor {
	if completer == nil {
		return RuleBased{}
	}
	return llm.NewTutor(completer, RuleBased{}, timeout, logger)
}

var _ core.Tutor = RuleBased{}
