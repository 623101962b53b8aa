package tutor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlplay/internal/explainer"
	"github.com/leapstack-labs/sqlplay/internal/llm"
	"github.com/leapstack-labs/sqlplay/internal/testutil"
	"github.com/leapstack-labs/sqlplay/internal/translator"
	"github.com/leapstack-labs/sqlplay/pkg/core"
)

type stubCompleter struct{}

func (stubCompleter) Complete(context.Context, llm.Request) (string, error) {
	return "1. step", nil
}

func TestNew_WithoutCompleterIsRuleBased(t *testing.T) {
	tu := New(nil, 0, testutil.NewTestLogger(t))
	assert.IsType(t, RuleBased{}, tu)
}

func TestNew_WithCompleterIsLLM(t *testing.T) {
	tu := New(stubCompleter{}, 0, testutil.NewTestLogger(t))
	assert.IsType(t, &llm.Tutor{}, tu)

	steps, source := tu.ExplainQuery(context.Background(), "SELECT 1")
	assert.Equal(t, core.Steps{"1. step"}, steps)
	assert.Equal(t, core.SourceLLM, source)
}

func TestRuleBased_MatchesComponents(t *testing.T) {
	ctx := context.Background()
	queries := []string{"", "SELECT name FROM students WHERE marks > 80 ORDER BY marks LIMIT 5", "nonsense"}
	messages := []string{"no such column: foo", "syntax error near SELECT", "some unrecognized message"}

	for _, q := range queries {
		steps, source := RuleBased{}.ExplainQuery(ctx, q)
		assert.Equal(t, explainer.Explain(q), steps)
		assert.Equal(t, core.SourceRuleBased, source)
	}
	for _, m := range messages {
		exp, source := RuleBased{}.TranslateError(ctx, m)
		assert.Equal(t, translator.Translate(m), exp)
		assert.Equal(t, core.SourceRuleBased, source)
	}
}
