package core

import "context"

// Source identifies which path produced an explanation.
type Source string

// Explanation sources.
const (
	SourceRuleBased Source = "rule-based"
	SourceLLM       Source = "llm"
)

// Verdict is the outcome of checking a query against the keyword guard.
type Verdict struct {
	Allowed        bool   `json:"allowed"`
	BlockedKeyword string `json:"blocked_keyword,omitempty"`
}

// Steps is an ordered list of human-readable sentences describing a query.
type Steps []string

// ErrorCategory classifies a database error message.
type ErrorCategory string

// Error categories, checked in this order by the translator.
const (
	CategoryUnknownIdentifier  ErrorCategory = "UNKNOWN_IDENTIFIER"
	CategorySyntaxError        ErrorCategory = "SYNTAX_ERROR"
	CategoryAmbiguousColumn    ErrorCategory = "AMBIGUOUS_COLUMN"
	CategoryForbiddenOperation ErrorCategory = "FORBIDDEN_OPERATION"
	CategoryGeneric            ErrorCategory = "GENERIC"
)

// ErrorExplanation is the structured meaning/reason/fix triple for an error.
type ErrorExplanation struct {
	Category ErrorCategory `json:"category,omitempty"`
	Meaning  []string      `json:"meaning"`
	Reason   []string      `json:"reason"`
	Fix      []string      `json:"fix"`
}

// IsEmpty reports whether every section is empty.
func (e ErrorExplanation) IsEmpty() bool {
	return len(e.Meaning) == 0 && len(e.Reason) == 0 && len(e.Fix) == 0
}

// IsComplete reports whether every section has at least one entry.
func (e ErrorExplanation) IsComplete() bool {
	return len(e.Meaning) > 0 && len(e.Reason) > 0 && len(e.Fix) > 0
}

// Tutor explains queries and database errors in plain language.
// Implementations never fail: they always return a best-effort result
// together with the Source that produced it.
type Tutor interface {
	ExplainQuery(ctx context.Context, query string) (Steps, Source)
	TranslateError(ctx context.Context, message string) (ErrorExplanation, Source)
}
