package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

func TestParseSteps(t *testing.T) {
	response := `
1. First the database looks at the students table.

2. Then it keeps rows with marks above 80.
   
3. Finally it shows the names.
`
	assert.Equal(t, core.Steps{
		"1. First the database looks at the students table.",
		"2. Then it keeps rows with marks above 80.",
		"3. Finally it shows the names.",
	}, ParseSteps(response))

	assert.Empty(t, ParseSteps("  \n\n  "))
}

func TestParseErrorExplanation(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     core.ErrorExplanation
	}{
		{
			name: "well formed",
			response: `Meaning:
- The table does not exist.

Reason:
- The name is misspelled.
- Or it was never created.

How to Fix:
- Check the spelling.`,
			want: core.ErrorExplanation{
				Meaning: []string{"The table does not exist."},
				Reason:  []string{"The name is misspelled.", "Or it was never created."},
				Fix:     []string{"Check the spelling."},
			},
		},
		{
			name: "markdown headers and mixed bullets",
			response: `## Meaning
* Something is wrong.
**Reason:**
• A typo.
How To Fix:
-   Fix the typo.`,
			want: core.ErrorExplanation{
				Meaning: []string{"Something is wrong."},
				Reason:  []string{"A typo."},
				Fix:     []string{"Fix the typo."},
			},
		},
		{
			name: "bullets before any header are ignored",
			response: `- stray
Meaning:
plain text line
- kept`,
			want: core.ErrorExplanation{
				Meaning: []string{"kept"},
			},
		},
		{
			name:     "no structure",
			response: "I cannot help with that.",
			want:     core.ErrorExplanation{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseErrorExplanation(tt.response))
		})
	}
}

func TestPrompts(t *testing.T) {
	p, err := ExplainPrompt("SELECT * FROM students")
	assert.NoError(t, err)
	assert.Contains(t, p, "SELECT * FROM students")
	assert.Contains(t, p, "numbered steps")

	p, err = ErrorPrompt("no such table: x")
	assert.NoError(t, err)
	assert.Contains(t, p, `"no such table: x"`)
	assert.Contains(t, p, "How to Fix:")
}
