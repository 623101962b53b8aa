package explainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/pkg/core"
)

func sentence(t *testing.T, keyword string) string {
	t.Helper()
	for _, m := range Markers {
		if m.Keyword == keyword {
			return m.Sentence
		}
	}
	t.Fatalf("no marker for %s", keyword)
	return ""
}

func TestExplain_FullQuery(t *testing.T) {
	steps := Explain("SELECT name FROM students WHERE marks > 80 ORDER BY marks LIMIT 5")

	want := core.Steps{
		sentence(t, "SELECT"),
		sentence(t, "FROM"),
		sentence(t, "WHERE"),
		sentence(t, "ORDER BY"),
		sentence(t, "LIMIT"),
	}
	assert.Equal(t, want, steps)
	assert.NotContains(t, steps, sentence(t, "GROUP BY"))
}

func TestExplain_OrderIgnoresTokenPosition(t *testing.T) {
	// LIMIT written first, SELECT last
	steps := Explain("limit 3 from t where x select y")

	require.Len(t, steps, 4)
	assert.Equal(t, sentence(t, "SELECT"), steps[0])
	assert.Equal(t, sentence(t, "FROM"), steps[1])
	assert.Equal(t, sentence(t, "WHERE"), steps[2])
	assert.Equal(t, sentence(t, "LIMIT"), steps[3])
}

func TestExplain_GroupBy(t *testing.T) {
	steps := Explain("SELECT department, COUNT(*) FROM employees GROUP BY department ORDER BY department")

	assert.Equal(t, core.Steps{
		sentence(t, "SELECT"),
		sentence(t, "FROM"),
		sentence(t, "ORDER BY"),
		sentence(t, "GROUP BY"),
	}, steps)
}

func TestExplain_Fallback(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "whitespace", query: "   \n\t"},
		{name: "no clause", query: "PRAGMA table_info(students)"},
		{name: "ORDER without BY", query: "order"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, core.Steps{Fallback}, Explain(tt.query))
		})
	}
}

func TestExplain_Deterministic(t *testing.T) {
	q := "select * from students where marks > 50"
	assert.Equal(t, Explain(q), Explain(q))
}

func TestExplain_KeywordInsideLiteral(t *testing.T) {
	// Not a parser: the WHERE inside the literal still counts.
	steps := Explain("SELECT 'somewhere' AS place")
	assert.Equal(t, core.Steps{sentence(t, "SELECT"), sentence(t, "WHERE")}, steps)
}
