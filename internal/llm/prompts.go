package llm

import (
	"strings"
	"text/template"
)

// Temperatures used for each mode.
const (
	explainTemperature   float32 = 0.2
	translateTemperature float32 = 0.1
)

var explainPrompt = template.Must(template.New("explain").Parse(`
You are a friendly SQL tutor for beginners.

Explain the following SQL query step-by-step in very simple language.
Do NOT use complex database terms.
Explain in the logical order SQL executes.

SQL Query:
{{.}}

Return the explanation as numbered steps.
`))

var errorPrompt = template.Must(template.New("error").Parse(`
You are a friendly SQL tutor helping beginners.

A student ran a SQL query and got the following database error:

"{{.}}"

Your job:
1. Explain what this error means in very simple language.
2. Explain why this error happened.
3. Give a clear suggestion on how to fix it.

Rules:
- Do NOT use complex database jargon.
- Do NOT mention internal database details.
- Keep the explanation short and beginner-friendly.
- Use bullet points.

Respond in this format:

Meaning:
- ...

Reason:
- ...

How to Fix:
- ...
`))

// ExplainPrompt renders the step-by-step explanation prompt for query.
func ExplainPrompt(query string) (string, error) {
	return render(explainPrompt, query)
}

// ErrorPrompt renders the error translation prompt for message.
func ErrorPrompt(message string) (string, error) {
	return render(errorPrompt, message)
}

func render(t *template.Template, input string) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, input); err != nil {
		return "", err
	}
	return sb.String(), nil
}
