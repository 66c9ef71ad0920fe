package conversation

import (
	_ "embed"
	"strings"
)

//go:embed prompt_template.txt
var promptTemplate string

// buildPrompt renders the single prompt sent to the model. An empty context
// leaves only the blank line after the system prompt.
func buildPrompt(systemPrompt, context, grounding, query, assistantName string) string {
	if context != "" {
		context += "\n"
	}

	replacer := strings.NewReplacer(
		"{system}", systemPrompt,
		"{context}", context,
		"{grounding}", grounding,
		"{query}", query,
		"{name}", assistantName,
	)

	return replacer.Replace(strings.TrimSuffix(promptTemplate, "\n"))
}
