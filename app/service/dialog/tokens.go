package dialog

import "unicode/utf8"

const charsPerToken = 4

// EstimateTokens approximates the model cost of text as ceil(chars/4).
// It is a heuristic, not a tokenizer.
func EstimateTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}

	return (n + charsPerToken - 1) / charsPerToken
}

func EstimateLines(lines []string) int {
	total := 0
	for _, line := range lines {
		total += EstimateTokens(line)
	}

	return total
}
