package grounding

import (
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"
)

const minSearchQueryLength = 10

var conversationalPatterns = []string{
	"how are you", "thank you", "thanks", "okay", "ok", "yes", "no",
	"i see", "got it", "understand", "appreciate", "nice", "good",
	"tell me about yourself", "who are you", "what can you do",
}

var strongKeywords = []string{
	"latest news", "current events", "today's", "right now",
	"weather in", "stock price", "search for", "look up",
	"find information", "google", "recent news",
}

var moderateKeywords = []string{
	"what is", "who is", "where is", "when is", "how to",
	"latest", "news", "current", "price", "website", "tutorial",
}

var knownConcepts = []string{"love", "happiness", "life", "ai", "computer"}

// NeedsInternet decides whether a query is worth a web search.
// Conversational patterns only match whole words.
func NeedsInternet(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))

	if len(q) < minSearchQueryLength {
		return false
	}

	words := " " + strings.Join(strings.Fields(strings.Map(wordRune, q)), " ") + " "
	if pie.Any(conversationalPatterns, func(p string) bool {
		return strings.Contains(words, " "+p+" ")
	}) {
		return false
	}

	if containsAny(q, strongKeywords) {
		return true
	}

	padded := " " + q + " "
	for _, keyword := range moderateKeywords {
		if !strings.HasPrefix(q, keyword) && !strings.Contains(padded, " "+keyword+" ") {
			continue
		}

		if strings.Contains(q, "what is") && containsAny(q, knownConcepts) {
			return false
		}

		return true
	}

	return false
}

func containsAny(s string, patterns []string) bool {
	return pie.Any(patterns, func(p string) bool {
		return strings.Contains(s, p)
	})
}

func wordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' {
		return r
	}

	return ' '
}
