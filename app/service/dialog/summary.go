package dialog

import "strings"

const (
	summarySeparator   = " | "
	truncationMarker   = "..."
	minQuestionLength  = 11
	maxSentenceLength  = 150
	sentenceTerminator = "."
)

// Summarize condenses evicted utterances into "Q: ..." and "A: ..." fragments,
// oldest first. The result never exceeds maxLength characters.
func Summarize(utterances []Utterance, maxLength int) string {
	if len(utterances) == 0 {
		return ""
	}

	points := make([]string, 0, len(utterances))

	for _, u := range utterances {
		switch u.speaker {
		case SpeakerUser:
			query := strings.TrimSpace(u.text)
			if runeLen(query) >= minQuestionLength {
				points = append(points, "Q: "+query)
			}
		case SpeakerAssistant:
			sentence := firstSentence(strings.TrimSpace(u.text))
			if runeLen(sentence) < maxSentenceLength {
				points = append(points, "A: "+sentence)
			}
		}
	}

	return truncateHead(strings.Join(points, summarySeparator), maxLength)
}

// MergeSummary appends fragment to previous and keeps only the most recent
// limit characters of the result.
func MergeSummary(previous, fragment string, limit int) string {
	var merged string

	switch {
	case fragment == "":
		merged = previous
	case previous == "":
		merged = fragment
	default:
		merged = previous + summarySeparator + fragment
	}

	return keepTail(merged, limit)
}

func firstSentence(text string) string {
	before, _, _ := strings.Cut(text, sentenceTerminator)
	return before + sentenceTerminator
}

func truncateHead(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	if limit <= len(truncationMarker) {
		return string(runes[:limit])
	}

	return string(runes[:limit-len(truncationMarker)]) + truncationMarker
}

func keepTail(s string, limit int) string {
	if limit < 0 {
		limit = 0
	}

	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[len(runes)-limit:])
}

func runeLen(s string) int {
	return len([]rune(s))
}
