package dialog

import (
	"unicode/utf8"

	"github.com/elliotchance/pie/v2"
)

type Stats struct {
	Messages            int `json:"messages"`
	UserMessages        int `json:"user_messages"`
	Tokens              int `json:"tokens"`
	Characters          int `json:"characters"`
	AvgTokensPerMessage int `json:"avg_tokens_per_message"`
	SummaryLength       int `json:"summary_length"`
}

func computeStats(utterances []Utterance, assistantName, summary string) Stats {
	lines := FormatLines(utterances, assistantName)

	users := pie.Filter(utterances, func(u Utterance) bool {
		return u.speaker == SpeakerUser
	})

	stats := Stats{
		Messages:      len(lines),
		UserMessages:  len(users),
		Tokens:        EstimateLines(lines),
		SummaryLength: utf8.RuneCountInString(summary),
	}

	for _, line := range lines {
		stats.Characters += utf8.RuneCountInString(line)
	}

	if stats.Messages > 0 {
		stats.AvgTokensPerMessage = stats.Tokens / stats.Messages
	}

	return stats
}
