package dialog

import (
	"fmt"
	"strings"
)

const summaryPrefixFormat = "[Previous context summary: %s]\n\n"

type Limits struct {
	// Maximum number of utterances kept in the transcript
	MaxHistory int
	// Number of most recent utterances sent verbatim
	RecentCount int
	// Upper bound for context plus grounding tokens
	MaxContextTokens int
	// Tokens reserved when the context has to be trimmed
	SafetyMargin int
	// Cap of the running summary, in characters
	SummaryMaxLength int
	// Cap of a fragment built from the old region during composition
	ComposeSummaryLength int
	// Cap of a fragment built from evicted utterances
	EvictSummaryLength int
}

func DefaultLimits() Limits {
	return Limits{
		MaxHistory:           20,
		RecentCount:          10,
		MaxContextTokens:     2000,
		SafetyMargin:         100,
		SummaryMaxLength:     500,
		ComposeSummaryLength: 300,
		EvictSummaryLength:   200,
	}
}

// WithDefaults replaces non-positive fields with their defaults.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()

	if l.MaxHistory <= 0 {
		l.MaxHistory = d.MaxHistory
	}
	if l.RecentCount <= 0 {
		l.RecentCount = d.RecentCount
	}
	if l.MaxContextTokens <= 0 {
		l.MaxContextTokens = d.MaxContextTokens
	}
	if l.SafetyMargin < 0 {
		l.SafetyMargin = d.SafetyMargin
	}
	if l.SummaryMaxLength <= 0 {
		l.SummaryMaxLength = d.SummaryMaxLength
	}
	if l.ComposeSummaryLength <= 0 {
		l.ComposeSummaryLength = d.ComposeSummaryLength
	}
	if l.EvictSummaryLength <= 0 {
		l.EvictSummaryLength = d.EvictSummaryLength
	}

	return l
}

type ComposeInput struct {
	Transcript    []Utterance
	AssistantName string
	Summary       string
	// Number of oldest transcript utterances already folded into Summary
	Summarized int
	Grounding  string
	Limits     Limits
}

type ComposeResult struct {
	Context         string
	Summary         string
	Summarized      int
	Trimmed         bool
	ContextTokens   int
	GroundingTokens int
}

// Compose builds the context block for one turn. Utterances outside the
// recent window that are not yet covered by the summary are folded into it.
// When context and grounding together exceed the token budget, the context is
// rebuilt from the newest whole utterances that fit. Compose is pure.
func Compose(in ComposeInput) ComposeResult {
	limits := in.Limits.WithDefaults()
	lines := FormatLines(in.Transcript, in.AssistantName)

	summary := in.Summary
	summarized := min(max(in.Summarized, 0), len(in.Transcript))

	recent := lines
	if len(in.Transcript) > limits.RecentCount {
		split := len(in.Transcript) - limits.RecentCount

		if summarized < split {
			fragment := Summarize(in.Transcript[summarized:split], limits.ComposeSummaryLength)
			summary = MergeSummary(summary, fragment, limits.SummaryMaxLength)
			summarized = split
		}

		recent = lines[split:]
	}

	context := strings.Join(recent, "\n")
	if summary != "" {
		context = fmt.Sprintf(summaryPrefixFormat, summary) + context
	}

	result := ComposeResult{
		Context:         context,
		Summary:         summary,
		Summarized:      summarized,
		ContextTokens:   EstimateTokens(context),
		GroundingTokens: EstimateTokens(in.Grounding),
	}

	if result.ContextTokens+result.GroundingTokens <= limits.MaxContextTokens {
		return result
	}

	available := max(limits.MaxContextTokens-result.GroundingTokens-limits.SafetyMargin, 0)

	result.Context = strings.Join(TrimToBudget(lines, available), "\n")
	result.ContextTokens = EstimateTokens(result.Context)
	result.Trimmed = true

	return result
}

// TrimToBudget keeps the newest whole lines whose newline-joined estimate fits
// into budget. A line that does not fit stops the scan.
func TrimToBudget(lines []string, budget int) []string {
	start := len(lines)
	chars := 0

	for i := len(lines) - 1; i >= 0; i-- {
		candidate := chars + runeLen(lines[i])
		if start < len(lines) {
			candidate++
		}

		if tokensForChars(candidate) > budget {
			break
		}

		chars = candidate
		start = i
	}

	result := make([]string, len(lines)-start)
	copy(result, lines[start:])
	return result
}

func tokensForChars(n int) int {
	return (n + charsPerToken - 1) / charsPerToken
}
