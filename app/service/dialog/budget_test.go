package dialog

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestCompose_SmallTranscriptVerbatim(t *testing.T) {
	res := Compose(ComposeInput{
		Transcript:    ParseLines([]string{"User: hi", "LUDO: hello"}, "LUDO"),
		AssistantName: "LUDO",
		Limits:        Limits{MaxHistory: 20, RecentCount: 10},
	})

	if res.Context != "User: hi\nLUDO: hello" {
		t.Errorf("unexpected context %q", res.Context)
	}
	if res.Summary != "" {
		t.Errorf("expected no summary, got %q", res.Summary)
	}
	if res.Trimmed {
		t.Error("expected no trimming")
	}
}

func TestCompose_SummarizesOldRegion(t *testing.T) {
	transcript := []Utterance{
		UserSaid("what is the capital of France"),
		AssistantSaid("Paris is the capital. It is big."),
	}
	for i := 0; i < 10; i++ {
		transcript = append(transcript, UserSaid(fmt.Sprintf("recent %d", i)))
	}

	res := Compose(ComposeInput{
		Transcript:    transcript,
		AssistantName: "LUDO",
		Limits:        Limits{RecentCount: 10},
	})

	wantSummary := "Q: what is the capital of France | A: Paris is the capital."
	if res.Summary != wantSummary {
		t.Fatalf("summary = %q, want %q", res.Summary, wantSummary)
	}
	if res.Summarized != 2 {
		t.Errorf("summarized = %d, want 2", res.Summarized)
	}

	wantPrefix := "[Previous context summary: " + wantSummary + "]\n\nUser: recent 0\n"
	if !strings.HasPrefix(res.Context, wantPrefix) {
		t.Errorf("context %q does not start with %q", res.Context, wantPrefix)
	}
	if strings.Contains(res.Context, "User: what is the capital") {
		t.Error("old utterances must not appear verbatim in the context")
	}
}

func TestCompose_DoesNotResummarizeCoveredRegion(t *testing.T) {
	transcript := []Utterance{
		UserSaid("what is the capital of France"),
		AssistantSaid("Paris is the capital."),
	}
	for i := 0; i < 10; i++ {
		transcript = append(transcript, UserSaid(fmt.Sprintf("recent %d", i)))
	}

	res := Compose(ComposeInput{
		Transcript: transcript,
		Summary:    "prior",
		Summarized: 2,
		Limits:     Limits{RecentCount: 10},
	})

	if res.Summary != "prior" {
		t.Errorf("summary = %q, want unchanged", res.Summary)
	}
}

func TestCompose_Idempotent(t *testing.T) {
	var transcript []Utterance
	for i := 0; i < 15; i++ {
		transcript = append(transcript,
			UserSaid(fmt.Sprintf("question number %d about things", i)),
			AssistantSaid(fmt.Sprintf("Answer %d. Details follow.", i)),
		)
	}

	in := ComposeInput{
		Transcript:    transcript,
		AssistantName: "LUDO",
		Summary:       "Q: earlier",
		Grounding:     strings.Repeat("g", 400),
		Limits:        Limits{RecentCount: 10, MaxContextTokens: 300},
	}

	first := Compose(in)
	second := Compose(in)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("compose is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestCompose_GroundingExhaustsBudget(t *testing.T) {
	var transcript []Utterance
	for i := 0; i < 4; i++ {
		transcript = append(transcript, UserSaid(strings.Repeat("x", 60)))
	}

	res := Compose(ComposeInput{
		Transcript: transcript,
		Grounding:  strings.Repeat("w", 160),
		Limits:     Limits{MaxContextTokens: 50, SafetyMargin: 10},
	})

	if res.GroundingTokens != 40 {
		t.Fatalf("grounding tokens = %d, want 40", res.GroundingTokens)
	}
	if !res.Trimmed {
		t.Fatal("expected trimming")
	}
	if res.Context != "" {
		t.Errorf("expected empty context, got %q", res.Context)
	}
}

func TestCompose_TrimsToNewestWholeUtterances(t *testing.T) {
	var transcript []Utterance
	for i := 0; i < 5; i++ {
		transcript = append(transcript, UserSaid(strings.Repeat("a", 25)+fmt.Sprint(i)))
	}

	res := Compose(ComposeInput{
		Transcript: transcript,
		Limits:     Limits{MaxContextTokens: 30, SafetyMargin: 0},
	})

	if !res.Trimmed {
		t.Fatal("expected trimming")
	}

	lines := strings.Split(res.Context, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), res.Context)
	}
	if !strings.HasSuffix(lines[0], "2") || !strings.HasSuffix(lines[2], "4") {
		t.Errorf("expected newest utterances in chronological order, got %q", lines)
	}
	if res.ContextTokens > 30 {
		t.Errorf("context tokens %d exceed budget", res.ContextTokens)
	}
}

func TestCompose_UnknownLinesPassThrough(t *testing.T) {
	transcript := []Utterance{
		NewUtterance(SpeakerUnknown, "garbage without any tag"),
		UserSaid("hi"),
	}

	res := Compose(ComposeInput{Transcript: transcript, AssistantName: "LUDO"})

	if res.Context != "garbage without any tag\nUser: hi" {
		t.Errorf("unexpected context %q", res.Context)
	}
}

func TestCompose_EmptyInput(t *testing.T) {
	res := Compose(ComposeInput{})

	if res.Context != "" || res.Summary != "" || res.Trimmed {
		t.Errorf("unexpected result for empty input: %+v", res)
	}
}

func TestCompose_BudgetLaw(t *testing.T) {
	var transcript []Utterance
	for i := 0; i < 20; i++ {
		transcript = append(transcript,
			UserSaid(strings.Repeat("q", 10+i*7)),
			AssistantSaid(strings.Repeat("r", 30+i*11)+". done"),
		)
	}

	for maxTokens := 100; maxTokens <= 3000; maxTokens += 37 {
		for _, grounding := range []string{"", strings.Repeat("g", 200), strings.Repeat("g", 2000)} {
			res := Compose(ComposeInput{
				Transcript: transcript,
				Grounding:  grounding,
				Limits:     Limits{MaxContextTokens: maxTokens, SafetyMargin: 100},
			})

			if res.Context == "" {
				continue
			}

			if total := res.ContextTokens + res.GroundingTokens; total > maxTokens {
				t.Fatalf("max %d, grounding %d: total %d exceeds budget", maxTokens, len(grounding), total)
			}
			if res.ContextTokens != EstimateTokens(res.Context) {
				t.Fatalf("reported context tokens %d differ from estimate %d", res.ContextTokens, EstimateTokens(res.Context))
			}
		}
	}
}

func TestTrimToBudget(t *testing.T) {
	lines := []string{"abcdefgh", "abcdefgh"}

	cases := []struct {
		budget int
		want   int
	}{
		{0, 0},
		{1, 0},
		{2, 1},
		{4, 1},
		{5, 2},
		{100, 2},
	}

	for _, tc := range cases {
		if got := TrimToBudget(lines, tc.budget); len(got) != tc.want {
			t.Errorf("budget %d: got %d lines, want %d", tc.budget, len(got), tc.want)
		}
	}
}

func TestTrimToBudget_OversizedNewestStops(t *testing.T) {
	got := TrimToBudget([]string{"short", strings.Repeat("x", 100)}, 10)
	if len(got) != 0 {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestTrimToBudget_Empty(t *testing.T) {
	if got := TrimToBudget(nil, 100); len(got) != 0 {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestLimits_WithDefaults(t *testing.T) {
	got := Limits{RecentCount: 4, SafetyMargin: -1}.WithDefaults()
	want := DefaultLimits()
	want.RecentCount = 4

	if got != want {
		t.Errorf("WithDefaults = %+v, want %+v", got, want)
	}
}
