package dialog

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSummarize_Empty(t *testing.T) {
	if got := Summarize(nil, 100); got != "" {
		t.Errorf("Summarize(nil) = %q, want empty", got)
	}
}

func TestSummarize_Fragments(t *testing.T) {
	cases := []struct {
		name string
		in   []Utterance
		want string
	}{
		{
			name: "short question skipped",
			in:   []Utterance{UserSaid("hi there")},
			want: "",
		},
		{
			name: "question trimmed",
			in:   []Utterance{UserSaid("  what is the weather  ")},
			want: "Q: what is the weather",
		},
		{
			name: "question of exactly ten characters skipped",
			in:   []Utterance{UserSaid("0123456789")},
			want: "",
		},
		{
			name: "first sentence of answer",
			in:   []Utterance{AssistantSaid("It is sunny. Also warm.")},
			want: "A: It is sunny.",
		},
		{
			name: "answer without terminator",
			in:   []Utterance{AssistantSaid("Sure thing")},
			want: "A: Sure thing.",
		},
		{
			name: "unknown skipped",
			in:   []Utterance{NewUtterance(SpeakerUnknown, "some opaque line that is long")},
			want: "",
		},
		{
			name: "order preserved",
			in: []Utterance{
				UserSaid("tell me about go"),
				AssistantSaid("Go is a language. It is fast."),
			},
			want: "Q: tell me about go | A: Go is a language.",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Summarize(tc.in, 500); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSummarize_LongSentenceOmitted(t *testing.T) {
	long := strings.Repeat("a", 149) + ". rest"
	if got := Summarize([]Utterance{AssistantSaid(long)}, 500); got != "" {
		t.Errorf("expected sentence of 150 chars to be omitted, got %q", got)
	}

	fits := strings.Repeat("a", 148) + ". rest"
	want := "A: " + strings.Repeat("a", 148) + "."
	if got := Summarize([]Utterance{AssistantSaid(fits)}, 500); got != want {
		t.Errorf("expected 149 char sentence to be kept, got %q", got)
	}
}

func TestSummarize_Truncation(t *testing.T) {
	in := []Utterance{UserSaid("tell me about go")}

	if got := Summarize(in, 10); got != "Q: tell..." {
		t.Errorf("got %q, want %q", got, "Q: tell...")
	}

	for limit := 0; limit < 30; limit++ {
		got := Summarize(in, limit)
		if n := utf8.RuneCountInString(got); n > limit {
			t.Errorf("limit %d: summary %q has %d chars", limit, got, n)
		}
	}
}

func TestMergeSummary(t *testing.T) {
	cases := []struct {
		previous, fragment string
		limit              int
		want               string
	}{
		{"", "a", 10, "a"},
		{"a", "b", 10, "a | b"},
		{"abc", "", 10, "abc"},
		{"", "", 10, ""},
		{"0123456789", "xyz", 6, " | xyz"},
	}

	for _, tc := range cases {
		if got := MergeSummary(tc.previous, tc.fragment, tc.limit); got != tc.want {
			t.Errorf("MergeSummary(%q, %q, %d) = %q, want %q", tc.previous, tc.fragment, tc.limit, got, tc.want)
		}
	}
}

func TestMergeSummary_CapHolds(t *testing.T) {
	summary := ""
	for i := 0; i < 50; i++ {
		summary = MergeSummary(summary, "Q: a question that keeps coming back", 120)
		if n := utf8.RuneCountInString(summary); n > 120 {
			t.Fatalf("iteration %d: summary length %d exceeds cap", i, n)
		}
	}

	if !strings.HasSuffix(summary, "Q: a question that keeps coming back") {
		t.Errorf("expected summary to keep the most recent fragment, got %q", summary)
	}
}
