package dialog

import "testing"

func TestEstimateTokens(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"single char", "a", 1},
		{"exact ratio", "abcd", 1},
		{"rounds up", "abcde", 2},
		{"two tokens", "abcdefgh", 2},
		{"counts runes not bytes", "héllo", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EstimateTokens(tc.in); got != tc.want {
				t.Errorf("EstimateTokens(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}

func TestEstimateTokens_NeverNegative(t *testing.T) {
	inputs := []string{"", " ", "\n\n", "User: hi", "日本語のテキスト"}
	for _, in := range inputs {
		if got := EstimateTokens(in); got < 0 {
			t.Errorf("EstimateTokens(%q) = %d, want >= 0", in, got)
		}
	}
}

func TestEstimateLines(t *testing.T) {
	got := EstimateLines([]string{"abcd", "abcde", ""})
	if got != 3 {
		t.Errorf("EstimateLines = %d, want 3", got)
	}

	if got := EstimateLines(nil); got != 0 {
		t.Errorf("EstimateLines(nil) = %d, want 0", got)
	}
}
