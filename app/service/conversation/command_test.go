package conversation

import "testing"

func TestExtractNote(t *testing.T) {
	cases := []struct {
		query  string
		want   string
		wantOK bool
	}{
		{"note this: buy milk", "buy milk", true},
		{"Idea: Solar powered HUD", "Solar powered HUD", true},
		{"Quick note: dentist at 5", "dentist at 5", true},
		{"Reminder: standup at 10:30", "standup at 10:30", true},
		{"please make a note that I parked on level 3", "I parked on level 3", true},
		{"write this down - call mom", "call mom", true},
		{"Add To Notepad renew passport", "renew passport", true},
		{"remember this", "", false},
		{"note:", "", false},
		{"what is a note", "", false},
		{"tell me a joke", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := ExtractNote(tc.query)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ExtractNote(%q) = (%q, %v), want (%q, %v)", tc.query, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestClassify(t *testing.T) {
	if got := Classify("idea: a hud for cats"); got != CommandNote {
		t.Errorf("Classify note = %v", got)
	}
	if got := Classify("what time is it"); got != CommandNone {
		t.Errorf("Classify question = %v", got)
	}
	if got := Classify("make a note"); got != CommandNone {
		t.Errorf("Classify bare trigger = %v", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	got := buildPrompt("SYS", "User: hi\nLUDO: hello", "[web]", "what now", "LUDO")
	want := "SYS\n\nUser: hi\nLUDO: hello\n[web]\nUser: what now\nLUDO:"
	if got != want {
		t.Errorf("buildPrompt = %q, want %q", got, want)
	}

	got = buildPrompt("SYS", "", "", "hi {name}", "LUDO")
	want = "SYS\n\n\nUser: hi {name}\nLUDO:"
	if got != want {
		t.Errorf("buildPrompt empty context = %q, want %q", got, want)
	}
}
