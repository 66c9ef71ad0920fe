package conversation

import "strings"

type Command int

const (
	CommandNone Command = iota
	CommandNote
)

func (c Command) String() string {
	switch c {
	case CommandNote:
		return "note"
	default:
		return "none"
	}
}

type noteTrigger struct {
	phrase string
	// cut at the first occurrence of separator instead of after the phrase
	separator string
}

var noteTriggers = []noteTrigger{
	{"note this:", ":"},
	{"note that:", ":"},
	{"note:", ":"},
	{"idea:", ":"},
	{"quote:", ":"},
	{"thought:", ":"},
	{"reminder:", ":"},
	{"make a note", ""},
	{"add note", ""},
	{"add to notes", ""},
	{"write this down", ""},
	{"remember this", ""},
	{"save this note", ""},
	{"add to notepad", ""},
	{"jot this down", ""},
	{"quick note", ""},
}

var connectingWords = []string{"that ", "this ", "- ", ": "}

func Classify(query string) Command {
	if _, ok := ExtractNote(query); ok {
		return CommandNote
	}

	return CommandNone
}

// ExtractNote returns the note text of a note command. A trigger that leaves
// no text behind does not count, and the next trigger is tried.
func ExtractNote(query string) (string, bool) {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)

	for _, trigger := range noteTriggers {
		if !strings.Contains(lower, trigger.phrase) {
			continue
		}

		if trigger.separator != "" && strings.Contains(query, trigger.separator) {
			_, after, _ := strings.Cut(query, trigger.separator)
			if text := strings.TrimSpace(after); text != "" {
				return text, true
			}

			continue
		}

		idx := indexFold(query, trigger.phrase)
		if idx < 0 {
			continue
		}

		text := strings.TrimSpace(query[idx+len(trigger.phrase):])
		for _, word := range connectingWords {
			if hasPrefixFold(text, word) {
				text = strings.TrimSpace(text[len(word):])
			}
		}

		if text != "" {
			return text, true
		}
	}

	return "", false
}

// indexFold is a case-insensitive strings.Index for an ASCII needle.
func indexFold(s, needle string) int {
	for i := 0; i+len(needle) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(needle)], needle) {
			return i
		}
	}

	return -1
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
