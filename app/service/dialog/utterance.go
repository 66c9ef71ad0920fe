// Package dialog keeps the conversation memory of the assistant: the bounded
// transcript, the running summary of evicted turns and the composition of the
// token-bounded context that is sent to the language model.
package dialog

import "strings"

const userTag = "User"

type Speaker int

const (
	SpeakerUnknown Speaker = iota
	SpeakerUser
	SpeakerAssistant
)

func (s Speaker) String() string {
	switch s {
	case SpeakerUser:
		return "user"
	case SpeakerAssistant:
		return "assistant"
	default:
		return "unknown"
	}
}

// Utterance is one turn of dialogue. Unknown utterances carry the raw line.
type Utterance struct {
	speaker Speaker
	text    string
}

func NewUtterance(speaker Speaker, text string) Utterance {
	return Utterance{speaker: speaker, text: text}
}

func UserSaid(text string) Utterance {
	return Utterance{speaker: SpeakerUser, text: text}
}

func AssistantSaid(text string) Utterance {
	return Utterance{speaker: SpeakerAssistant, text: text}
}

func (u Utterance) Speaker() Speaker {
	return u.speaker
}

func (u Utterance) Text() string {
	return u.text
}

// Line renders the utterance in the persisted "Tag: text" form.
func (u Utterance) Line(assistantName string) string {
	switch u.speaker {
	case SpeakerUser:
		return userTag + ": " + u.text
	case SpeakerAssistant:
		return assistantName + ": " + u.text
	default:
		return u.text
	}
}

// ParseLine is the inverse of Line. Lines without a recognised tag become
// SpeakerUnknown and keep the whole line as text.
func ParseLine(line, assistantName string) Utterance {
	if text, ok := strings.CutPrefix(line, userTag+": "); ok {
		return UserSaid(text)
	}

	if assistantName != "" {
		if text, ok := strings.CutPrefix(line, assistantName+": "); ok {
			return AssistantSaid(text)
		}
	}

	return Utterance{speaker: SpeakerUnknown, text: line}
}

func ParseLines(lines []string, assistantName string) []Utterance {
	result := make([]Utterance, 0, len(lines))
	for _, line := range lines {
		result = append(result, ParseLine(line, assistantName))
	}

	return result
}

func FormatLines(utterances []Utterance, assistantName string) []string {
	result := make([]string, 0, len(utterances))
	for _, u := range utterances {
		result = append(result, u.Line(assistantName))
	}

	return result
}
