package dialog

// EvictFunc receives utterances that are about to leave the transcript,
// oldest first.
type EvictFunc func(evicted []Utterance)

// Transcript is an append-only, bounded log of utterances in chronological
// order. It is not safe for concurrent use; Session guards it.
type Transcript struct {
	maxSize int
	onEvict EvictFunc
	items   []Utterance
}

func NewTranscript(maxSize int, onEvict EvictFunc) *Transcript {
	if maxSize <= 0 {
		maxSize = DefaultLimits().MaxHistory
	}

	return &Transcript{
		maxSize: maxSize,
		onEvict: onEvict,
	}
}

// Append adds utterances and evicts the oldest excess. Evicted utterances are
// offered to onEvict before they are dropped.
func (t *Transcript) Append(utterances ...Utterance) []Utterance {
	t.items = append(t.items, utterances...)

	excess := len(t.items) - t.maxSize
	if excess <= 0 {
		return nil
	}

	evicted := make([]Utterance, excess)
	copy(evicted, t.items[:excess])

	if t.onEvict != nil {
		t.onEvict(evicted)
	}

	kept := make([]Utterance, t.maxSize)
	copy(kept, t.items[excess:])
	t.items = kept

	return evicted
}

func (t *Transcript) Len() int {
	return len(t.items)
}

func (t *Transcript) MaxSize() int {
	return t.maxSize
}

func (t *Transcript) Utterances() []Utterance {
	result := make([]Utterance, len(t.items))
	copy(result, t.items)
	return result
}

func (t *Transcript) Lines(assistantName string) []string {
	return FormatLines(t.items, assistantName)
}

func (t *Transcript) Clear() {
	t.items = nil
}
