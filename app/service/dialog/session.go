package dialog

import (
	"fmt"
	"sync"
)

// Snapshot is the persisted form of a session.
type Snapshot struct {
	// Transcript in "User: ..." / "<Name>: ..." form, oldest first
	Lines []string
	// Running summary of evicted utterances
	Summary string
	// Number of oldest lines already folded into Summary
	Summarized int
}

// Persister stores session snapshots. Load returns nil without error when
// nothing has been stored yet.
type Persister interface {
	Load() (*Snapshot, error)
	Save(snapshot Snapshot) error
	Delete() error
}

// Session owns the transcript and running summary of one assistant. All
// mutations happen under mu, so a turn never observes a half-evicted store.
type Session struct {
	mu sync.Mutex

	limits        Limits
	assistantName string
	persister     Persister

	transcript *Transcript
	summary    string
	summarized int
}

func NewSession(limits Limits, assistantName string, persister Persister) *Session {
	s := &Session{
		limits:        limits.WithDefaults(),
		assistantName: assistantName,
		persister:     persister,
	}
	s.transcript = NewTranscript(s.limits.MaxHistory, s.foldEvicted)

	return s
}

// Load restores the persisted snapshot. On failure the session stays empty.
func (s *Session) Load() error {
	if s.persister == nil {
		return nil
	}

	snapshot, err := s.persister.Load()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if snapshot == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.transcript.Clear()
	s.summary = keepTail(snapshot.Summary, s.limits.SummaryMaxLength)
	s.summarized = min(max(snapshot.Summarized, 0), len(snapshot.Lines))
	s.transcript.Append(ParseLines(snapshot.Lines, s.assistantName)...)

	return nil
}

// Compose builds the context for the next turn and adopts the summary that
// composition produced.
func (s *Session) Compose(grounding string) ComposeResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := Compose(ComposeInput{
		Transcript:    s.transcript.Utterances(),
		AssistantName: s.assistantName,
		Summary:       s.summary,
		Summarized:    s.summarized,
		Grounding:     grounding,
		Limits:        s.limits,
	})

	s.summary = result.Summary
	s.summarized = result.Summarized

	return result
}

// Record appends utterances, folds evicted ones into the summary and persists
// the session. A persistence error is returned but in-memory state is kept.
func (s *Session) Record(utterances ...Utterance) error {
	s.mu.Lock()
	s.transcript.Append(utterances...)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}

	if err := s.persister.Save(snapshot); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Reset forgets the conversation and deletes the persisted copy.
func (s *Session) Reset() error {
	s.mu.Lock()
	s.transcript.Clear()
	s.summary = ""
	s.summarized = 0
	s.mu.Unlock()

	if s.persister == nil {
		return nil
	}

	if err := s.persister.Delete(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

func (s *Session) Summary() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.summary
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.transcript.Len()
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return computeStats(s.transcript.Utterances(), s.assistantName, s.summary)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Lines:      s.transcript.Lines(s.assistantName),
		Summary:    s.summary,
		Summarized: s.summarized,
	}
}

// foldEvicted runs under mu from Transcript.Append. Evicted utterances already
// covered by the summary only move the cursor.
func (s *Session) foldEvicted(evicted []Utterance) {
	covered := min(s.summarized, len(evicted))

	if fresh := evicted[covered:]; len(fresh) > 0 {
		fragment := Summarize(fresh, s.limits.EvictSummaryLength)
		s.summary = MergeSummary(s.summary, fragment, s.limits.SummaryMaxLength)
	}

	s.summarized -= covered
}
