package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ludo/app/client/llm"
	"ludo/app/config"
	"ludo/app/service/dialog"
	"ludo/app/service/grounding"
	"ludo/app/service/memory"
	"ludo/app/service/notepad"
	"ludo/app/util/mylog"

	"github.com/samber/do"
)

var ErrEmptyQuery = errors.New("empty query")

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Grounder interface {
	Ground(ctx context.Context, query string) grounding.Result
}

type Notepad interface {
	Add(text string) (notepad.Entry, error)
}

type Reply struct {
	Text    string  `json:"text"`
	Command Command `json:"-"`
	// Note holds the saved note text of a note command
	Note string `json:"note,omitempty"`
	// Failed is set when the model call failed and Text is the error reply
	Failed        bool `json:"failed"`
	Online        bool `json:"online"`
	Searched      bool `json:"searched"`
	Trimmed       bool `json:"trimmed"`
	ContextTokens int  `json:"context_tokens"`
}

type Service struct {
	assistant config.Assistant

	session   *dialog.Session
	completer Completer
	grounder  Grounder
	notes     Notepad

	// one turn at a time, from any intake
	turnMu sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	session := dialog.NewSession(LimitsFromConfig(cfg.Memory), cfg.Assistant.Name, do.MustInvoke[*memory.Service](di))
	if err := session.Load(); err != nil {
		slog.Error("Failed to load conversation memory, starting fresh", "error", err)
	}

	stats := session.Stats()
	slog.Info("Conversation memory loaded",
		"messages", stats.Messages,
		"summary_length", stats.SummaryLength,
	)

	return NewService(
		cfg.Assistant,
		session,
		do.MustInvoke[*llm.Client](di),
		do.MustInvoke[*grounding.Service](di),
		do.MustInvoke[*notepad.Service](di),
	), nil
}

func NewService(
	assistant config.Assistant,
	session *dialog.Session,
	completer Completer,
	grounder Grounder,
	notes Notepad,
) *Service {
	return &Service{
		assistant: assistant,
		session:   session,
		completer: completer,
		grounder:  grounder,
		notes:     notes,
	}
}

func LimitsFromConfig(cfg config.Memory) dialog.Limits {
	return dialog.Limits{
		MaxHistory:           cfg.MaxHistory,
		RecentCount:          cfg.RecentCount,
		MaxContextTokens:     cfg.MaxContextTokens,
		SafetyMargin:         cfg.SafetyMargin,
		SummaryMaxLength:     cfg.SummaryMaxLength,
		ComposeSummaryLength: cfg.ComposeSummaryLength,
		EvictSummaryLength:   cfg.EvictSummaryLength,
	}
}

// ProcessQuery runs one conversation turn. A failed model call yields the
// configured error reply and leaves the transcript untouched.
func (s *Service) ProcessQuery(ctx context.Context, source, text string) (Reply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Reply{}, ErrEmptyQuery
	}

	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if note, ok := ExtractNote(text); ok {
		return s.saveNote(source, note)
	}

	start := time.Now()

	ground := s.grounder.Ground(ctx, text)
	composed := s.session.Compose(ground.Text)

	if composed.Trimmed {
		slog.Warn("Context trimmed to fit the token budget",
			"context_tokens", composed.ContextTokens,
			"grounding_tokens", composed.GroundingTokens,
		)
	}

	systemPrompt := s.assistant.OnlinePrompt
	if !ground.Online {
		systemPrompt = s.assistant.OfflinePrompt
	}

	prompt := buildPrompt(systemPrompt, composed.Context, ground.Text, text, s.assistant.Name)
	slog.Debug("Sending prompt",
		"source", source,
		"tokens", dialog.EstimateTokens(prompt),
	)

	reply := Reply{
		Command:       CommandNone,
		Online:        ground.Online,
		Searched:      ground.Searched,
		Trimmed:       composed.Trimmed,
		ContextTokens: composed.ContextTokens,
	}

	answer, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		slog.Error("Failed to get reply",
			"source", source,
			"query", text,
			"error", err,
		)

		reply.Text = s.assistant.ErrorReply
		reply.Failed = true

		return reply, nil
	}

	reply.Text = answer

	if err = s.session.Record(dialog.UserSaid(text), dialog.AssistantSaid(answer)); err != nil {
		slog.Error("Failed to persist conversation memory", "error", err)
	}

	slog.Info("Replied",
		"source", source,
		"query", text,
		"reply", answer,
		"duration", time.Since(start),
		mylog.TelegramKey, true,
	)

	return reply, nil
}

func (s *Service) saveNote(source, note string) (Reply, error) {
	if _, err := s.notes.Add(note); err != nil {
		return Reply{}, fmt.Errorf("failed to save note: %w", err)
	}

	slog.Info("Note saved",
		"source", source,
		"text", note,
		mylog.TelegramKey, true,
	)

	return Reply{
		Text:    s.assistant.NoteReply,
		Command: CommandNote,
		Note:    note,
		Online:  true,
	}, nil
}

func (s *Service) Reset() error {
	s.turnMu.Lock()
	defer s.turnMu.Unlock()

	if err := s.session.Reset(); err != nil {
		return fmt.Errorf("failed to reset conversation: %w", err)
	}

	slog.Info("Conversation memory cleared")

	return nil
}

func (s *Service) Stats() dialog.Stats {
	return s.session.Stats()
}

func (s *Service) Summary() string {
	return s.session.Summary()
}

func (s *Service) Transcript() []string {
	return s.session.Snapshot().Lines
}
