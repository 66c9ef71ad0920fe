package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"ludo/app/service/conversation"
	"ludo/app/service/dialog"
	"ludo/app/service/notepad"
	"ludo/app/service/queue"

	"github.com/samber/do"
)

const source = "console"

type Conversation interface {
	Reset() error
	Stats() dialog.Stats
}

type Notes interface {
	List() []notepad.Entry
	Clear() error
}

type Queue interface {
	Add(source, text string) bool
}

// Service reads typed queries line by line. Lines starting with a slash are
// local commands and never reach the assistant.
type Service struct {
	in  io.Reader
	out io.Writer

	conversation Conversation
	notes        Notes
	queue        Queue
}

func New(di *do.Injector) (*Service, error) {
	return NewService(
		os.Stdin,
		os.Stdout,
		do.MustInvoke[*conversation.Service](di),
		do.MustInvoke[*notepad.Service](di),
		do.MustInvoke[*queue.Service](di),
	), nil
}

func NewService(in io.Reader, out io.Writer, conversation Conversation, notes Notes, queue Queue) *Service {
	return &Service{
		in:           in,
		out:          out,
		conversation: conversation,
		notes:        notes,
		queue:        queue,
	}
}

// Run returns when input ends or ctx is done. A blocked read on stdin is not
// interrupted by ctx.
func (s *Service) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(s.in)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			s.command(line)
			continue
		}

		s.queue.Add(source, line)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read console input: %w", err)
	}

	return nil
}

func (s *Service) command(line string) {
	switch strings.ToLower(line) {
	case "/reset":
		if err := s.conversation.Reset(); err != nil {
			slog.Error("Failed to reset memory", "error", err)
			s.printf("Failed to reset memory: %v\n", err)
			return
		}
		s.printf("Memory cleared.\n")

	case "/stats":
		stats := s.conversation.Stats()
		s.printf("Memory: %d messages (%d exchanges), ~%d tokens, %d chars summarized\n",
			stats.Messages, stats.UserMessages, stats.Tokens, stats.SummaryLength)

	case "/notes":
		entries := s.notes.List()
		if len(entries) == 0 {
			s.printf("Notepad is empty.\n")
			return
		}
		for _, entry := range entries {
			s.printf("[%s] %s\n", entry.Timestamp, entry.Text)
		}

	case "/clear-notes":
		if err := s.notes.Clear(); err != nil {
			slog.Error("Failed to clear notepad", "error", err)
			s.printf("Failed to clear notepad: %v\n", err)
			return
		}
		s.printf("Notepad cleared.\n")

	case "/help":
		s.printf("Commands: /reset, /stats, /notes, /clear-notes, /help\n")

	default:
		s.printf("Unknown command %s, try /help\n", line)
	}
}

func (s *Service) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}
