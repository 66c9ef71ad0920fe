package queue

import (
	"log/slog"
	"sync"

	"github.com/samber/do"
)

const bufferSize = 64

var _ do.Shutdownable = (*Service)(nil)

// Service buffers utterances from every intake until the engine picks them
// up. Messages are dropped when the buffer is full or the queue is closed.
type Service struct {
	mu     sync.RWMutex
	closed bool
	queue  chan Message
}

type Message struct {
	// Intake that produced the message: console, voice or api
	Source string
	Text   string
}

func New(_ *do.Injector) (*Service, error) {
	return NewService(bufferSize), nil
}

func NewService(size int) *Service {
	return &Service{
		queue: make(chan Message, size),
	}
}

// Add enqueues a message and reports whether it was accepted.
func (s *Service) Add(source, text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.queue <- Message{Source: source, Text: text}:
		return true
	default:
		slog.Warn("Message queue is full, dropping message", "source", source)
		return false
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.queue)
	}

	return nil
}
