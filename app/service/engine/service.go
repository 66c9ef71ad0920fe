package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ludo/app/config"
	"ludo/app/service/conversation"
	"ludo/app/service/queue"
	"ludo/app/service/transcribe"

	"github.com/samber/do"
)

const restartDelay = 10 * time.Second

type Processor interface {
	ProcessQuery(ctx context.Context, source, text string) (conversation.Reply, error)
}

// ReplyFunc receives every reply the engine produces.
type ReplyFunc func(msg queue.Message, reply conversation.Reply)

type Service struct {
	voiceEnabled  bool
	transcribeSvc *transcribe.Service
	processor     Processor
	queueSvc      *queue.Service
	onReply       ReplyFunc
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		voiceEnabled: cfg.Voice.Enabled,
		processor:    do.MustInvoke[*conversation.Service](di),
		queueSvc:     do.MustInvoke[*queue.Service](di),
		onReply:      printReply(cfg.Assistant.Name),
	}

	if s.voiceEnabled {
		s.transcribeSvc = do.MustInvoke[*transcribe.Service](di)
	}

	return s, nil
}

func NewService(processor Processor, queueSvc *queue.Service, onReply ReplyFunc) *Service {
	return &Service{
		processor: processor,
		queueSvc:  queueSvc,
		onReply:   onReply,
	}
}

// Run drains the queue until ctx is done or the queue is closed. Voice
// capture is restarted after a delay whenever it stops.
func (s *Service) Run(ctx context.Context) {
	if s.voiceEnabled {
		go s.runVoice(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.queueSvc.Channel():
			if !ok {
				return
			}

			s.process(ctx, msg)
		}
	}
}

func (s *Service) process(ctx context.Context, msg queue.Message) {
	start := time.Now()

	reply, err := s.processor.ProcessQuery(ctx, msg.Source, msg.Text)
	if err != nil {
		if !errors.Is(err, conversation.ErrEmptyQuery) {
			slog.Warn("ProcessQuery error", "source", msg.Source, "error", err)
		}
		return
	}

	slog.Debug("Processed message",
		"source", msg.Source,
		"text", msg.Text,
		"duration", time.Since(start),
	)

	if s.onReply != nil {
		s.onReply(msg, reply)
	}
}

func (s *Service) runVoice(ctx context.Context) {
	for {
		transcribeCtx, cancel := s.transcribeSvc.Start(ctx)
		<-transcribeCtx.Done()
		cancel(nil)

		if ctx.Err() != nil {
			return
		}

		slog.Warn("Voice capture stopped, restarting", "cause", context.Cause(transcribeCtx), "delay", restartDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(restartDelay):
		}
	}
}
