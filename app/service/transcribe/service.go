package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"ludo/app/client/speechkit"
	"ludo/app/config"
	"ludo/app/service/queue"

	"github.com/samber/do"
	"golang.org/x/sync/errgroup"
)

const (
	bufferSize = 4096
	source     = "voice"
)

// Stream is one streaming recognition session.
type Stream interface {
	SendConfig() error
	Send(content []byte) error
	Recv() (string, error)
	Close() error
}

type Recognizer func(ctx context.Context) (Stream, error)

type Sink interface {
	Add(source, text string) bool
}

type Service struct {
	cfg        config.Voice
	recognizer Recognizer
	sink       Sink
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	speechClient := do.MustInvoke[*speechkit.YandexSpeechKit](di)

	recognizer := func(ctx context.Context) (Stream, error) {
		handle, err := speechClient.Start(ctx)
		if err != nil {
			return nil, err
		}

		return handle, nil
	}

	return NewService(cfg.Voice, recognizer, do.MustInvoke[*queue.Service](di)), nil
}

func NewService(cfg config.Voice, recognizer Recognizer, sink Sink) *Service {
	return &Service{
		cfg:        cfg,
		recognizer: recognizer,
		sink:       sink,
	}
}

// Start captures the microphone in the background. The returned context is
// cancelled with the cause once capture or recognition stops.
func (s *Service) Start(ctx context.Context) (context.Context, context.CancelCauseFunc) {
	ctx, cancel := context.WithCancelCause(ctx)

	go s.runTranscription(ctx, cancel)

	return ctx, cancel
}

func (s *Service) runTranscription(ctx context.Context, cancel context.CancelCauseFunc) {
	defer cancel(nil)

	ffmpeg, err := NewFFmpegStream(ctx, s.cfg.InputFormat, s.cfg.InputDevice)
	if err != nil {
		cancel(fmt.Errorf("failed to create ffmpeg stream: %w", err))
		return
	}

	if err = ffmpeg.Start(); err != nil {
		cancel(fmt.Errorf("failed to start ffmpeg: %w", err))
		return
	}
	defer ffmpeg.Stop()

	go func() {
		cancel(s.Transcribe(ctx, ffmpeg.GetAudioStream()))
	}()

	go func() {
		err := ffmpeg.Wait()
		if err == nil {
			err = fmt.Errorf("ffmpeg process finished")
		}
		cancel(err)
	}()

	<-ctx.Done()

	if err = context.Cause(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("Transcription failed", "error", err)
	}
}

// Transcribe feeds audio into recognition sessions until the audio ends or
// ctx is done. A session closed by the server with EOF is reopened. The
// recognition stream lives on the session context, so a failing side unblocks
// the other.
func (s *Service) Transcribe(ctx context.Context, audioSrc io.Reader) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.runSingleTranscription(ctx, audioSrc)
		switch {
		case err == nil, errors.Is(err, errAudioEnded):
			return nil
		case errors.Is(err, io.EOF):
			slog.Info("Recognition stream closed by server, reopening")
		default:
			return fmt.Errorf("transcription error: %w", err)
		}
	}
}

var errAudioEnded = errors.New("audio ended")

func (s *Service) runSingleTranscription(ctx context.Context, audioSrc io.Reader) error {
	g, ctx := errgroup.WithContext(ctx)

	stream, err := s.recognizer(ctx)
	if err != nil {
		return fmt.Errorf("failed to start transcription: %w", err)
	}
	defer stream.Close()

	g.Go(func() error {
		return s.streamAudio(ctx, audioSrc, stream)
	})

	g.Go(func() error {
		return s.receivePhrases(ctx, stream)
	})

	return g.Wait()
}

func (s *Service) streamAudio(ctx context.Context, audioSrc io.Reader, stream Stream) error {
	if err := stream.SendConfig(); err != nil {
		return fmt.Errorf("failed to send audio config: %w", err)
	}

	buffer := make([]byte, bufferSize)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := audioSrc.Read(buffer)
		if n > 0 {
			if sendErr := stream.Send(buffer[:n]); sendErr != nil {
				return fmt.Errorf("failed to send audio: %w", sendErr)
			}
		}

		if errors.Is(err, io.EOF) {
			return errAudioEnded
		}
		if err != nil {
			return fmt.Errorf("failed to read audio: %w", err)
		}
	}
}

func (s *Service) receivePhrases(ctx context.Context, stream Stream) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		text, err := stream.Recv()
		if err != nil {
			return fmt.Errorf("Recv: %w", err)
		}

		if text == "" {
			continue
		}

		slog.Debug("Recognized phrase", "text", text)
		s.sink.Add(source, text)
	}
}
