package speechkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/yandex-cloud/go-genproto/yandex/cloud/ai/stt/v3"
)

type Handle struct {
	client stt.Recognizer_RecognizeStreamingClient
	cancel context.CancelFunc

	language string
	model    string
}

func (h *Handle) Send(content []byte) error {
	var req stt.StreamingRequest
	req.SetChunk(&stt.AudioChunk{
		Data: content,
	})

	return h.client.Send(&req)
}

// SendConfig must be the first request of a stream.
func (h *Handle) SendConfig() error {
	var audioFormatOpts stt.AudioFormatOptions
	audioFormatOpts.SetRawAudio(&stt.RawAudio{
		AudioEncoding:     stt.RawAudio_LINEAR16_PCM,
		SampleRateHertz:   sampleRate,
		AudioChannelCount: 1,
	})

	var eouClassifier stt.EouClassifierOptions
	eouClassifier.SetDefaultClassifier(&stt.DefaultEouClassifier{
		Type:                       stt.DefaultEouClassifier_HIGH,
		MaxPauseBetweenWordsHintMs: 800,
	})

	var req stt.StreamingRequest
	req.SetSessionOptions(&stt.StreamingOptions{
		RecognitionModel: &stt.RecognitionModelOptions{
			Model:       h.model,
			AudioFormat: &audioFormatOpts,
			LanguageRestriction: &stt.LanguageRestrictionOptions{
				RestrictionType: stt.LanguageRestrictionOptions_WHITELIST,
				LanguageCode:    []string{h.language},
			},
		},
		EouClassifier: &eouClassifier,
	})

	return h.client.Send(&req)
}

// Recv blocks until the next recognition event and returns the best final
// hypothesis. Partial events yield an empty string.
func (h *Handle) Recv() (string, error) {
	res, err := h.client.Recv()
	if err != nil {
		return "", fmt.Errorf("failed to receive stt: %w", err)
	}

	finalEvent := res.GetFinal()
	if finalEvent == nil {
		return "", nil
	}

	for _, alt := range finalEvent.Alternatives {
		if text := strings.TrimSpace(alt.Text); text != "" {
			return text, nil
		}
	}

	return "", nil
}

func (h *Handle) Close() error {
	h.cancel()
	return nil
}
