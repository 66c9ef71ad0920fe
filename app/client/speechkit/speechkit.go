package speechkit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"ludo/app/config"

	"github.com/samber/do"
	ycsdk "github.com/yandex-cloud/go-sdk"
	"github.com/yandex-cloud/go-sdk/iamkey"
)

const sampleRate = 16000

// YandexSpeechKit opens streaming recognition sessions for 16 kHz mono
// LINEAR16 audio.
type YandexSpeechKit struct {
	language string
	model    string
	sdk      *ycsdk.SDK
}

func NewClient(di *do.Injector) (*YandexSpeechKit, error) {
	ctx := do.MustInvoke[context.Context](di)
	cfg := do.MustInvoke[*config.Config](di)

	keyBytes, err := os.ReadFile(cfg.Voice.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("could not read service account key: %w", err)
	}

	var key iamkey.Key
	if err = json.Unmarshal(keyBytes, &key); err != nil {
		return nil, fmt.Errorf("could not parse service account key: %w", err)
	}

	creds, err := ycsdk.ServiceAccountKey(&key)
	if err != nil {
		return nil, fmt.Errorf("could not create service account key: %w", err)
	}

	sdk, err := ycsdk.Build(ctx, ycsdk.Config{
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Yandex SDK: %w", err)
	}

	return &YandexSpeechKit{
		language: cfg.Voice.Language,
		model:    cfg.Voice.Model,
		sdk:      sdk,
	}, nil
}

func (y *YandexSpeechKit) Start(ctx context.Context) (*Handle, error) {
	ctx, cancel := context.WithCancel(ctx)

	client, err := y.sdk.AI().STTV3().Recognizer().RecognizeStreaming(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open recognition stream: %w", err)
	}

	return &Handle{
		client:   client,
		cancel:   cancel,
		language: y.language,
		model:    y.model,
	}, nil
}
