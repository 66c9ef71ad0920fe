package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"ludo/app/config"

	"github.com/samber/do"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Client sends single prompts to an OpenAI compatible chat completion endpoint.
type Client struct {
	model       llms.Model
	temperature float64
	maxTokens   int
}

func NewClient(di *do.Injector) (*Client, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewFromConfig(cfg.LLM)
}

func NewFromConfig(cfg config.LLM) (*Client, error) {
	model, err := openai.New(
		openai.WithToken(cfg.Token),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithModel(cfg.Model),
		openai.WithHTTPClient(&http.Client{
			Timeout: cfg.Timeout,
		}),
		openai.WithCallback(LogCallbackHandler{}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}

	return &Client{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	result, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}

	result = strings.TrimSpace(result)
	if result == "" {
		return "", fmt.Errorf("empty completion")
	}

	return result, nil
}
