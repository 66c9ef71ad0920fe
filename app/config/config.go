package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const defaultPath = "config.yaml"

type Config struct {
	Log       Log       `yaml:"log"`
	Assistant Assistant `yaml:"assistant"`
	LLM       LLM       `yaml:"llm"`
	Memory    Memory    `yaml:"memory"`
	Notepad   Notepad   `yaml:"notepad"`
	Search    Search    `yaml:"search"`
	Voice     Voice     `yaml:"voice"`
	API       API       `yaml:"api"`
	Console   Console   `yaml:"console"`
}

type Assistant struct {
	// Name used as the speaker tag of assistant turns
	Name string `yaml:"name" example:"LUDO" validate:"required"`
	// System prompt used when web search is reachable
	OnlinePrompt string `yaml:"online_prompt"`
	// System prompt used when web search failed
	OfflinePrompt string `yaml:"offline_prompt"`
	// Reply used when the language model call fails
	ErrorReply string `yaml:"error_reply"`
	// Reply used when a note is saved
	NoteReply string `yaml:"note_reply"`
}

type LLM struct {
	// OpenAI compatible base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required,url"`
	// API token
	Token string `yaml:"token" example:"sk-or-v1-abc123" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"google/gemini-2.0-flash-exp:free" validate:"required"`
	// Sampling temperature
	Temperature float64 `yaml:"temperature" example:"0.7" validate:"gte=0,lte=2"`
	// Completion token limit
	MaxTokens int `yaml:"max_tokens" example:"500" validate:"gte=0"`
	// Request timeout
	Timeout time.Duration `yaml:"timeout" example:"30s"`
}

type Memory struct {
	// Directory holding memory.json and summary.txt
	Dir string `yaml:"dir" example:"data"`
	// Maximum number of utterances kept in the transcript
	MaxHistory int `yaml:"max_history" example:"20" validate:"gte=0"`
	// Number of most recent utterances sent verbatim
	RecentCount int `yaml:"recent_count" example:"10" validate:"gte=0"`
	// Token budget for context plus grounding
	MaxContextTokens int `yaml:"max_context_tokens" example:"2000" validate:"gte=0"`
	// Tokens reserved when the context is trimmed
	SafetyMargin int `yaml:"safety_margin" example:"100" validate:"gte=0"`
	// Cap of the running summary in characters
	SummaryMaxLength int `yaml:"summary_max_length" example:"500" validate:"gte=0"`
	// Cap of a summary fragment built while composing
	ComposeSummaryLength int `yaml:"compose_summary_length" example:"300" validate:"gte=0"`
	// Cap of a summary fragment built from evicted utterances
	EvictSummaryLength int `yaml:"evict_summary_length" example:"200" validate:"gte=0"`
}

type Notepad struct {
	// Maximum number of notes kept
	MaxEntries int `yaml:"max_entries" example:"50" validate:"gte=0"`
}

type Search struct {
	// Enable web search grounding
	Enabled bool `yaml:"enabled" example:"true"`
	// Search backend
	Provider string `yaml:"provider" example:"duckduckgo" validate:"omitempty,oneof=duckduckgo mcp"`
	// Number of results per query
	Results int `yaml:"results" example:"3" validate:"gte=0"`
	// Number of cached queries
	CacheSize int `yaml:"cache_size" example:"20" validate:"gte=0"`
	// Maximum snippet length in characters
	SnippetLength int `yaml:"snippet_length" example:"200" validate:"gte=0"`
	// Search request timeout
	Timeout time.Duration `yaml:"timeout" example:"15s"`
	// DuckDuckGo HTML endpoint
	BaseURL string `yaml:"base_url" example:"https://html.duckduckgo.com/html/"`
	// MCP search server
	MCP MCPSearch `yaml:"mcp"`
}

type MCPSearch struct {
	// Command starting the MCP server over stdio
	Command string `yaml:"command" example:"docker"`
	// Command arguments
	Args []string `yaml:"args" example:"[run, --rm, -i, mcp/duckduckgo]"`
	// Tool name to call
	Tool string `yaml:"tool" example:"search"`
}

type Voice struct {
	// Enable microphone transcription
	Enabled bool `yaml:"enabled" example:"false"`
	// Path to the Yandex Cloud service account key
	KeyFile string `yaml:"key_file" example:"service-account-key.json"`
	// Recognition language
	Language string `yaml:"language" example:"en-US"`
	// Recognition model
	Model string `yaml:"model" example:"general"`
	// ffmpeg input format
	InputFormat string `yaml:"input_format" example:"pulse"`
	// ffmpeg input device
	InputDevice string `yaml:"input_device" example:"default"`
}

type API struct {
	// Enable the HTTP intake API
	Enabled bool `yaml:"enabled" example:"true"`
	// Listen address
	Listen string `yaml:"listen" example:"127.0.0.1:8080"`
}

type Console struct {
	// Read typed queries from stdin
	Enabled bool `yaml:"enabled" example:"true"`
}

type Log struct {
	// Log debug records to the console
	Debug bool `yaml:"debug" example:"false"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	return LoadFile(defaultPath)
}

func LoadFile(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	result.applyDefaults()

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func (c *Config) applyDefaults() {
	if c.Assistant.Name == "" {
		c.Assistant.Name = "LUDO"
	}
	if c.Assistant.OnlinePrompt == "" {
		c.Assistant.OnlinePrompt = "You are " + c.Assistant.Name + ", a helpful AI assistant with internet access. Use search results when provided for accurate, current information."
	}
	if c.Assistant.OfflinePrompt == "" {
		c.Assistant.OfflinePrompt = "You are " + c.Assistant.Name + ", a helpful AI assistant. Internet access currently unavailable."
	}
	if c.Assistant.ErrorReply == "" {
		c.Assistant.ErrorReply = "I'm sorry, I encountered an error."
	}
	if c.Assistant.NoteReply == "" {
		c.Assistant.NoteReply = "Got it! Note saved to your notepad."
	}

	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.MaxTokens == 0 {
		c.LLM.MaxTokens = 1000
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = 0.7
	}

	if c.Memory.Dir == "" {
		c.Memory.Dir = "data"
	}
	if c.Memory.MaxHistory == 0 {
		c.Memory.MaxHistory = 20
	}
	if c.Memory.RecentCount == 0 {
		c.Memory.RecentCount = 10
	}
	if c.Memory.MaxContextTokens == 0 {
		c.Memory.MaxContextTokens = 2000
	}
	if c.Memory.SafetyMargin == 0 {
		c.Memory.SafetyMargin = 100
	}
	if c.Memory.SummaryMaxLength == 0 {
		c.Memory.SummaryMaxLength = 500
	}
	if c.Memory.ComposeSummaryLength == 0 {
		c.Memory.ComposeSummaryLength = 300
	}
	if c.Memory.EvictSummaryLength == 0 {
		c.Memory.EvictSummaryLength = 200
	}

	if c.Notepad.MaxEntries == 0 {
		c.Notepad.MaxEntries = 50
	}

	if c.Search.Provider == "" {
		c.Search.Provider = "duckduckgo"
	}
	if c.Search.Results == 0 {
		c.Search.Results = 3
	}
	if c.Search.CacheSize == 0 {
		c.Search.CacheSize = 20
	}
	if c.Search.SnippetLength == 0 {
		c.Search.SnippetLength = 200
	}
	if c.Search.Timeout == 0 {
		c.Search.Timeout = 15 * time.Second
	}
	if c.Search.BaseURL == "" {
		c.Search.BaseURL = "https://html.duckduckgo.com/html/"
	}
	if c.Search.MCP.Tool == "" {
		c.Search.MCP.Tool = "search"
	}

	if c.Voice.KeyFile == "" {
		c.Voice.KeyFile = "service-account-key.json"
	}
	if c.Voice.Language == "" {
		c.Voice.Language = "en-US"
	}
	if c.Voice.Model == "" {
		c.Voice.Model = "general"
	}
	if c.Voice.InputFormat == "" {
		c.Voice.InputFormat = "pulse"
	}
	if c.Voice.InputDevice == "" {
		c.Voice.InputDevice = "default"
	}

	if c.API.Listen == "" {
		c.API.Listen = "127.0.0.1:8080"
	}
}
