package llm

import (
	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient talks to the hosted OpenAI API or any compatible gateway
type OpenAIClient struct {
	chatBackend
}

// Config for OpenAI client
type Config struct {
	APIKey      string
	BaseURL     string  // optional alternate endpoint
	Model       string  // default: gpt-4o-mini
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 1200
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(cfg Config, log logger.Logger) *OpenAIClient {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1200
	}
	if log == nil {
		log = logger.Default()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{chatBackend{
		name:        "openai",
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log.With("llm", "openai"),
	}}
}
