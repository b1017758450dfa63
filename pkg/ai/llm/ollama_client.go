package llm

import (
	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OllamaClient wraps Ollama API (OpenAI compatible)
type OllamaClient struct {
	chatBackend
}

// OllamaConfig for Ollama client
type OllamaConfig struct {
	BaseURL     string  // default: http://localhost:11434/v1
	Model       string  // default: llama3.1:8b
	Temperature float32 // default: 0.7
	MaxTokens   int     // default: 1200
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(cfg OllamaConfig, log logger.Logger) *OllamaClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.1:8b"
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

	// API key not needed for Ollama
	config := openai.DefaultConfig("ollama")
	config.BaseURL = cfg.BaseURL

	log.Info("ollama client initialized", "model", cfg.Model, "url", cfg.BaseURL)

	return &OllamaClient{chatBackend{
		name:        "ollama",
		client:      openai.NewClientWithConfig(config),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      log.With("llm", "ollama"),
	}}
}
