package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// ErrEmptyResponse is returned when the model answered without usable text
var ErrEmptyResponse = errors.New("llm: empty response")

// LLMClient is the interface for LLM clients (OpenAI, Ollama, etc.)
type LLMClient interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error)
	Model() string
}

// Ensure implementations satisfy the interface
var _ LLMClient = (*OpenAIClient)(nil)
var _ LLMClient = (*OllamaClient)(nil)

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	Temperature float32       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	Message      string `json:"message"`
	TokensUsed   int    `json:"tokens_used"`
	FinishReason string `json:"finish_reason"`
}

// chatBackend is the chat-completion plumbing shared by every
// OpenAI-compatible client.
type chatBackend struct {
	name        string
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      logger.Logger
}

func (b *chatBackend) Model() string {
	return b.model
}

func (b *chatBackend) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, msg := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = b.temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = b.maxTokens
	}

	start := time.Now()
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	duration := time.Since(start)

	if err != nil {
		b.logger.Warn("chat completion failed", "model", b.model, "duration", duration, "error", err)
		return nil, fmt.Errorf("%s chat failed: %w", b.name, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("%s: %w", b.name, ErrEmptyResponse)
	}

	b.logger.Debug("chat completion done", "model", b.model, "tokens", resp.Usage.TotalTokens, "duration", duration)

	return &ChatResponse{
		Message:      resp.Choices[0].Message.Content,
		TokensUsed:   resp.Usage.TotalTokens,
		FinishReason: string(resp.Choices[0].FinishReason),
	}, nil
}

// Complete sends a single prompt with an optional system prompt
func (b *chatBackend) Complete(ctx context.Context, prompt string, systemPrompt ...string) (string, error) {
	messages := []ChatMessage{}
	if len(systemPrompt) > 0 && systemPrompt[0] != "" {
		messages = append(messages, ChatMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt[0]})
	}
	messages = append(messages, ChatMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := b.Chat(ctx, ChatRequest{Messages: messages})
	if err != nil {
		return "", err
	}

	return resp.Message, nil
}
