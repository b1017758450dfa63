package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/brainbuddy/config"
	"github.com/jordanlanch/brainbuddy/pkg/ai/llm"
	"github.com/jordanlanch/brainbuddy/pkg/logger"
)

// Answer is the text delivered to the user and where it came from
type Answer struct {
	Text    string   `json:"answer"`
	Source  string   `json:"source"`
	Notices []string `json:"notices,omitempty"`
}

// Observer is told which tier answered and which tiers failed
type Observer interface {
	AnswerServed(source string)
	ProviderFailed(provider string)
}

// Selector walks its providers in order and falls back to the template
type Selector struct {
	providers []Provider
	observer  Observer
	logger    logger.Logger
}

// NewSelector creates a selector over providers, in priority order
func NewSelector(log logger.Logger, providers ...Provider) *Selector {
	if log == nil {
		log = logger.Default()
	}
	return &Selector{providers: providers, logger: log}
}

// NewSelectorFromConfig builds the local and hosted tiers from cfg. The local
// tier exists only when enabled and the hosted tier only when an API key is set.
func NewSelectorFromConfig(cfg *config.Config, log logger.Logger) *Selector {
	if log == nil {
		log = logger.Default()
	}

	var providers []Provider
	if cfg.LocalModelEnabled {
		client := llm.NewOllamaClient(llm.OllamaConfig{
			BaseURL: cfg.LocalModelBaseURL,
			Model:   cfg.LocalModelName,
		}, log)
		timeout := time.Duration(cfg.LocalModelTimeoutSeconds) * time.Second
		providers = append(providers, NewModelProvider(SourceLocal, client, timeout))
	}
	if cfg.OpenAIAPIKey != "" {
		client := llm.NewOpenAIClient(llm.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIModel,
		}, log)
		providers = append(providers, NewModelProvider(SourceHosted, client, 0))
	}

	return NewSelector(log, providers...)
}

// SetObserver sets the observer notified of every answer
func (s *Selector) SetObserver(o Observer) {
	s.observer = o
}

// Providers returns the names of the configured model tiers
func (s *Selector) Providers() []string {
	names := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		names = append(names, p.Name())
	}
	return names
}

// GetAnswer returns the first usable answer. It never fails: when every
// provider is unavailable the template answer is returned.
func (s *Selector) GetAnswer(ctx context.Context, q Question) Answer {
	q = q.Normalized()

	var notices []string
	for _, p := range s.providers {
		text, err := p.TryAnswer(ctx, q)
		if err == nil && strings.TrimSpace(text) != "" {
			s.served(p.Name())
			return Answer{Text: text, Source: p.Name(), Notices: notices}
		}
		if err == nil {
			err = ErrUnavailable
		}

		s.logger.Info("answer provider unavailable", "provider", p.Name(), "error", err)
		notices = append(notices, fmt.Sprintf("%s model unavailable (%v). Falling back.", p.Name(), err))
		if s.observer != nil {
			s.observer.ProviderFailed(p.Name())
		}
	}

	s.served(SourceTemplate)
	return Answer{
		Text:    TemplateAnswer(q.Text, q.DetailLevel, q.Tone),
		Source:  SourceTemplate,
		Notices: notices,
	}
}

func (s *Selector) served(source string) {
	if s.observer != nil {
		s.observer.AnswerServed(source)
	}
}
