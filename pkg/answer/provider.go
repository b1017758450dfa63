package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/brainbuddy/pkg/ai/llm"
)

// Provider sources, also used as metric labels
const (
	SourceLocal    = "local"
	SourceHosted   = "hosted"
	SourceTemplate = "template"
)

// ErrUnavailable marks a provider that produced no usable text
var ErrUnavailable = errors.New("answer provider unavailable")

// Provider is one tier of the answer chain. An error or empty text means the
// next tier is tried.
type Provider interface {
	Name() string
	TryAnswer(ctx context.Context, q Question) (string, error)
}

// ModelProvider answers with a chat model
type ModelProvider struct {
	name    string
	client  llm.LLMClient
	timeout time.Duration
}

// NewModelProvider creates a provider. A positive timeout bounds every call.
func NewModelProvider(name string, client llm.LLMClient, timeout time.Duration) *ModelProvider {
	return &ModelProvider{name: name, client: client, timeout: timeout}
}

func (p *ModelProvider) Name() string { return p.name }

// TryAnswer makes exactly one call to the model
func (p *ModelProvider) TryAnswer(ctx context.Context, q Question) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	text, err := p.client.Complete(ctx, q.Text, llm.TutorSystemPrompt(string(q.Tone), q.DetailLevel))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	return text, nil
}
