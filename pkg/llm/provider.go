package llm

import (
	"context"
	"log"
	"time"

	"ai-knowledge-bot/pkg/apperror"
	"ai-knowledge-bot/pkg/retry"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string // Override default model
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ResilientProvider wraps a provider with per-attempt timeouts and bounded
// retries. Exhausted retries surface as service errors.
type ResilientProvider struct {
	inner  LLMProvider
	policy retry.Policy
}

var _ LLMProvider = &ResilientProvider{}

func NewResilientProvider(inner LLMProvider, policy retry.Policy) *ResilientProvider {
	return &ResilientProvider{inner: inner, policy: policy}
}

func (p *ResilientProvider) Chat(ctx context.Context, history []Message, options ...Option) (string, error) {
	out, err := retry.Do(ctx, p.policy, func(attempt uint, err error, wait time.Duration) {
		log.Printf("[WARN] LLM attempt %d failed, retrying in %s: %v", attempt, wait, err)
	}, func(ctx context.Context) (string, error) {
		return p.inner.Chat(ctx, history, options...)
	})
	if err != nil {
		return "", apperror.Service("llm.Chat", err)
	}
	return out, nil
}

func (p *ResilientProvider) Generate(ctx context.Context, prompt string, options ...Option) (string, error) {
	return p.Chat(ctx, []Message{{Role: RoleUser, Content: prompt}}, options...)
}
