package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// ProviderError reports a failed call to the LLM provider: a non-success
// status from the API or a transport failure. Calls are never retried;
// the error propagates to the caller as-is.
type ProviderError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("llm provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm provider error: %s", e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// CompletionOptions tune a single chat-completion call. Zero values fall
// back to the documented defaults, so an explicit temperature of 0 is
// indistinguishable from "unset" and becomes 0.7.
type CompletionOptions struct {
	Temperature float32 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	TopP        float32 `json:"topP,omitempty"`
}

const (
	defaultTemperature float32 = 0.7
	defaultMaxTokens           = 4000
	defaultTopP        float32 = 1
)

func (o CompletionOptions) withDefaults() CompletionOptions {
	if o.Temperature == 0 {
		o.Temperature = defaultTemperature
	}
	if o.MaxTokens == 0 {
		o.MaxTokens = defaultMaxTokens
	}
	if o.TopP == 0 {
		o.TopP = defaultTopP
	}
	return o
}

// Generator wraps the LLM provider client. All outbound model calls go
// through Complete or CompleteStream.
type Generator struct {
	client       *openai.Client
	defaultModel string
	hasKey       bool
}

// NewGenerator builds a Generator for the given API key. baseURL overrides
// the provider endpoint for OpenAI-compatible backends; defaultModel is a
// short registry name and may be empty.
func NewGenerator(apiKey, baseURL, defaultModel string) *Generator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Generator{
		client:       openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
		hasKey:       apiKey != "",
	}
}

// Configured reports whether a provider API key was supplied.
func (g *Generator) Configured() bool {
	return g != nil && g.hasKey
}

// DefaultModelName returns the short name used when requests omit a model.
func (g *Generator) DefaultModelName() string {
	return g.defaultModel
}

// Complete performs a single chat-completion call and returns the model's
// text output. model must already be a provider identifier (see
// ResolveModel).
func (g *Generator) Complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage, opts CompletionOptions) (string, error) {
	opts = opts.withDefaults()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
	})
	if err != nil {
		return "", wrapProviderError(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &ProviderError{Message: "provider returned an empty response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteStream starts a streaming chat-completion call. The caller owns
// the returned stream and must Close it; cancelling ctx aborts the
// underlying provider connection.
func (g *Generator) CompleteStream(ctx context.Context, model string, messages []openai.ChatCompletionMessage, opts CompletionOptions) (*openai.ChatCompletionStream, error) {
	opts = opts.withDefaults()
	stream, err := g.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		TopP:        opts.TopP,
		Stream:      true,
	})
	if err != nil {
		return nil, wrapProviderError(err)
	}
	return stream, nil
}

func wrapProviderError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}
	return &ProviderError{Message: err.Error(), Err: err}
}
