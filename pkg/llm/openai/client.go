// Package openai adapts OpenAI chat completions to the llm.Provider
// contract. Adapted from the teacher's pkg/llm/openai/client.go, retargeted
// to this module's import path and to classified errors (pkg/errs) so
// retry.Do can distinguish a transport failure from an empty response.
package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oblabs/memlifecycle/pkg/errs"
	"github.com/oblabs/memlifecycle/pkg/llm"
)

// Client is an OpenAI-backed llm.Provider.
type Client struct {
	client *openai.Client
	model  string
}

// Config is the configuration for the OpenAI LLM client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// NewClient creates an OpenAI chat-completion client.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errs.New("llm.openai.NewClient", errs.KindFatal, errs.ErrFatal)
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Client{
		client: openai.NewClientWithConfig(conf),
		model:  model,
	}, nil
}

// Generate generates text from a single prompt.
func (c *Client) Generate(ctx context.Context, prompt string, opts ...llm.GenerateOption) (string, error) {
	return c.GenerateWithMessages(ctx, []llm.Message{{Role: "user", Content: prompt}}, opts...)
}

// GenerateWithMessages generates text from a conversation history.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []llm.Message, opts ...llm.GenerateOption) (string, error) {
	if len(messages) == 0 {
		return "", errs.New("llm.openai.GenerateWithMessages", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	options := llm.ApplyGenerateOptions(opts)

	chatMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = openai.ChatCompletionMessage{Role: msg.Role, Content: msg.Content}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
		TopP:        float32(options.TopP),
		Stop:        options.Stop,
	})
	if err != nil {
		return "", errs.New("llm.openai.GenerateWithMessages", errs.KindProviderUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.New("llm.openai.GenerateWithMessages", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	return resp.Choices[0].Message.Content, nil
}

// Close is a no-op; the OpenAI SDK client holds no resources to release.
func (c *Client) Close() error {
	return nil
}
