// Package openai adapts the OpenAI embeddings API to the embedder.Provider
// contract. Adapted from the teacher's pkg/embedder/openai/client.go,
// narrowed to float32 vectors (spec.md §3: "fixed-dimension vector of
// 32-bit floats") and to classified errors (pkg/errs) instead of bare
// fmt/errors values so the engine's retry policy can tell a transport
// failure from a malformed response.
package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"

	"github.com/oblabs/memlifecycle/pkg/errs"
)

// Client is an OpenAI-backed embedder.Provider.
type Client struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
}

// Config is the configuration for the OpenAI embedder client.
type Config struct {
	APIKey     string
	BaseURL    string
	Dimensions int
}

// NewClient creates an OpenAI embedder client using the Ada v2 embedding model.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errs.New("embedder.openai.NewClient", errs.KindFatal, errs.ErrFatal)
	}

	conf := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		conf.BaseURL = cfg.BaseURL
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		dimensions = 1536
	}

	return &Client{
		client:     openai.NewClientWithConfig(conf),
		model:      openai.AdaEmbeddingV2,
		dimensions: dimensions,
	}, nil
}

// Embed converts a single text into a vector.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, errs.New("embedder.openai.Embed", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, errs.New("embedder.openai.Embed", errs.KindProviderUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, errs.New("embedder.openai.Embed", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	return resp.Data[0].Embedding, nil
}

// EmbedBatch converts multiple texts into vectors in one call.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errs.New("embedder.openai.EmbedBatch", errs.KindInvalidInput, errs.ErrInvalidInput)
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: c.model,
	})
	if err != nil {
		return nil, errs.New("embedder.openai.EmbedBatch", errs.KindProviderUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, errs.New("embedder.openai.EmbedBatch", errs.KindProviderUnavailable, errs.ErrProviderUnavailable)
	}

	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Dimensions returns the configured vector length.
func (c *Client) Dimensions() int {
	return c.dimensions
}

// Close is a no-op; the OpenAI SDK client holds no resources to release.
func (c *Client) Close() error {
	return nil
}
