// Package embedder defines the embedding provider contract (C1): mapping
// text to a fixed-dimension float vector. Adapted from the teacher's
// pkg/embedder/base.go Provider interface.
package embedder

import "context"

// Provider maps text to vector embeddings.
//
// Implementations must be deterministic for identical input within a single
// provider instance (spec.md §4.1); result norm may be arbitrary, callers
// normalize on demand.
type Provider interface {
	// Embed converts a single text into an embedding vector.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts multiple texts into embedding vectors in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed vector length this provider produces.
	// Never changes over the provider's lifetime.
	Dimensions() int

	// Close releases provider resources.
	Close() error
}
