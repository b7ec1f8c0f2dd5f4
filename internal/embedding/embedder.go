// Package embedding provides text-embedding clients and vector math for the
// relevance retriever.
package embedding

import "context"

// Embedder converts a text string into a fixed-length vector.
type Embedder interface {
	// Embed generates an L2-normalized embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// Model identifies the embedding model, for reporting.
	Model() string
	// Close cleans up resources.
	Close() error
}
