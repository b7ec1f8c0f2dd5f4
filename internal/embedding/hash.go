package embedding

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// HashEmbedder produces deterministic pseudo-embeddings from token and
// character hashes. It keeps the retriever functional without a running
// model server: identical text always maps to an identical vector, and texts
// sharing vocabulary land near each other. Used for tests and offline mode.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder creates a hash-based embedder with the given dimension.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = 384
	}
	return &HashEmbedder{dim: dim}
}

// Embed converts text into a deterministic, L2-normalized vector.
func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	text = strings.ToLower(strings.TrimSpace(text))

	// Token hashes spread shared vocabulary across shared dimensions. The
	// index depends on the word alone, so overlap survives reordering.
	for _, word := range strings.Fields(text) {
		h := 0
		for _, r := range word {
			h = h*31 + int(r)
		}
		for j := 0; j < 3; j++ {
			idx := abs(h+j*17) % e.dim
			vec[idx] += 1 + float32(abs(h)%256)/256.0
		}
	}

	// Character features give word order a faint influence, weighted well
	// below the token signal.
	for i, char := range text {
		idx := abs(int(char)*7+i*11) % e.dim
		vec[idx] += float32(char) / 16384.0
	}

	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		inv := float32(1.0 / math.Sqrt(float64(norm)))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec, nil
}

// Model identifies the hash scheme and its dimension.
func (e *HashEmbedder) Model() string {
	return fmt.Sprintf("hash-%d", e.dim)
}

// Close is a no-op.
func (e *HashEmbedder) Close() error {
	return nil
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
