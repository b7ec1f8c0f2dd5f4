package embedding

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashEmbedderDeterministic(t *testing.T) {
	e := NewHashEmbedder(64)

	a, err := e.Embed(context.Background(), "go programming experience")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "go programming experience")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
}

func TestHashEmbedderNormalized(t *testing.T) {
	e := NewHashEmbedder(128)

	vec, err := e.Embed(context.Background(), "full stack developer")
	require.NoError(t, err)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-4)
}

func TestHashEmbedderSharedVocabularyScoresHigher(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	query, _ := e.Embed(ctx, "python backend skills")
	related, _ := e.Embed(ctx, "backend skills in python and go")
	unrelated, _ := e.Embed(ctx, "watercolor landscape painting techniques")

	assert.Greater(t, Cosine(query, related), Cosine(query, unrelated))
}

func TestHashEmbedderOverlapSurvivesReordering(t *testing.T) {
	e := NewHashEmbedder(256)
	ctx := context.Background()

	a, err := e.Embed(ctx, "backend skills python")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "python backend skills")
	require.NoError(t, err)

	// Same vocabulary in a different order stays nearly identical; only the
	// faint character features differ.
	assert.Greater(t, Cosine(a, b), 0.95)
}

func TestCosine(t *testing.T) {
	assert.InDelta(t, 1.0, Cosine([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, Cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Cosine([]float32{1, 0}, []float32{-1, 0}), 1e-9)

	// Mismatched lengths and zero vectors score 0.
	assert.Zero(t, Cosine([]float32{1, 0}, []float32{1}))
	assert.Zero(t, Cosine([]float32{0, 0}, []float32{1, 1}))
	assert.Zero(t, Cosine(nil, nil))
}
