// Package retrieval implements the relevance retriever: an in-memory index
// of context items with their embedding vectors, searched by cosine
// similarity.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/portfolio-ai-assistant/internal/embedding"
	"github.com/portfolio-ai-assistant/internal/knowledge"
)

const (
	// SimilarityThreshold is the minimum cosine similarity for a search hit.
	// Results at or below the threshold are dropped entirely.
	SimilarityThreshold = 0.3

	// DefaultTopK is the default number of items returned by Search.
	DefaultTopK = 3

	queryCacheSize = 1000
)

// ScoredItem is a context item paired with its similarity to the query.
type ScoredItem struct {
	knowledge.ContextItem
	Similarity float64 `json:"similarity"`
}

// Info summarizes the state of the index.
type Info struct {
	TotalItems     int      `json:"total_items"`
	Types          []string `json:"types"`
	Categories     []string `json:"categories"`
	EmbeddingModel string   `json:"embedding_model"`
	Loaded         bool     `json:"loaded"`
}

// Index holds the context items and their index-aligned embedding matrix.
// Every mutation re-embeds the whole collection; the matrix and item slice
// are swapped together under the write lock, so readers always observe
// len(vectors) == len(items).
type Index struct {
	loader   *knowledge.Loader
	embedder embedding.Embedder
	logger   *zap.Logger

	queryCache *ristretto.Cache[string, []float32]

	mu      sync.RWMutex
	items   []knowledge.ContextItem
	vectors [][]float32
}

// NewIndex creates an empty index. Call Reload to populate it.
func NewIndex(loader *knowledge.Loader, embedder embedding.Embedder, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cache, err := ristretto.NewCache(&ristretto.Config[string, []float32]{
		NumCounters: queryCacheSize * 10,
		MaxCost:     queryCacheSize,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Index{
		loader:     loader,
		embedder:   embedder,
		logger:     logger.Named("retrieval"),
		queryCache: cache,
	}, nil
}

// Reload re-runs the knowledge base loader and rebuilds the embedding matrix
// from scratch. The previous state is kept if loading or embedding fails.
func (idx *Index) Reload(ctx context.Context) error {
	items, err := idx.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load context: %w", err)
	}

	vectors, err := idx.embedAll(ctx, items)
	if err != nil {
		return err
	}

	idx.mu.Lock()
	idx.items = items
	idx.vectors = vectors
	idx.mu.Unlock()

	idx.logger.Info("embedding matrix rebuilt", zap.Int("items", len(items)))
	return nil
}

// Add appends a context item and re-embeds the whole collection.
func (idx *Index) Add(ctx context.Context, item knowledge.ContextItem) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	items := append(append([]knowledge.ContextItem{}, idx.items...), item)
	vectors, err := idx.embedAll(ctx, items)
	if err != nil {
		return err
	}

	idx.items = items
	idx.vectors = vectors
	return nil
}

// Remove deletes the item at position i and re-embeds the remaining
// collection. Out-of-range positions are rejected.
func (idx *Index) Remove(ctx context.Context, i int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if i < 0 || i >= len(idx.items) {
		return fmt.Errorf("item index %d out of range [0, %d)", i, len(idx.items))
	}

	items := make([]knowledge.ContextItem, 0, len(idx.items)-1)
	items = append(items, idx.items[:i]...)
	items = append(items, idx.items[i+1:]...)

	vectors, err := idx.embedAll(ctx, items)
	if err != nil {
		return err
	}

	idx.items = items
	idx.vectors = vectors
	return nil
}

// Search embeds the query and returns up to topK items whose cosine
// similarity is strictly above the threshold, best first. Ties keep
// insertion order. Returns nil when the index is empty.
func (idx *Index) Search(ctx context.Context, query string, topK int) ([]ScoredItem, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	qvec, err := idx.embedQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if len(idx.items) == 0 {
		return nil, nil
	}

	scored := make([]ScoredItem, 0, len(idx.items))
	for i, vec := range idx.vectors {
		scored = append(scored, ScoredItem{
			ContextItem: idx.items[i],
			Similarity:  embedding.Cosine(qvec, vec),
		})
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Similarity > scored[b].Similarity
	})

	results := make([]ScoredItem, 0, topK)
	for _, s := range scored {
		if s.Similarity <= SimilarityThreshold {
			break
		}
		results = append(results, s)
		if len(results) == topK {
			break
		}
	}
	return results, nil
}

// Loaded reports whether the index holds any embedded items.
func (idx *Index) Loaded() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items) > 0 && len(idx.vectors) == len(idx.items)
}

// Len returns the number of indexed items.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.items)
}

// Info returns a summary of the indexed collection.
func (idx *Index) Info() Info {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	types := make(map[string]struct{})
	categories := make(map[string]struct{})
	for _, item := range idx.items {
		types[string(item.Type)] = struct{}{}
		categories[item.Category] = struct{}{}
	}

	return Info{
		TotalItems:     len(idx.items),
		Types:          sortedKeys(types),
		Categories:     sortedKeys(categories),
		EmbeddingModel: idx.embedder.Model(),
		Loaded:         len(idx.items) > 0 && len(idx.vectors) == len(idx.items),
	}
}

// embedAll builds a fresh embedding matrix for items, index-aligned 1:1.
func (idx *Index) embedAll(ctx context.Context, items []knowledge.ContextItem) ([][]float32, error) {
	vectors := make([][]float32, len(items))
	for i, item := range items {
		vec, err := idx.embedder.Embed(ctx, item.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed item %d: %w", i, err)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// embedQuery embeds a query string through the ristretto cache, so repeated
// questions skip the round trip to the embedding model.
func (idx *Index) embedQuery(ctx context.Context, query string) ([]float32, error) {
	if vec, ok := idx.queryCache.Get(query); ok {
		return vec, nil
	}

	vec, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	idx.queryCache.Set(query, vec, 1)
	return vec, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
