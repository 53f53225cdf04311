package vectorstore

import (
	"context"
	"fmt"

	"github.com/ppiankov/hanrei/internal/llm"
	"github.com/ppiankov/hanrei/internal/model"
)

// Searcher finds the k stored excerpts nearest to a vector
type Searcher interface {
	Search(ctx context.Context, embedding []float32, k int) ([]model.CaseDocument, error)
}

// Index answers text queries by embedding them and searching the store
type Index struct {
	searcher Searcher
	embedder llm.Embedder
}

// NewIndex creates an index over searcher using embedder for queries
func NewIndex(searcher Searcher, embedder llm.Embedder) *Index {
	return &Index{searcher: searcher, embedder: embedder}
}

// Retrieve returns the k excerpts most similar to query, most similar first
func (i *Index) Retrieve(ctx context.Context, query string, k int) ([]model.CaseDocument, error) {
	vectors, err := i.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	docs, err := i.searcher.Search(ctx, vectors[0], k)
	if err != nil {
		return nil, err
	}
	return docs, nil
}
