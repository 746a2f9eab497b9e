package domain

import (
	"context"
	"fmt"
)

// KeyPrefix namespaces every key reachout writes to the shared cache.
const KeyPrefix = "reachout:"

// Embedder turns condensed profile text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// BatchEmbedder vectorizes multiple texts in a single provider call.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult is one vector plus the provider's token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// BatchEmbeddingResult holds vectors in input order plus aggregate usage.
type BatchEmbeddingResult struct {
	Embeddings   [][]float32
	PromptTokens int
	TotalTokens  int
}

// EmbedTexts vectorizes texts in input order, in one call when e is a
// BatchEmbedder. The result always has one non-empty vector per text;
// anything else from the provider is ErrMalformedResponse.
func EmbedTexts(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	var (
		res BatchEmbeddingResult
		err error
	)
	if be, ok := e.(BatchEmbedder); ok {
		res, err = be.BatchEmbed(ctx, texts)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("batch embed: %w", err)
		}
	} else if res, err = EmbedEach(ctx, e, texts); err != nil {
		return BatchEmbeddingResult{}, err
	}

	if len(res.Embeddings) != len(texts) {
		return BatchEmbeddingResult{}, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(texts), len(res.Embeddings), ErrMalformedResponse)
	}
	for i, v := range res.Embeddings {
		if len(v) == 0 {
			return BatchEmbeddingResult{}, fmt.Errorf("embedding [%d] is empty: %w", i, ErrMalformedResponse)
		}
	}
	return res, nil
}

// EmbedEach calls Embed once per text and sums usage.
func EmbedEach(ctx context.Context, e Embedder, texts []string) (BatchEmbeddingResult, error) {
	out := BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, text := range texts {
		res, err := e.Embed(ctx, text)
		if err != nil {
			return BatchEmbeddingResult{}, fmt.Errorf("embed [%d]: %w", i, err)
		}
		out.Embeddings[i] = res.Embedding
		out.PromptTokens += res.PromptTokens
		out.TotalTokens += res.TotalTokens
	}
	return out, nil
}
