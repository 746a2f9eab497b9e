package semantic

import (
	"context"

	"github.com/kailas-cloud/reachout/internal/domain"
)

// Embedder vectorizes profile text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
