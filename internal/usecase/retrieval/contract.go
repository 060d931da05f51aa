package retrieval

import (
	"context"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// Embedder vectorizes text. Build uses BatchEmbed when the embedder supports it.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Corpus yields the source documents in a stable order.
type Corpus interface {
	Load(ctx context.Context) ([]string, error)
}

// SnapshotStore persists and restores the built index.
type SnapshotStore interface {
	Persist(documents []string, vectors [][]float32) error
	Load() ([]string, [][]float32, error)
}
