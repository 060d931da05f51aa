package retrieval

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"unicode"

	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/domain"
	"github.com/ahsan-courses/coursebot/internal/repository/snapshot"
)

// vocabEmbedder maps each known word to its own axis, so similarity is word overlap.
type vocabEmbedder struct {
	vocab map[string]int
	dim   int
	err   error
	calls atomic.Int64
}

func newVocabEmbedder(words ...string) *vocabEmbedder {
	v := &vocabEmbedder{vocab: make(map[string]int, len(words)), dim: len(words)}
	for i, w := range words {
		v.vocab[w] = i
	}
	return v
}

func (v *vocabEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	v.calls.Add(1)
	if v.err != nil {
		return domain.EmbeddingResult{}, v.err
	}
	vec := make([]float32, v.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if i, ok := v.vocab[w]; ok {
			vec[i]++
		}
	}
	return domain.EmbeddingResult{Embedding: vec, TotalTokens: len(words)}, nil
}

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct {
	vec []float32
}

func (f fixedEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{Embedding: f.vec}, nil
}

// gatedEmbedder blocks every call until gate is closed.
type gatedEmbedder struct {
	inner   Embedder
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (g *gatedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.inner.Embed(ctx, text)
}

type stubCorpus struct {
	docs []string
	err  error
}

func (c *stubCorpus) Load(context.Context) ([]string, error) {
	return c.docs, c.err
}

// countingStore counts snapshot loads and can block them until released.
type countingStore struct {
	inner   SnapshotStore
	loads   atomic.Int64
	gate    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (c *countingStore) Persist(documents []string, vectors [][]float32) error {
	return c.inner.Persist(documents, vectors)
}

func (c *countingStore) Load() ([]string, [][]float32, error) {
	c.loads.Add(1)
	if c.entered != nil {
		c.once.Do(func() { close(c.entered) })
	}
	if c.gate != nil {
		<-c.gate
	}
	return c.inner.Load()
}

type failingStore struct {
	SnapshotStore
}

func (failingStore) Persist([]string, [][]float32) error {
	return errors.New("disk full")
}

var courseCorpus = []string{
	"AI Automation covers RPA and workflow bots.",
	"Data Science covers statistics and pandas.",
	"Generative AI covers diffusion and LLMs.",
}

func courseEmbedder() *vocabEmbedder {
	return newVocabEmbedder(
		"automation", "rpa", "workflow", "bots",
		"data", "science", "statistics", "pandas",
		"generative", "diffusion", "llms",
	)
}

func snapshotPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "kb_store.bin")
}

func newTestService(t *testing.T, emb Embedder, corpus Corpus) (*Service, *snapshot.Store) {
	t.Helper()
	store := snapshot.New(snapshotPath(t))
	return New(emb, corpus, store, zap.NewNop()), store
}
