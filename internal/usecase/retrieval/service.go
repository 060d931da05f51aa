package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ahsan-courses/coursebot/internal/domain"
	"github.com/ahsan-courses/coursebot/internal/domain/knowledge"
	"github.com/ahsan-courses/coursebot/internal/metrics"
)

// Index sources recorded in Status.
const (
	SourceBuild    = "build"
	SourceSnapshot = "snapshot"
)

// state is an immutable snapshot of the served index. Replaced wholesale, never mutated.
type state struct {
	documents []string
	vectors   [][]float32
	index     *knowledge.Index
	source    string
	builtAt   time.Time
}

// Status describes the served knowledge base.
type Status struct {
	Loaded    bool
	Documents int
	Dimension int
	Source    string
	BuiltAt   time.Time
}

// Service owns the knowledge base index: building, persisting, loading and querying it.
// Queries are lock-free; Build, Load and Rebuild are serialized.
type Service struct {
	docs      Embedder
	queries   Embedder
	corpus    Corpus
	snapshots SnapshotStore
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	state atomic.Pointer[state]
	loads singleflight.Group
}

// New creates a retrieval service. The document embedder also embeds queries
// unless WithQueryEmbedder overrides it.
func New(docs Embedder, corpus Corpus, snapshots SnapshotStore, logger *zap.Logger) *Service {
	return &Service{
		docs:      docs,
		queries:   docs,
		corpus:    corpus,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

// WithQueryEmbedder sets a separate embedder for query text (e.g. a different instruction prefix).
func (s *Service) WithQueryEmbedder(e Embedder) *Service {
	s.queries = e
	return s
}

// Build embeds every document and atomically replaces the served index.
func (s *Service) Build(ctx context.Context, documents []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.build(ctx, documents)
	return err
}

// Persist writes the served index to the snapshot store.
func (s *Service) Persist() error {
	st := s.state.Load()
	if st == nil {
		return domain.ErrIndexUnavailable
	}
	if err := s.snapshots.Persist(st.documents, st.vectors); err != nil {
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Load restores the index from the snapshot store and swaps it in.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx)
}

// Rebuild reloads the corpus, builds a fresh index and persists it.
func (s *Service) Rebuild(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	documents, err := s.corpus.Load(ctx)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}

	st, err := s.build(ctx, documents)
	if err != nil {
		return err
	}

	if err := s.snapshots.Persist(st.documents, st.vectors); err != nil {
		// the in-memory index stays in service
		return fmt.Errorf("persist snapshot: %w", err)
	}
	return nil
}

// Warmup makes the knowledge base ready: snapshot first, rebuild from the corpus
// when the snapshot is missing or corrupt.
func (s *Service) Warmup(ctx context.Context) error {
	err := s.Load(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrSnapshotNotFound) && !errors.Is(err, domain.ErrSnapshotCorrupt) {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	s.logger.Info("Snapshot unusable, rebuilding knowledge base", zap.Error(err))

	if err := s.Rebuild(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// Query returns up to k documents closest to text, nearest first.
// An unavailable index or an embedding failure yields no documents and no error;
// a query vector of the wrong dimension is an error.
func (s *Service) Query(ctx context.Context, text string, k int) ([]string, error) {
	start := time.Now()
	defer func() {
		metrics.KnowledgeQueryDuration.Observe(time.Since(start).Seconds())
	}()

	if k <= 0 {
		metrics.KnowledgeQueriesTotal.WithLabelValues("empty").Inc()
		return []string{}, nil
	}

	st := s.state.Load()
	if st == nil {
		st = s.lazyLoad(ctx)
	}
	if st == nil {
		metrics.KnowledgeQueriesTotal.WithLabelValues("unavailable").Inc()
		return []string{}, nil
	}

	emb, err := s.queries.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("Query embedding failed", zap.Error(err))
		metrics.KnowledgeQueriesTotal.WithLabelValues("embed_error").Inc()
		return []string{}, nil
	}

	domain.UsageFromContext(ctx).AddEmbeddingTokens(emb.TotalTokens)

	neighbors, err := st.index.Search(emb.Embedding, k)
	if err != nil {
		metrics.KnowledgeQueriesTotal.WithLabelValues("dimension_mismatch").Inc()
		return nil, fmt.Errorf("search index: %w", err)
	}

	out := make([]string, len(neighbors))
	for i, n := range neighbors {
		out[i] = st.documents[n.Position]
	}

	result := "ok"
	if len(out) == 0 {
		result = "empty"
	}
	metrics.KnowledgeQueriesTotal.WithLabelValues(result).Inc()

	return out, nil
}

// Status reports the served index.
func (s *Service) Status() Status {
	st := s.state.Load()
	if st == nil {
		return Status{}
	}
	return Status{
		Loaded:    true,
		Documents: st.index.Len(),
		Dimension: st.index.Dim(),
		Source:    st.source,
		BuiltAt:   st.builtAt,
	}
}

// Ready reports whether an index is being served.
func (s *Service) Ready() bool { return s.state.Load() != nil }

// build embeds documents, constructs the index and swaps it in. Caller holds s.mu.
func (s *Service) build(ctx context.Context, documents []string) (*state, error) {
	if len(documents) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	res, err := domain.EmbedAll(ctx, s.docs, documents)
	if err != nil {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceBuild, "error").Inc()
		return nil, fmt.Errorf("embed documents: %w", err)
	}

	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)

	if len(res.Embeddings) != len(documents) {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceBuild, "error").Inc()
		return nil, fmt.Errorf("%w: got %d vectors for %d documents",
			domain.ErrDimensionMismatch, len(res.Embeddings), len(documents))
	}

	index, err := knowledge.NewIndex(res.Embeddings)
	if err != nil {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceBuild, "error").Inc()
		return nil, fmt.Errorf("build index: %w", err)
	}

	st := &state{
		documents: append([]string(nil), documents...),
		vectors:   res.Embeddings,
		index:     index,
		source:    SourceBuild,
		builtAt:   s.now(),
	}
	s.swap(st)

	metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceBuild, "ok").Inc()
	s.logger.Info("Knowledge base built",
		zap.Int("documents", index.Len()),
		zap.Int("dimension", index.Dim()),
		zap.Int("total_tokens", res.TotalTokens),
	)

	return st, nil
}

// load reads the snapshot and swaps it in. Caller holds s.mu.
func (s *Service) load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	documents, vectors, err := s.snapshots.Load()
	if err != nil {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceSnapshot, "error").Inc()
		return fmt.Errorf("load snapshot: %w", err)
	}

	index, err := knowledge.NewIndex(vectors)
	if err != nil {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceSnapshot, "error").Inc()
		return fmt.Errorf("%w: %w", domain.ErrSnapshotCorrupt, err)
	}
	if index.Len() != len(documents) {
		metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceSnapshot, "error").Inc()
		return fmt.Errorf("%w: %d documents, %d vectors",
			domain.ErrSnapshotCorrupt, len(documents), index.Len())
	}

	s.swap(&state{
		documents: documents,
		vectors:   vectors,
		index:     index,
		source:    SourceSnapshot,
		builtAt:   s.now(),
	})

	metrics.KnowledgeRebuildsTotal.WithLabelValues(SourceSnapshot, "ok").Inc()
	s.logger.Info("Knowledge base loaded from snapshot",
		zap.Int("documents", index.Len()),
		zap.Int("dimension", index.Dim()),
	)
	return nil
}

// EnsureLoaded lazily loads the snapshot when nothing is served yet and reports
// whether an index is available afterwards.
func (s *Service) EnsureLoaded(ctx context.Context) bool {
	if s.state.Load() != nil {
		return true
	}
	return s.lazyLoad(ctx) != nil
}

// lazyLoad tries the snapshot once on behalf of every concurrent caller. It never
// waits for a Build or Rebuild in progress, and gives up when ctx is done.
func (s *Service) lazyLoad(ctx context.Context) *state {
	ch := s.loads.DoChan("load", func() (any, error) {
		// a writer holding the lock publishes its own state
		if !s.mu.TryLock() {
			return s.state.Load(), nil
		}
		defer s.mu.Unlock()

		// a Build may have landed in between
		if st := s.state.Load(); st != nil {
			return st, nil
		}

		// the first caller's cancellation must not fail the others
		if err := s.load(context.WithoutCancel(ctx)); err != nil {
			s.logger.Debug("Knowledge base unavailable", zap.Error(err))
			return nil, err
		}
		return s.state.Load(), nil
	})

	select {
	case res := <-ch:
		st, _ := res.Val.(*state)
		return st
	case <-ctx.Done():
		return s.state.Load()
	}
}

func (s *Service) swap(st *state) {
	s.state.Store(st)
	metrics.KnowledgeDocuments.Set(float64(st.index.Len()))
}
