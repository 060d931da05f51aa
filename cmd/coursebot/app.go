package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/config"
	"github.com/ahsan-courses/coursebot/internal/db"
	dbRedis "github.com/ahsan-courses/coursebot/internal/db/redis"
	"github.com/ahsan-courses/coursebot/internal/domain"
	logpkg "github.com/ahsan-courses/coursebot/internal/logger"
	"github.com/ahsan-courses/coursebot/internal/metrics"
	"github.com/ahsan-courses/coursebot/internal/repository/corpus"
	"github.com/ahsan-courses/coursebot/internal/repository/snapshot"
	"github.com/ahsan-courses/coursebot/internal/usecase/retrieval"
)

// appLoader assembles the application for a config environment.
type appLoader func(env string) (*app, error)

// app is the part of the object graph shared by every command: config,
// logger, embedders and the knowledge base. serve builds the rest.
type app struct {
	env    string
	cfg    config.Config
	logger *zap.Logger

	cache     db.Cache // nil when the embedding cache is disabled
	docs      domain.Embedder
	queries   domain.Embedder
	corpus    *corpus.Loader
	snapshots *snapshot.Store
	knowledge *retrieval.Service
}

func newApp(env string) (*app, error) {
	cfg, err := config.Load(env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := buildApp(env, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// buildApp wires the knowledge base from an already loaded config.
func buildApp(env string, cfg config.Config, logger *zap.Logger) (*app, error) {
	// Explicit registration (no init()) so tests can build apps repeatedly
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterKnowledgeMetrics()

	a := &app{env: env, cfg: cfg, logger: logger}

	if cfg.Cache.Enabled() {
		cache, err := openCache(cfg.Cache)
		if err != nil {
			return nil, err
		}
		a.cache = cache
		logger.Info("Embedding cache enabled", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	a.docs = buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, a.cache, cfg.Cache, logger)
	a.queries = buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, a.cache, cfg.Cache, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", embeddingModel(cfg.Embedding)),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	a.corpus = corpus.New(cfg.Knowledge.Dir, cfg.Knowledge.Extension)
	a.snapshots = snapshot.New(cfg.Knowledge.SnapshotPath)
	a.knowledge = retrieval.New(a.docs, a.corpus, a.snapshots, logger).
		WithQueryEmbedder(a.queries)

	return a, nil
}

func openCache(cfg config.CacheConfig) (db.Cache, error) {
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Addrs,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create cache store: %w", err)
	}

	timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(context.Background(), timeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("cache not ready: %w", err)
	}
	return store, nil
}

// Close releases the cache connection and flushes the logger.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	_ = a.logger.Sync()
}
