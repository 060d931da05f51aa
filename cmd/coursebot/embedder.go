package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/config"
	"github.com/ahsan-courses/coursebot/internal/db"
	"github.com/ahsan-courses/coursebot/internal/domain"
	"github.com/ahsan-courses/coursebot/internal/metrics"
	"github.com/ahsan-courses/coursebot/internal/repository/embcache"
	"github.com/ahsan-courses/coursebot/internal/transport/hashing"
	openaiEmb "github.com/ahsan-courses/coursebot/internal/transport/openai"
	embeddinguc "github.com/ahsan-courses/coursebot/internal/usecase/embedding"
)

// buildEmbedder assembles the decorator chain: provider -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg config.EmbeddingConfig,
	instruction string,
	cache db.KVStore,
	cacheCfg config.CacheConfig,
	logger *zap.Logger,
) domain.Embedder {
	model := embeddingModel(cfg)

	var embedder domain.Embedder = buildBaseEmbedder(cfg, logger)

	if cache != nil {
		embedder = embcache.New(embedder, cache, metrics.EmbeddingCacheTotal, logger).
			WithNamespace(fmt.Sprintf("%s:%s:%d", cfg.Provider, model, cfg.Dimensions)).
			WithTTL(time.Duration(cacheCfg.TTLSec) * time.Second)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, model, embeddinguc.Options{
		Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
	}, logger)

	// Instruction prefix (outermost: the cache key includes the instruction)
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}

func buildBaseEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) domain.Embedder {
	if cfg.Provider == config.ProviderHashing {
		return hashing.New(cfg.Dimensions)
	}
	return openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Logger:     logger,
	})
}

// embeddingModel names the model for metrics and cache namespaces.
func embeddingModel(cfg config.EmbeddingConfig) string {
	if cfg.Provider == config.ProviderHashing {
		return fmt.Sprintf("xxhash-%d", cfg.Dimensions)
	}
	return cfg.Model
}

// embeddingHealthChecker adapts a domain.Embedder to the health ProviderChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func (h embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
