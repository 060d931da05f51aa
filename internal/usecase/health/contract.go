package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks an external model provider (embeddings or LLM).
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// KnowledgeBase reports whether a knowledge index is being served.
type KnowledgeBase interface {
	Ready() bool
}
