package domain

import "context"

type usageKey struct{}

// Usage collects model token consumption for one request or command run.
// The caller seeds a pointer into the context, services add to it, the caller
// reports it (response headers, CLI summary).
type Usage struct {
	EmbeddingTokens int
	LLMTokens       int

	Embedded  bool // an embedding was requested, even if served from cache for 0 tokens
	Generated bool // the answer model was called
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *Usage) {
	u := &Usage{}
	return context.WithValue(ctx, usageKey{}, u), u
}

// UsageFromContext returns the collector, or nil. Methods are nil-safe.
func UsageFromContext(ctx context.Context) *Usage {
	u, _ := ctx.Value(usageKey{}).(*Usage)
	return u
}

// AddEmbeddingTokens records tokens spent on embeddings.
func (u *Usage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Embedded = true
	}
}

// AddLLMTokens records prompt plus completion tokens of one generation.
func (u *Usage) AddLLMTokens(n int) {
	if u != nil {
		u.LLMTokens += n
		u.Generated = true
	}
}
