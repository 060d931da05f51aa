// Package hashing provides an offline, deterministic embedder based on
// feature hashing. It needs no API key and is meant for local development.
package hashing

import (
	"context"
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"

	"github.com/ahsan-courses/coursebot/internal/domain"
)

// DefaultDimensions is used when a non-positive dimension is configured.
const DefaultDimensions = 384

// Compile-time check.
var _ domain.BatchEmbedder = (*Embedder)(nil)

// Embedder maps lowercase word tokens into a fixed-size vector. Each token
// adds ±1 to the bucket chosen by its xxhash; the sign comes from another hash
// bit so collisions tend to cancel rather than accumulate.
type Embedder struct {
	dim int
}

// New creates a hashing embedder with dim buckets.
func New(dim int) *Embedder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &Embedder{dim: dim}
}

// Dimensions returns the vector length.
func (e *Embedder) Dimensions() int { return e.dim }

// Embed implements domain.Embedder. Token usage is reported as the token count.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.EmbeddingResult{}, err //nolint:wrapcheck // context error is the signal
	}
	vec, tokens := e.vector(text)
	return domain.EmbeddingResult{Embedding: vec, PromptTokens: tokens, TotalTokens: tokens}, nil
}

// BatchEmbed implements domain.BatchEmbedder.
func (e *Embedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	if len(texts) == 0 {
		return domain.BatchEmbeddingResult{}, nil
	}
	out := domain.BatchEmbeddingResult{Embeddings: make([][]float32, len(texts))}
	for i, t := range texts {
		r, err := e.Embed(ctx, t)
		if err != nil {
			return domain.BatchEmbeddingResult{}, err
		}
		out.Embeddings[i] = r.Embedding
		out.PromptTokens += r.PromptTokens
		out.TotalTokens += r.TotalTokens
	}
	return out, nil
}

// HealthCheck always succeeds.
func (e *Embedder) HealthCheck(context.Context) error { return nil }

func (e *Embedder) vector(text string) ([]float32, int) {
	vec := make([]float32, e.dim)
	tokens := Tokenize(text)
	for _, tok := range tokens {
		h := xxhash.Sum64String(tok)
		bucket := int(h % uint64(e.dim))
		if h&(1<<63) != 0 {
			vec[bucket]--
		} else {
			vec[bucket]++
		}
	}
	return vec, len(tokens)
}

// Tokenize lowercases text and splits it on anything that is not a letter or digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
