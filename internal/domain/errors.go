package domain

import "errors"

var (
	// ErrEmptyCorpus signals that no eligible source documents were found.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrSnapshotNotFound signals a missing knowledge base snapshot.
	ErrSnapshotNotFound = errors.New("snapshot not found")
	// ErrSnapshotCorrupt signals a snapshot that failed to decode or verify.
	ErrSnapshotCorrupt = errors.New("snapshot corrupt")
	// ErrDimensionMismatch signals vectors of different dimensionality meeting in one index.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrIndexUnavailable signals that no knowledge base index could be built or loaded.
	ErrIndexUnavailable = errors.New("knowledge base unavailable")

	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrLLMProviderError signals a failure of the answer-generating model.
	ErrLLMProviderError = errors.New("llm provider error")

	// ErrValidation signals invalid client input.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCourse signals a course outside the catalog.
	ErrInvalidCourse = errors.New("course not available")
	// ErrAlreadyEnrolled signals a duplicate enrollment.
	ErrAlreadyEnrolled = errors.New("already enrolled")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
)
