package chat

import (
	"context"

	domchat "github.com/ahsan-courses/coursebot/internal/domain/chat"
)

// Retriever finds course material relevant to a question.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]string, error)
}

// Generator answers a question grounded in course material.
type Generator interface {
	Generate(ctx context.Context, question, courseContext string) (string, error)
}

// Repository stores chat exchanges.
type Repository interface {
	Append(ctx context.Context, ex domchat.Exchange) (domchat.Exchange, error)
	History(ctx context.Context, sessionID string, limit int) ([]domchat.Exchange, error)
}
