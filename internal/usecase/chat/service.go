package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/domain"
	domchat "github.com/ahsan-courses/coursebot/internal/domain/chat"
)

const (
	// DefaultTopK is the number of documents retrieved per question.
	DefaultTopK = 3
	// MaxMessageLen caps a single user message.
	MaxMessageLen = 4000
	// SourcePreviewLen is the display length of a source preview, in runes.
	SourcePreviewLen = 140
	// MaxSessionIDLen caps client-supplied session identifiers.
	MaxSessionIDLen = 128
)

// Service answers course questions with retrieved context and keeps session history.
type Service struct {
	retriever Retriever
	llm       Generator
	repo      Repository
	topK      int
	newID     func() string
	logger    *zap.Logger
}

// New creates a chat service. topK <= 0 falls back to DefaultTopK.
func New(retriever Retriever, llm Generator, repo Repository, topK int, logger *zap.Logger) *Service {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Service{
		retriever: retriever,
		llm:       llm,
		repo:      repo,
		topK:      topK,
		newID:     uuid.NewString,
		logger:    logger,
	}
}

// Reply answers message within sessionID. An empty sessionID starts a new session.
func (s *Service) Reply(ctx context.Context, sessionID, message string) (domchat.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domchat.Reply{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if len(message) > MaxMessageLen {
		return domchat.Reply{}, fmt.Errorf("%w: message too long (max %d)", domain.ErrValidation, MaxMessageLen)
	}

	sessionID = strings.TrimSpace(sessionID)
	if len(sessionID) > MaxSessionIDLen {
		return domchat.Reply{}, fmt.Errorf("%w: session_id too long (max %d)", domain.ErrValidation, MaxSessionIDLen)
	}
	if sessionID == "" {
		sessionID = s.newID()
	}

	docs, err := s.retriever.Query(ctx, message, s.topK)
	if err != nil {
		return domchat.Reply{}, fmt.Errorf("retrieve context: %w", err)
	}
	if len(docs) == 0 {
		s.logger.Debug("No course material matched", zap.String("session_id", sessionID))
	}

	answer, err := s.llm.Generate(ctx, message, strings.Join(docs, "\n\n"))
	if err != nil {
		return domchat.Reply{}, fmt.Errorf("generate reply: %w", err)
	}

	if _, err := s.repo.Append(ctx, domchat.NewExchange(sessionID, message, answer)); err != nil {
		return domchat.Reply{}, fmt.Errorf("save exchange: %w", err)
	}

	return domchat.Reply{
		SessionID: sessionID,
		Text:      answer,
		Sources:   Previews(docs, SourcePreviewLen),
		Context:   docs,
	}, nil
}

// History returns the stored exchanges of a session, oldest first. limit <= 0 returns all.
func (s *Service) History(ctx context.Context, sessionID string, limit int) ([]domchat.Exchange, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: session_id is required", domain.ErrValidation)
	}

	exchanges, err := s.repo.History(ctx, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return exchanges, nil
}

// Previews shortens each document to at most n runes.
func Previews(docs []string, n int) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		r := []rune(d)
		if len(r) > n {
			r = r[:n]
		}
		out[i] = string(r)
	}
	return out
}
