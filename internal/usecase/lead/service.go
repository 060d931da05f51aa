package lead

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domlead "github.com/ahsan-courses/coursebot/internal/domain/lead"
)

// List limits.
const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

// Service captures prospective students' contact requests.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates a lead service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Capture validates and stores a lead.
func (s *Service) Capture(ctx context.Context, name, email, phone, interest string) (domlead.Lead, error) {
	l, err := domlead.New(name, email, phone, interest)
	if err != nil {
		return domlead.Lead{}, fmt.Errorf("new lead: %w", err)
	}

	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return domlead.Lead{}, fmt.Errorf("create lead: %w", err)
	}

	s.logger.Info("Lead captured",
		zap.Int64("lead_id", created.ID()),
		zap.String("interest", created.Interest()),
	)
	return created, nil
}

// List returns the newest leads first. limit is clamped to 1..MaxListLimit, 0 means DefaultListLimit.
func (s *Service) List(ctx context.Context, limit int) ([]domlead.Lead, error) {
	leads, err := s.repo.List(ctx, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	return leads, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}
