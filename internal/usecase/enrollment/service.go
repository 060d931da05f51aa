package enrollment

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ahsan-courses/coursebot/internal/domain"
	domenr "github.com/ahsan-courses/coursebot/internal/domain/enrollment"
)

// List limits.
const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

// Service enrolls students in catalog courses.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// New creates an enrollment service.
func New(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Enroll validates and stores an enrollment.
func (s *Service) Enroll(
	ctx context.Context, username, email, phone, address, course string,
) (domenr.Enrollment, error) {
	e, err := domenr.New(username, email, phone, address, course)
	if err != nil {
		return domenr.Enrollment{}, fmt.Errorf("new enrollment: %w", err)
	}

	created, err := s.repo.Create(ctx, e)
	if err != nil {
		if errors.Is(err, domain.ErrAlreadyEnrolled) {
			s.logger.Info("Duplicate enrollment rejected", zap.String("course", e.Course()))
		}
		return domenr.Enrollment{}, fmt.Errorf("create enrollment: %w", err)
	}

	s.logger.Info("Student enrolled",
		zap.Int64("enrollment_id", created.ID()),
		zap.String("course", created.Course()),
	)
	return created, nil
}

// List returns enrollments, newest first.
func (s *Service) List(ctx context.Context, limit int) ([]domenr.Enrollment, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	items, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return items, nil
}
