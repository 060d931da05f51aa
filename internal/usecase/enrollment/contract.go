package enrollment

import (
	"context"

	domenr "github.com/ahsan-courses/coursebot/internal/domain/enrollment"
)

// Repository stores enrollments. Create returns domain.ErrAlreadyEnrolled for a
// repeated email and course pair.
type Repository interface {
	Create(ctx context.Context, e domenr.Enrollment) (domenr.Enrollment, error)
	List(ctx context.Context, limit int) ([]domenr.Enrollment, error)
}
