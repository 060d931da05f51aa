package lead

import (
	"context"

	domlead "github.com/ahsan-courses/coursebot/internal/domain/lead"
)

// Repository stores leads.
type Repository interface {
	Create(ctx context.Context, l domlead.Lead) (domlead.Lead, error)
	List(ctx context.Context, limit int) ([]domlead.Lead, error)
}
