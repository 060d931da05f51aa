package chi

import (
	"context"

	domchat "github.com/ahsan-courses/coursebot/internal/domain/chat"
	domenr "github.com/ahsan-courses/coursebot/internal/domain/enrollment"
	domlead "github.com/ahsan-courses/coursebot/internal/domain/lead"
	healthuc "github.com/ahsan-courses/coursebot/internal/usecase/health"
	"github.com/ahsan-courses/coursebot/internal/usecase/retrieval"
)

// ChatService answers questions and serves session history.
type ChatService interface {
	Reply(ctx context.Context, sessionID, message string) (domchat.Reply, error)
	History(ctx context.Context, sessionID string, limit int) ([]domchat.Exchange, error)
}

// LeadService captures and lists leads.
type LeadService interface {
	Capture(ctx context.Context, name, email, phone, interest string) (domlead.Lead, error)
	List(ctx context.Context, limit int) ([]domlead.Lead, error)
}

// EnrollmentService enrolls students and lists enrollments.
type EnrollmentService interface {
	Enroll(ctx context.Context, username, email, phone, address, course string) (domenr.Enrollment, error)
	List(ctx context.Context, limit int) ([]domenr.Enrollment, error)
}

// KnowledgeBase is the retrieval surface exposed over HTTP.
type KnowledgeBase interface {
	Query(ctx context.Context, text string, k int) ([]string, error)
	Status() retrieval.Status
	EnsureLoaded(ctx context.Context) bool
	Rebuild(ctx context.Context) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
