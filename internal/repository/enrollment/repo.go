package enrollment

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahsan-courses/coursebot/internal/db"
	"github.com/ahsan-courses/coursebot/internal/db/sqlite"
	"github.com/ahsan-courses/coursebot/internal/domain"
	domenr "github.com/ahsan-courses/coursebot/internal/domain/enrollment"
)

// store is the consumer interface for enrollments (ISP). *sql.DB satisfies it.
type store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements usecase/enrollment.Repository over SQLite.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates an enrollment repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Create stores an enrollment. The same email enrolling twice in one course
// returns domain.ErrAlreadyEnrolled.
func (r *Repo) Create(ctx context.Context, e domenr.Enrollment) (domenr.Enrollment, error) {
	createdAt := r.now().UTC().Truncate(time.Second)

	res, err := r.store.ExecContext(ctx,
		`INSERT INTO enrollments (username, email, phone, address, course, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.Username(), e.Email(), e.Phone(), e.Address(), e.Course(), createdAt.Unix(),
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return domenr.Enrollment{}, domain.ErrAlreadyEnrolled
		}
		return domenr.Enrollment{}, &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domenr.Enrollment{}, fmt.Errorf("last insert id: %w", err)
	}

	return domenr.Reconstruct(id, e.Username(), e.Email(), e.Phone(), e.Address(), e.Course(), createdAt), nil
}

// List returns up to limit enrollments, newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]domenr.Enrollment, error) {
	rows, err := r.store.QueryContext(ctx,
		`SELECT id, username, email, phone, address, course, created_at
		 FROM enrollments ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]domenr.Enrollment, 0)
	for rows.Next() {
		var (
			id                                      int64
			username, email, phone, address, course string
			createdAt                               int64
		)
		if err := rows.Scan(&id, &username, &email, &phone, &address, &course, &createdAt); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		out = append(out, domenr.Reconstruct(id, username, email, phone, address, course, sqlite.UnixTime(createdAt)))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
