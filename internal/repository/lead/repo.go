package lead

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahsan-courses/coursebot/internal/db"
	"github.com/ahsan-courses/coursebot/internal/db/sqlite"
	domlead "github.com/ahsan-courses/coursebot/internal/domain/lead"
)

// store is the consumer interface for leads (ISP). *sql.DB satisfies it.
type store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements usecase/lead.Repository over SQLite.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a lead repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Create stores a lead and returns it with id and timestamp.
func (r *Repo) Create(ctx context.Context, l domlead.Lead) (domlead.Lead, error) {
	createdAt := r.now().UTC().Truncate(time.Second)

	res, err := r.store.ExecContext(ctx,
		`INSERT INTO leads (name, email, phone, interest, created_at) VALUES (?, ?, ?, ?, ?)`,
		l.Name(), l.Email(), l.Phone(), l.Interest(), createdAt.Unix(),
	)
	if err != nil {
		return domlead.Lead{}, &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domlead.Lead{}, fmt.Errorf("last insert id: %w", err)
	}

	return domlead.Reconstruct(id, l.Name(), l.Email(), l.Phone(), l.Interest(), createdAt), nil
}

// List returns up to limit leads, newest first.
func (r *Repo) List(ctx context.Context, limit int) ([]domlead.Lead, error) {
	rows, err := r.store.QueryContext(ctx,
		`SELECT id, name, email, phone, interest, created_at FROM leads ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]domlead.Lead, 0)
	for rows.Next() {
		var (
			id                           int64
			name, email, phone, interest string
			createdAt                    int64
		)
		if err := rows.Scan(&id, &name, &email, &phone, &interest, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, domlead.Reconstruct(id, name, email, phone, interest, sqlite.UnixTime(createdAt)))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
