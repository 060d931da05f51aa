package chat

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ahsan-courses/coursebot/internal/db"
	"github.com/ahsan-courses/coursebot/internal/db/sqlite"
	domchat "github.com/ahsan-courses/coursebot/internal/domain/chat"
)

// store is the consumer interface for chat history (ISP). *sql.DB satisfies it.
type store interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Repo implements usecase/chat.Repository over SQLite.
type Repo struct {
	store store
	now   func() time.Time
}

// New creates a chat history repository.
func New(s store) *Repo {
	return &Repo{store: s, now: time.Now}
}

// Append stores one exchange and returns it with id and timestamp.
func (r *Repo) Append(ctx context.Context, ex domchat.Exchange) (domchat.Exchange, error) {
	createdAt := r.now().UTC().Truncate(time.Second)

	res, err := r.store.ExecContext(ctx,
		`INSERT INTO chat_history (session_id, user_message, bot_reply, created_at) VALUES (?, ?, ?, ?)`,
		ex.SessionID(), ex.UserMessage(), ex.BotReply(), createdAt.Unix(),
	)
	if err != nil {
		return domchat.Exchange{}, &db.Error{Op: db.OpInsert, Err: err}
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domchat.Exchange{}, fmt.Errorf("last insert id: %w", err)
	}

	return domchat.Reconstruct(id, ex.SessionID(), ex.UserMessage(), ex.BotReply(), createdAt), nil
}

// History returns up to limit exchanges of a session, oldest first.
// A non-positive limit returns the whole session.
func (r *Repo) History(ctx context.Context, sessionID string, limit int) ([]domchat.Exchange, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := r.store.QueryContext(ctx,
		`SELECT id, session_id, user_message, bot_reply, created_at FROM (
			SELECT * FROM chat_history WHERE session_id = ? ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`,
		sessionID, limit,
	)
	if err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	defer rows.Close()

	out := make([]domchat.Exchange, 0)
	for rows.Next() {
		var (
			id                    int64
			sid, question, answer string
			createdAt             int64
		)
		if err := rows.Scan(&id, &sid, &question, &answer, &createdAt); err != nil {
			return nil, fmt.Errorf("scan chat_history: %w", err)
		}
		out = append(out, domchat.Reconstruct(id, sid, question, answer, sqlite.UnixTime(createdAt)))
	}
	if err := rows.Err(); err != nil {
		return nil, &db.Error{Op: db.OpSelect, Err: err}
	}
	return out, nil
}
