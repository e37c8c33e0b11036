package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

type SessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a fresh session row.
func (r *SessionRepository) Create(ctx context.Context, session entity.Session) error {
	query := `
		INSERT INTO sessions (session_key, authenticated, username, created_at, expires_at)
		VALUES (:session_key, :authenticated, :username, :created_at, :expires_at)`

	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert session")
	}

	return nil
}

// Get returns the session behind the cookie key. Missing rows come back as
// SessionExpired, the middleware treats both cases the same way.
func (r *SessionRepository) Get(ctx context.Context, key string) (entity.Session, error) {
	query := `
		SELECT session_key, authenticated, username, created_at, expires_at
		FROM sessions
		WHERE session_key = $1`

	var session entity.Session
	if err := r.db.GetContext(ctx, &session, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Session{}, domain.NewError(errcodes.SessionExpired, "session not found")
		}

		return entity.Session{}, domain.WrapError(err, errcodes.InternalServerError, "failed to get session")
	}

	return session, nil
}

// Delete removes one session, logout path.
func (r *SessionRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_key = $1`, key); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete session")
	}

	return nil
}

// DeleteExpired sweeps sessions past their expiry, the worker runs it
// periodically.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to delete expired sessions")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	return rows, nil
}
