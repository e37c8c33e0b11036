package persistence

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain"
	"github.com/KamalidenovRustem/zoektrends-dashboard/internal/domain/entity"
	"github.com/KamalidenovRustem/zoektrends-dashboard/pkg/errcodes"
)

type ConversationRepository struct {
	db *sqlx.DB
}

func NewConversationRepository(db *sqlx.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// withTx runs fn inside a transaction.
func (r *ConversationRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Append adds turns to a session history and trims it to keep rows, oldest
// first out.
func (r *ConversationRepository) Append(ctx context.Context, sessionKey string, keep int, turns ...entity.ChatTurn) error {
	if len(turns) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `INSERT INTO conversations (session_key, role, content) VALUES ($1, $2, $3)`

		for _, turn := range turns {
			if _, err := tx.ExecContext(ctx, query, sessionKey, turn.Role, turn.Content); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError, "failed to insert turn")
			}
		}

		trim := `
			DELETE FROM conversations
			WHERE session_key = $1
			  AND id NOT IN (
				SELECT id FROM conversations
				WHERE session_key = $1
				ORDER BY id DESC
				LIMIT $2
			  )`

		if _, err := tx.ExecContext(ctx, trim, sessionKey, keep); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to trim history")
		}

		return nil
	})
}

// History returns the last limit turns in chronological order.
func (r *ConversationRepository) History(ctx context.Context, sessionKey string, limit int) ([]entity.ChatTurn, error) {
	query := `
		SELECT role, content FROM (
			SELECT id, role, content
			FROM conversations
			WHERE session_key = $1
			ORDER BY id DESC
			LIMIT $2
		) last
		ORDER BY id ASC`

	var turns []entity.ChatTurn
	if err := r.db.SelectContext(ctx, &turns, query, sessionKey, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get history")
	}

	return turns, nil
}

// Clear wipes a session history, conversation reset.
func (r *ConversationRepository) Clear(ctx context.Context, sessionKey string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE session_key = $1`, sessionKey); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to clear history")
	}

	return nil
}
