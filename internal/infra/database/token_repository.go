package database

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/xavierca1/ligue-campaigns/internal/entity"
)

type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

func (r *TokenRepository) Load(ctx context.Context) (string, error) {
	var token string
	err := r.DB.QueryRowContext(ctx, `SELECT token FROM session_tokens WHERE id = 1`).Scan(&token)
	if errors.Is(err, sql.ErrNoRows) {
		return "", entity.ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return token, nil
}

func (r *TokenRepository) Store(ctx context.Context, token string) error {
	query := `
		INSERT INTO session_tokens (id, token, updated_at)
		VALUES (1, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			token = excluded.token,
			updated_at = excluded.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, token, time.Now().UTC())
	return err
}

func (r *TokenRepository) Clear(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM session_tokens`)
	return err
}
