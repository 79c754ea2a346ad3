package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RevocationRepository implements domain.RevocationStore using SQLite.
type RevocationRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRevocationRepository creates a new SQLite-backed revocation store.
func NewRevocationRepository(db *DB) *RevocationRepository {
	return &RevocationRepository{db: db.SqlDB, now: time.Now}
}

// Revoke records the token ID and drops entries whose tokens have expired.
func (r *RevocationRepository) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	now := r.now().UTC()
	if _, err := r.db.ExecContext(ctx, "DELETE FROM revoked_tokens WHERE expires_at <= ?", now); err != nil {
		return fmt.Errorf("purge revoked tokens: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO revoked_tokens (token_id, expires_at, revoked_at) VALUES (?, ?, ?)
		 ON CONFLICT (token_id) DO NOTHING`,
		tokenID, expiresAt.UTC(), now,
	)
	if err != nil {
		return fmt.Errorf("insert revoked token: %w", err)
	}
	return nil
}

func (r *RevocationRepository) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		"SELECT 1 FROM revoked_tokens WHERE token_id = ?", tokenID,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query revoked token: %w", err)
	}
	return true, nil
}
