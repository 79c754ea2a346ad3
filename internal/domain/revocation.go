package domain

import (
	"context"
	"time"
)

// RevocationStore records session token IDs that must no longer be accepted.
// An entry only needs to live until the token would have expired anyway.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
