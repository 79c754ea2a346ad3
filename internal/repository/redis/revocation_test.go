package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*RevocationStore, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})
	return NewRevocationStore(rdb), s
}

func TestRevocationStore_RevokeAndCheck(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("expected unknown token to be accepted")
	}

	if err := store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	revoked, err = store.IsRevoked(ctx, "jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}
}

func TestRevocationStore_EntryExpiresWithToken(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Revoke(ctx, "jti-2", time.Now().Add(30*time.Minute)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if ttl := mr.TTL(keyPrefix + "jti-2"); ttl <= 0 || ttl > 30*time.Minute {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	mr.FastForward(31 * time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-2")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("expected entry to expire with the token")
	}
}

func TestRevocationStore_SkipsExpiredTokens(t *testing.T) {
	store, mr := newTestStore(t)

	if err := store.Revoke(context.Background(), "jti-3", time.Now().Add(-time.Second)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if mr.Exists(keyPrefix + "jti-3") {
		t.Fatal("expected no key for an already expired token")
	}
}
