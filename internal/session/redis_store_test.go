package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	return store, s
}

func TestNewRedisStore(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestSaveAndLookup(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token := "opaque-token-value"

	err := store.Save(ctx, token, Session{UserID: "user-123", Email: "user@example.com", Name: "User"}, time.Hour)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sess, err := store.Lookup(ctx, token)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}

	if sess.UserID != "user-123" {
		t.Errorf("expected user ID user-123, got %s", sess.UserID)
	}
	if sess.Email != "user@example.com" {
		t.Errorf("expected email user@example.com, got %s", sess.Email)
	}
	if sess.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be populated")
	}
}

func TestLookupExpiredSession(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token := "expiring-token"

	if err := store.Save(ctx, token, Session{UserID: "user-456"}, time.Millisecond); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Fast-forward time in miniredis past the TTL
	s.FastForward(2 * time.Millisecond)

	if _, err := store.Lookup(ctx, token); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupUnknownToken(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	if _, err := store.Lookup(context.Background(), "never-issued"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestRevoke(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token := "revocable-token"

	if err := store.Save(ctx, token, Session{UserID: "user-789"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := store.Revoke(ctx, token); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := store.Lookup(ctx, token); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after revoke, got %v", err)
	}
}

func TestTokenHashedAtRest(t *testing.T) {
	store, s := setupTestRedis(t)
	defer store.Close()
	defer s.Close()

	ctx := context.Background()
	token := "plain-token"

	if err := store.Save(ctx, token, Session{UserID: "user-1"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// The raw token must never appear as a key.
	if s.Exists("session:" + token) {
		t.Error("raw token stored as key")
	}
	if !s.Exists("session:" + HashToken(token)) {
		t.Error("hashed token key missing")
	}
}
