package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

func TestSessionLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u-1", "reader")

	sess := &domain.Session{
		ID:               "sess-1",
		UserID:           "u-1",
		RefreshTokenHash: "hash-a",
		ExpiresAt:        testNow.Add(24 * time.Hour),
		CreatedAt:        testNow,
		LastUsedAt:       testNow,
	}
	if err := s.CreateSession(ctx, sess); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshHash(ctx, "hash-a")
	if err != nil {
		t.Fatalf("GetSessionByRefreshHash: %v", err)
	}
	if got.ID != "sess-1" || got.UserID != "u-1" {
		t.Errorf("got %+v", got)
	}

	later := testNow.Add(time.Hour)
	if err := s.RotateSession(ctx, "sess-1", "hash-a", "hash-b", later.Add(24*time.Hour), later); err != nil {
		t.Fatalf("RotateSession: %v", err)
	}

	// A second rotation with the stale hash loses.
	err = s.RotateSession(ctx, "sess-1", "hash-a", "hash-c", later, later)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("stale rotate: expected ErrNotFound, got %v", err)
	}

	if _, err := s.GetSessionByRefreshHash(ctx, "hash-a"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("old hash: expected ErrNotFound, got %v", err)
	}
	rotated, err := s.GetSessionByRefreshHash(ctx, "hash-b")
	if err != nil {
		t.Fatalf("new hash lookup: %v", err)
	}
	if !rotated.LastUsedAt.Equal(later) {
		t.Errorf("last_used_at: got %v", rotated.LastUsedAt)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession twice: %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u-1", "reader")

	for i, exp := range []time.Duration{-time.Hour, time.Hour} {
		sess := &domain.Session{
			ID:               []string{"sess-old", "sess-new"}[i],
			UserID:           "u-1",
			RefreshTokenHash: []string{"h-old", "h-new"}[i],
			ExpiresAt:        testNow.Add(exp),
			CreatedAt:        testNow,
			LastUsedAt:       testNow,
		}
		if err := s.CreateSession(ctx, sess); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	n, err := s.DeleteExpiredSessions(ctx, testNow)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}
	if _, err := s.GetSessionByRefreshHash(ctx, "h-new"); err != nil {
		t.Errorf("live session should remain: %v", err)
	}
}
