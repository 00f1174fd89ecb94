package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/storyspine/storyspine-server/internal/color"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// Follow records an edge. Repeating it is a no-op.
func (s *Store) Follow(ctx context.Context, followerID, followeeID string, now time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)
		ON CONFLICT(follower_id, followee_id) DO NOTHING`,
		followerID, followeeID, formatTime(now))
	if err != nil {
		if store.IsForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("user not found").WithCause(err)
		}
		return fmt.Errorf("insert follow: %w", err)
	}
	return nil
}

// Unfollow removes an edge. A missing edge is not an error.
func (s *Store) Unfollow(ctx context.Context, followerID, followeeID string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`, followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	return nil
}

// IsFollowing reports whether the edge follower -> followee exists.
func (s *Store) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`,
		followerID, followeeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is following: %w", err)
	}
	return exists == 1, nil
}

// FollowCounts counts edges at read time, ignoring soft-deleted users.
func (s *Store) FollowCounts(ctx context.Context, userID string) (domain.FollowCounts, error) {
	var c domain.FollowCounts
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM follows f JOIN users u ON u.id = f.follower_id
			 WHERE f.followee_id = ? AND u.deleted_at IS NULL),
			(SELECT COUNT(*) FROM follows f JOIN users u ON u.id = f.followee_id
			 WHERE f.follower_id = ? AND u.deleted_at IS NULL)`,
		userID, userID).Scan(&c.Followers, &c.Following)
	if err != nil {
		return c, fmt.Errorf("follow counts: %w", err)
	}
	return c, nil
}

// ListFollowers lists who follows userID, newest edge first.
func (s *Store) ListFollowers(ctx context.Context, userID string, page store.Page) ([]domain.Connection, error) {
	return s.listConnections(ctx, "f.follower_id", "f.followee_id", userID, page)
}

// ListFollowing lists who userID follows, newest edge first.
func (s *Store) ListFollowing(ctx context.Context, userID string, page store.Page) ([]domain.Connection, error) {
	return s.listConnections(ctx, "f.followee_id", "f.follower_id", userID, page)
}

func (s *Store) listConnections(ctx context.Context, otherCol, selfCol, userID string, page store.Page) ([]domain.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, u.display_name, u.avatar_url, u.is_private, f.created_at
		FROM follows f
		JOIN users u ON u.id = `+otherCol+`
		WHERE `+selfCol+` = ? AND u.deleted_at IS NULL
		ORDER BY f.created_at DESC
		LIMIT ? OFFSET ?`, userID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	conns := []domain.Connection{}
	for rows.Next() {
		var (
			c         domain.Connection
			isPrivate int
			at        string
		)
		if err := rows.Scan(&c.ID, &c.Username, &c.DisplayName, &c.AvatarURL, &isPrivate, &at); err != nil {
			return nil, err
		}
		c.IsPrivate = isPrivate != 0
		c.AvatarColor = color.ForUser(c.ID)
		if c.FollowedAt, err = parseTime(at); err != nil {
			return nil, err
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}
