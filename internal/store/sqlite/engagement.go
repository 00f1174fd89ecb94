package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storyspine/storyspine-server/internal/store"
)

// LikeReview adds the viewer's like and returns the resulting count. The
// counter is recomputed from the like rows in the same transaction, so
// concurrent toggles can never drift from the set cardinality. Tombstones
// cannot gain likes.
func (s *Store) LikeReview(ctx context.Context, userID, reviewID string, now time.Time) (int, error) {
	return s.toggleLike(ctx, reviewID, true, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO review_likes (user_id, review_id, created_at) VALUES (?, ?, ?)
			ON CONFLICT(user_id, review_id) DO NOTHING`,
			userID, reviewID, formatTime(now))
		return err
	})
}

// UnlikeReview removes the viewer's like and returns the resulting count.
// It works on tombstones too.
func (s *Store) UnlikeReview(ctx context.Context, userID, reviewID string) (int, error) {
	return s.toggleLike(ctx, reviewID, false, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM review_likes WHERE user_id = ? AND review_id = ?`, userID, reviewID)
		return err
	})
}

func (s *Store) toggleLike(ctx context.Context, reviewID string, liveOnly bool, write func(*sql.Tx) error) (int, error) {
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var found int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM reviews WHERE id = ? AND (deleted_at IS NULL OR ?)`,
			reviewID, boolToInt(!liveOnly)).Scan(&found)
		if err != nil {
			return fmt.Errorf("lookup review: %w", err)
		}
		if found == 0 {
			return store.ErrNotFound.WithMessage("review not found")
		}

		if err := write(tx); err != nil {
			if store.IsForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user not found").WithCause(err)
			}
			return fmt.Errorf("write like: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			UPDATE reviews SET like_count = (SELECT COUNT(*) FROM review_likes WHERE review_id = ?)
			WHERE id = ?`, reviewID, reviewID); err != nil {
			return fmt.Errorf("update like count: %w", err)
		}
		return tx.QueryRowContext(ctx,
			`SELECT like_count FROM reviews WHERE id = ?`, reviewID).Scan(&count)
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
