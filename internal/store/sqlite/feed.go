package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// activityCTE unions every shelf update, rating and live review by an active
// user since the window start. Its three placeholders all take the window start.
const activityCTE = `
	activity (user_id, book_id, at) AS (
		SELECT user_id, book_id, updated_at FROM library_entries WHERE updated_at >= ?
		UNION ALL
		SELECT user_id, book_id, updated_at FROM ratings WHERE updated_at >= ?
		UNION ALL
		SELECT user_id, book_id, created_at FROM reviews WHERE deleted_at IS NULL AND created_at >= ?
	),
	live_activity AS (
		SELECT a.user_id, a.book_id, a.at FROM activity a
		JOIN users u ON u.id = a.user_id AND u.deleted_at IS NULL
	)`

// recencyScore weights one activity by 1/(1+age in days). Its placeholder takes now.
const recencyScore = `SUM(1.0 / (1.0 + MAX(0.0, julianday(?) - julianday(at))))`

func windowArgs(since time.Time) []any {
	s := formatTime(since)
	return []any{s, s, s}
}

// FeedSignal counts what a viewer has given the feed to personalize on.
func (s *Store) FeedSignal(ctx context.Context, userID string) (domain.FeedSignal, error) {
	var sig domain.FeedSignal
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM ratings WHERE user_id = ?),
			(SELECT COUNT(*) FROM genre_preferences WHERE user_id = ?),
			(SELECT COUNT(*) FROM follows f JOIN users u ON u.id = f.followee_id
			 WHERE f.follower_id = ? AND u.deleted_at IS NULL)`,
		userID, userID, userID).Scan(&sig.Ratings, &sig.Preferences, &sig.Following)
	if err != nil {
		return sig, fmt.Errorf("feed signal: %w", err)
	}
	return sig, nil
}

// TrendingBooks ranks books by recency-weighted activity across all users.
func (s *Store) TrendingBooks(ctx context.Context, since, now time.Time, limit int) ([]domain.FeedItem, error) {
	args := append(windowArgs(since), formatTime(now), limit)
	return s.queryFeed(ctx, domain.ReasonTrending, `
		WITH `+activityCTE+`,
		scored AS (
			SELECT book_id, `+recencyScore+` AS score FROM live_activity GROUP BY book_id
		)
		SELECT `+summaryColumns+`, sc.score
		FROM scored sc
		JOIN books b ON b.id = sc.book_id
		ORDER BY sc.score DESC, b.id
		LIMIT ?`, args...)
}

// GenreMatches ranks books sharing a genre with the viewer's preferences by
// the number of matching genres plus their trending score. Books already on
// the viewer's shelf are excluded.
func (s *Store) GenreMatches(ctx context.Context, userID string, since, now time.Time, limit int) ([]domain.FeedItem, error) {
	args := append(windowArgs(since), formatTime(now), userID, userID, limit)
	return s.queryFeed(ctx, domain.ReasonGenre, `
		WITH `+activityCTE+`,
		trend AS (
			SELECT book_id, `+recencyScore+` AS score FROM live_activity GROUP BY book_id
		),
		matches AS (
			SELECT bg.book_id, COUNT(*) AS hits
			FROM book_genres bg
			JOIN genre_preferences gp ON gp.genre_slug = bg.genre_slug AND gp.user_id = ?
			GROUP BY bg.book_id
		)
		SELECT `+summaryColumns+`, m.hits + COALESCE(t.score, 0.0) AS score
		FROM matches m
		JOIN books b ON b.id = m.book_id
		LEFT JOIN trend t ON t.book_id = m.book_id
		WHERE NOT EXISTS (SELECT 1 FROM library_entries le WHERE le.user_id = ? AND le.book_id = b.id)
		ORDER BY score DESC, b.id
		LIMIT ?`, args...)
}

// FolloweeActivity ranks books by recency-weighted activity of the users the
// viewer follows. Books already on the viewer's shelf are excluded.
func (s *Store) FolloweeActivity(ctx context.Context, userID string, since, now time.Time, limit int) ([]domain.FeedItem, error) {
	args := append(windowArgs(since), formatTime(now), userID, userID, limit)
	return s.queryFeed(ctx, domain.ReasonFollowing, `
		WITH `+activityCTE+`,
		scored AS (
			SELECT book_id, `+recencyScore+` AS score
			FROM live_activity
			WHERE user_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)
			GROUP BY book_id
		)
		SELECT `+summaryColumns+`, sc.score
		FROM scored sc
		JOIN books b ON b.id = sc.book_id
		WHERE NOT EXISTS (SELECT 1 FROM library_entries le WHERE le.user_id = ? AND le.book_id = b.id)
		ORDER BY sc.score DESC, b.id
		LIMIT ?`, args...)
}

func (s *Store) queryFeed(ctx context.Context, reason domain.FeedReason, query string, args ...any) ([]domain.FeedItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("feed query (%s): %w", reason, err)
	}
	defer rows.Close()

	items := []domain.FeedItem{}
	for rows.Next() {
		item := domain.FeedItem{Reason: reason}
		dest, finish := summaryDest(&item.Book, &item.Score)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		finish()
		items = append(items, item)
	}
	return items, rows.Err()
}
