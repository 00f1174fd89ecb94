package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storyspine/storyspine-server/internal/color"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

const reviewColumns = `id, user_id, book_id, content, spoiler, like_count, created_at, updated_at, deleted_at`

func scanReview(row scanner) (*domain.Review, error) {
	var (
		r                    domain.Review
		spoiler              int
		createdAt, updatedAt string
		deletedAt            sql.NullString
	)
	err := row.Scan(&r.ID, &r.UserID, &r.BookID, &r.Content, &spoiler, &r.LikeCount,
		&createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	r.Spoiler = spoiler != 0
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if r.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// UpsertReview writes the one review a user has for a book. An existing row,
// live or tombstoned, keeps its id and likes; reviving a tombstone restarts its
// created_at so it sorts as new.
func (s *Store) UpsertReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	var stored *domain.Review
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reviews (id, user_id, book_id, content, spoiler, like_count, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, 0, ?, ?)
			ON CONFLICT(user_id, book_id) DO UPDATE SET
				content = excluded.content,
				spoiler = excluded.spoiler,
				created_at = CASE WHEN reviews.deleted_at IS NULL THEN reviews.created_at ELSE excluded.created_at END,
				updated_at = excluded.updated_at,
				deleted_at = NULL`,
			review.ID,
			review.UserID,
			review.BookID,
			review.Content,
			boolToInt(review.Spoiler),
			formatTime(review.CreatedAt),
			formatTime(review.UpdatedAt),
		)
		if err != nil {
			if store.IsForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user or book not found").WithCause(err)
			}
			return fmt.Errorf("upsert review: %w", err)
		}

		stored, err = scanReview(tx.QueryRowContext(ctx,
			`SELECT `+reviewColumns+` FROM reviews WHERE user_id = ? AND book_id = ?`,
			review.UserID, review.BookID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// GetReview returns a live review.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	r, err := scanReview(s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews WHERE id = ? AND deleted_at IS NULL`, id))
	if err != nil {
		return nil, notFound(err, "review")
	}
	return r, nil
}

// SoftDeleteReview tombstones a live review.
func (s *Store) SoftDeleteReview(ctx context.Context, id string, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE reviews SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		formatTime(now), formatTime(now), id)
	if err != nil {
		return fmt.Errorf("delete review: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound.WithMessage("review not found")
	}
	return nil
}

// ListBookReviews lists the reviews of a book by active users, tombstones
// included. The viewer's own live review comes first, the rest newest first.
func (s *Store) ListBookReviews(ctx context.Context, bookID, viewerID string, page store.Page) ([]domain.BookReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.content, r.spoiler, r.like_count, r.created_at, r.deleted_at,
			r.user_id = ?,
			EXISTS (SELECT 1 FROM review_likes l WHERE l.review_id = r.id AND l.user_id = ?),
			u.id, u.username, u.display_name, u.avatar_url, u.is_private,
			rt.overall, rt.character, rt.pacing, rt.storyline, rt.writing, rt.spicy
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		LEFT JOIN ratings rt ON rt.user_id = r.user_id AND rt.book_id = r.book_id
		WHERE r.book_id = ? AND u.deleted_at IS NULL
		ORDER BY (r.user_id = ? AND r.deleted_at IS NULL) DESC, r.created_at DESC, r.id
		LIMIT ? OFFSET ?`,
		viewerID, viewerID, bookID, viewerID, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("list book reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.BookReview{}
	for rows.Next() {
		var (
			br                        domain.BookReview
			author                    domain.UserHeadline
			spoiler, own, liked, priv int
			createdAt                 string
			deletedAt                 sql.NullString
			overall                   sql.NullInt64
			character, pacing         sql.NullInt64
			storyline, writing, spicy sql.NullInt64
		)
		err := rows.Scan(
			&br.ID, &br.Content, &spoiler, &br.LikeCount, &createdAt, &deletedAt,
			&own, &liked,
			&author.ID, &author.Username, &author.DisplayName, &author.AvatarURL, &priv,
			&overall, &character, &pacing, &storyline, &writing, &spicy,
		)
		if err != nil {
			return nil, err
		}

		br.Spoiler = spoiler != 0
		br.IsOwn = own != 0
		br.IsLiked = liked != 0
		br.AuthorPrivate = priv != 0
		author.AvatarColor = color.ForUser(author.ID)
		br.Author = &author
		if br.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if overall.Valid {
			br.Rating = &domain.RatingDimensions{
				Overall:   int(overall.Int64),
				Character: intPtr(character),
				Pacing:    intPtr(pacing),
				Storyline: intPtr(storyline),
				Writing:   intPtr(writing),
				Spicy:     intPtr(spicy),
			}
		}
		deleted, err := parseNullableTime(deletedAt)
		if err != nil {
			return nil, err
		}
		if deleted != nil {
			br.Tombstone(*deleted)
		}
		reviews = append(reviews, br)
	}
	return reviews, rows.Err()
}

// ListUserReviews returns a user's most recent live reviews.
func (s *Store) ListUserReviews(ctx context.Context, userID string, limit int) ([]domain.ProfileReview, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.content, r.spoiler, r.like_count, r.created_at, b.title, b.external_id
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ? AND r.deleted_at IS NULL
		ORDER BY r.created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list user reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.ProfileReview{}
	for rows.Next() {
		var (
			pr        domain.ProfileReview
			spoiler   int
			createdAt string
		)
		if err := rows.Scan(&pr.ID, &pr.Content, &spoiler, &pr.LikeCount, &createdAt, &pr.BookTitle, &pr.ExternalID); err != nil {
			return nil, err
		}
		pr.Spoiler = spoiler != 0
		if pr.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, pr)
	}
	return reviews, rows.Err()
}
