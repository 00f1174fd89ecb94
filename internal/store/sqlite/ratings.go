package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// UpsertRating writes the full rating, replacing every dimension of an earlier
// one, and recomputes the book's local aggregates in the same transaction.
func (s *Store) UpsertRating(ctx context.Context, r *domain.Rating) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO ratings (
				user_id, book_id, overall, character, pacing, storyline, writing, spicy,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, book_id) DO UPDATE SET
				overall = excluded.overall,
				character = excluded.character,
				pacing = excluded.pacing,
				storyline = excluded.storyline,
				writing = excluded.writing,
				spicy = excluded.spicy,
				updated_at = excluded.updated_at`,
			r.UserID,
			r.BookID,
			r.Overall,
			nullInt(r.Character),
			nullInt(r.Pacing),
			nullInt(r.Storyline),
			nullInt(r.Writing),
			nullInt(r.Spicy),
			formatTime(r.CreatedAt),
			formatTime(r.UpdatedAt),
		)
		if err != nil {
			if store.IsForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user or book not found").WithCause(err)
			}
			return fmt.Errorf("upsert rating: %w", err)
		}

		// AVG ignores NULLs, so an unrated dimension stays NULL until someone rates it.
		_, err = tx.ExecContext(ctx, `
			UPDATE books SET
				avg_overall   = (SELECT AVG(overall)   FROM ratings WHERE book_id = books.id),
				avg_character = (SELECT AVG(character) FROM ratings WHERE book_id = books.id),
				avg_pacing    = (SELECT AVG(pacing)    FROM ratings WHERE book_id = books.id),
				avg_storyline = (SELECT AVG(storyline) FROM ratings WHERE book_id = books.id),
				avg_writing   = (SELECT AVG(writing)   FROM ratings WHERE book_id = books.id),
				avg_spicy     = (SELECT AVG(spicy)     FROM ratings WHERE book_id = books.id),
				rating_count  = (SELECT COUNT(*)       FROM ratings WHERE book_id = books.id)
			WHERE id = ?`, r.BookID)
		if err != nil {
			return fmt.Errorf("update book aggregates: %w", err)
		}
		return nil
	})
}

// GetRating returns a user's rating of a book.
func (s *Store) GetRating(ctx context.Context, userID, bookID string) (*domain.Rating, error) {
	var (
		r                    domain.Rating
		character, pacing    sql.NullInt64
		storyline, writing   sql.NullInt64
		spicy                sql.NullInt64
		createdAt, updatedAt string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, book_id, overall, character, pacing, storyline, writing, spicy,
			created_at, updated_at
		FROM ratings WHERE user_id = ? AND book_id = ?`, userID, bookID).Scan(
		&r.UserID, &r.BookID, &r.Overall, &character, &pacing, &storyline, &writing, &spicy,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, notFound(err, "rating")
	}

	r.Character = intPtr(character)
	r.Pacing = intPtr(pacing)
	r.Storyline = intPtr(storyline)
	r.Writing = intPtr(writing)
	r.Spicy = intPtr(spicy)
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}
