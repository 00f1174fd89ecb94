package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// ListGenres returns the genre catalogue ordered by name.
func (s *Store) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	return s.queryGenres(ctx, `SELECT slug, name FROM genres ORDER BY name`)
}

// MissingGenres returns the slugs that are not in the catalogue, in input order.
func (s *Store) MissingGenres(ctx context.Context, slugs []string) ([]string, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	known, err := s.queryGenres(ctx,
		`SELECT slug, name FROM genres WHERE slug IN (`+placeholders(len(slugs))+`)`,
		stringArgs(slugs)...)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(known))
	for _, g := range known {
		found[g.Slug] = true
	}

	var missing []string
	for _, slug := range slugs {
		if !found[slug] {
			missing = append(missing, slug)
		}
	}
	return missing, nil
}

// ReplacePreferences swaps the user's preferred genres for slugs wholesale.
func (s *Store) ReplacePreferences(ctx context.Context, userID string, slugs []string, now time.Time) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM genre_preferences WHERE user_id = ?`, userID); err != nil {
			return fmt.Errorf("clear preferences: %w", err)
		}
		for _, slug := range slugs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO genre_preferences (user_id, genre_slug, created_at) VALUES (?, ?, ?)
				ON CONFLICT(user_id, genre_slug) DO NOTHING`,
				userID, slug, formatTime(now))
			if err != nil {
				if store.IsForeignKeyViolation(err) {
					return store.ErrInvalidInput.WithMessage("unknown genre: " + slug).WithCause(err)
				}
				return fmt.Errorf("insert preference: %w", err)
			}
		}
		return nil
	})
}

// ListPreferences returns the user's preferred genres ordered by name.
func (s *Store) ListPreferences(ctx context.Context, userID string) ([]domain.Genre, error) {
	return s.queryGenres(ctx, `
		SELECT g.slug, g.name FROM genre_preferences gp
		JOIN genres g ON g.slug = gp.genre_slug
		WHERE gp.user_id = ?
		ORDER BY g.name`, userID)
}

func (s *Store) queryGenres(ctx context.Context, query string, args ...any) ([]domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	genres := []domain.Genre{}
	for rows.Next() {
		var g domain.Genre
		if err := rows.Scan(&g.Slug, &g.Name); err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
