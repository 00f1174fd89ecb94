package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/genre"
)

const bookColumns = `id, external_id, title, authors, cover_url, cover_blurhash, summary,
	published_year, language, genres, ext_avg_rating, ext_rating_count,
	avg_overall, avg_character, avg_pacing, avg_storyline, avg_writing, avg_spicy,
	rating_count, created_at`

// summaryColumns selects a BookSummary from a table aliased as b.
const summaryColumns = `b.id, b.external_id, b.title, b.authors, b.cover_url, b.cover_blurhash,
	b.published_year, b.genres, b.avg_overall, b.rating_count`

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                  domain.Book
		authors, genres    string
		year               sql.NullInt64
		extAvg             sql.NullFloat64
		overall, character sql.NullFloat64
		pacing, storyline  sql.NullFloat64
		writing, spicy     sql.NullFloat64
		createdAt          string
	)

	err := row.Scan(
		&b.ID,
		&b.ExternalID,
		&b.Title,
		&authors,
		&b.CoverURL,
		&b.CoverBlurHash,
		&b.Summary,
		&year,
		&b.Language,
		&genres,
		&extAvg,
		&b.ExternalRatingCount,
		&overall,
		&character,
		&pacing,
		&storyline,
		&writing,
		&spicy,
		&b.Ratings.Count,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	b.Authors = decodeList(authors)
	b.Genres = decodeList(genres)
	b.PublishedYear = intPtr(year)
	b.ExternalAvgRating = floatPtr(extAvg)
	b.Ratings.AvgOverall = floatPtr(overall)
	b.Ratings.AvgCharacter = floatPtr(character)
	b.Ratings.AvgPacing = floatPtr(pacing)
	b.Ratings.AvgStoryline = floatPtr(storyline)
	b.Ratings.AvgWriting = floatPtr(writing)
	b.Ratings.AvgSpicy = floatPtr(spicy)

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// summaryDest returns scan targets for summaryColumns followed by extra, and a
// finish func that fills the nullable and JSON fields once Scan succeeded.
func summaryDest(s *domain.BookSummary, extra ...any) ([]any, func()) {
	var (
		authors, genres string
		year            sql.NullInt64
		avg             sql.NullFloat64
	)
	dest := append([]any{
		&s.ID, &s.ExternalID, &s.Title, &authors, &s.CoverURL, &s.CoverBlurHash,
		&year, &genres, &avg, &s.RatingCount,
	}, extra...)

	return dest, func() {
		s.Authors = decodeList(authors)
		s.Genres = decodeList(genres)
		s.PublishedYear = intPtr(year)
		s.AvgOverall = floatPtr(avg)
	}
}

// GetBookByExternalID retrieves a local book by its catalog id.
func (s *Store) GetBookByExternalID(ctx context.Context, externalID string) (*domain.Book, error) {
	return s.getBookByExternalID(ctx, s.db, externalID)
}

func (s *Store) getBookByExternalID(ctx context.Context, q querier, externalID string) (*domain.Book, error) {
	b, err := scanBook(q.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE external_id = ?`, externalID))
	if err != nil {
		return nil, notFound(err, "book")
	}
	return b, nil
}

// EnsureBook stores book the first time its external id is seen. Categories
// are normalized into genre names, and the ones in the genre catalogue are
// linked for genre filters and feed matching.
func (s *Store) EnsureBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	genres := genre.FromCategories(book.Genres)
	names := make([]string, len(genres))
	for i, g := range genres {
		names[i] = g.Name
	}

	var stored *domain.Book
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO books (
				id, external_id, title, authors, cover_url, cover_blurhash, summary,
				published_year, language, genres, ext_avg_rating, ext_rating_count,
				rating_count, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)
			ON CONFLICT(external_id) DO NOTHING`,
			book.ID,
			book.ExternalID,
			book.Title,
			encodeList(book.Authors),
			book.CoverURL,
			book.CoverBlurHash,
			book.Summary,
			nullInt(book.PublishedYear),
			book.Language,
			encodeList(names),
			nullFloat(book.ExternalAvgRating),
			book.ExternalRatingCount,
			formatTime(book.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert book: %w", err)
		}

		if n, _ := res.RowsAffected(); n > 0 {
			for _, g := range genres {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO book_genres (book_id, genre_slug)
					SELECT ?, slug FROM genres WHERE slug = ?
					ON CONFLICT DO NOTHING`,
					book.ID, g.Slug); err != nil {
					return fmt.Errorf("link genre %s: %w", g.Slug, err)
				}
			}
		}

		stored, err = s.getBookByExternalID(ctx, tx, book.ExternalID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ReadingCount counts users whose entry for the book is currently reading.
func (s *Store) ReadingCount(ctx context.Context, bookID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM library_entries le
		JOIN users u ON u.id = le.user_id
		WHERE le.book_id = ? AND le.status = 'reading' AND u.deleted_at IS NULL`,
		bookID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("reading count: %w", err)
	}
	return n, nil
}
