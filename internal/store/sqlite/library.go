package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

const entryColumns = `le.user_id, le.book_id, le.status, le.progress, le.note,
	le.started_at, le.finished_at, le.created_at, le.updated_at`

// entryDest mirrors summaryDest for entryColumns.
func entryDest(e *domain.LibraryEntry) ([]any, func() error) {
	var (
		status                string
		startedAt, finishedAt sql.NullString
		createdAt, updatedAt  string
	)
	dest := []any{&e.UserID, &e.BookID, &status, &e.Progress, &e.Note,
		&startedAt, &finishedAt, &createdAt, &updatedAt}

	return dest, func() error {
		var err error
		e.Status = domain.ReadingStatus(status)
		if e.StartedAt, err = parseNullableTime(startedAt); err != nil {
			return err
		}
		if e.FinishedAt, err = parseNullableTime(finishedAt); err != nil {
			return err
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return err
		}
		e.UpdatedAt, err = parseTime(updatedAt)
		return err
	}
}

func (s *Store) getLibraryEntry(ctx context.Context, q querier, userID, bookID string) (*domain.LibraryEntry, error) {
	var e domain.LibraryEntry
	dest, finish := entryDest(&e)
	err := q.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM library_entries le WHERE le.user_id = ? AND le.book_id = ?`,
		userID, bookID).Scan(dest...)
	if err != nil {
		return nil, notFound(err, "library entry")
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return &e, nil
}

// GetLibraryEntry returns the user's shelf row for a book.
func (s *Store) GetLibraryEntry(ctx context.Context, userID, bookID string) (*domain.LibraryEntry, error) {
	return s.getLibraryEntry(ctx, s.db, userID, bookID)
}

// SetStatus reads the current entry, applies the change and writes it back in
// one immediate transaction, so concurrent updates serialize and the last
// write wins.
func (s *Store) SetStatus(ctx context.Context, userID, bookID string, change domain.StatusChange, now time.Time) (*domain.LibraryEntry, error) {
	var entry *domain.LibraryEntry
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		current, err := s.getLibraryEntry(ctx, tx, userID, bookID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			current = &domain.LibraryEntry{UserID: userID, BookID: bookID}
		case err != nil:
			return err
		}

		if err := current.Apply(change, now); err != nil {
			return store.ErrInvalidInput.WithMessage(err.Error()).WithCause(err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO library_entries (
				user_id, book_id, status, progress, note,
				started_at, finished_at, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id, book_id) DO UPDATE SET
				status = excluded.status,
				progress = excluded.progress,
				note = excluded.note,
				started_at = excluded.started_at,
				finished_at = excluded.finished_at,
				updated_at = excluded.updated_at`,
			current.UserID,
			current.BookID,
			string(current.Status),
			current.Progress,
			current.Note,
			nullTimeString(current.StartedAt),
			nullTimeString(current.FinishedAt),
			formatTime(current.CreatedAt),
			formatTime(current.UpdatedAt),
		)
		if err != nil {
			if store.IsForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage("user or book not found").WithCause(err)
			}
			return fmt.Errorf("upsert library entry: %w", err)
		}
		entry = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListLibrary lists a user's shelf, most recently updated first. The year
// filter matches the year the book was started.
func (s *Store) ListLibrary(ctx context.Context, userID string, filter domain.LibraryFilter) ([]domain.LibraryItem, error) {
	var (
		where = []string{"le.user_id = ?"}
		args  = []any{userID}
	)
	if filter.Status != nil {
		where = append(where, "le.status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.Year != nil {
		where = append(where, "substr(le.started_at, 1, 4) = ?")
		args = append(args, fmt.Sprintf("%04d", *filter.Year))
	}
	if filter.Genre != "" {
		where = append(where, "EXISTS (SELECT 1 FROM book_genres bg WHERE bg.book_id = b.id AND bg.genre_slug = ?)")
		args = append(args, filter.Genre)
	}
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`, `+entryColumns+`
		FROM library_entries le
		JOIN books b ON b.id = le.book_id
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY le.updated_at DESC, b.title
		LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("list library: %w", err)
	}
	defer rows.Close()

	items := []domain.LibraryItem{}
	for rows.Next() {
		var item domain.LibraryItem
		entryTargets, finishEntry := entryDest(&item.Entry)
		dest, finishBook := summaryDest(&item.Book, entryTargets...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		finishBook()
		if err := finishEntry(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// StatusesByExternalID returns the user's status for each shelved external id.
func (s *Store) StatusesByExternalID(ctx context.Context, userID string, externalIDs []string) (map[string]domain.ReadingStatus, error) {
	out := make(map[string]domain.ReadingStatus, len(externalIDs))
	if userID == "" || len(externalIDs) == 0 {
		return out, nil
	}

	args := append([]any{userID}, stringArgs(externalIDs)...)
	rows, err := s.db.QueryContext(ctx, `
		SELECT b.external_id, le.status
		FROM library_entries le
		JOIN books b ON b.id = le.book_id
		WHERE le.user_id = ? AND b.external_id IN (`+placeholders(len(externalIDs))+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("library statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var externalID, status string
		if err := rows.Scan(&externalID, &status); err != nil {
			return nil, err
		}
		out[externalID] = domain.ReadingStatus(status)
	}
	return out, rows.Err()
}

// ShelfBooks returns the user's books in one status, most recently updated first.
func (s *Store) ShelfBooks(ctx context.Context, userID string, status domain.ReadingStatus, limit int) ([]domain.BookSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+`
		FROM library_entries le
		JOIN books b ON b.id = le.book_id
		WHERE le.user_id = ? AND le.status = ?
		ORDER BY le.updated_at DESC
		LIMIT ?`, userID, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("shelf books: %w", err)
	}
	defer rows.Close()

	books := []domain.BookSummary{}
	for rows.Next() {
		var b domain.BookSummary
		dest, finish := summaryDest(&b)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		finish()
		books = append(books, b)
	}
	return books, rows.Err()
}

// CountByStatus counts the user's entries in one status.
func (s *Store) CountByStatus(ctx context.Context, userID string, status domain.ReadingStatus) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM library_entries WHERE user_id = ? AND status = ?`,
		userID, string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count by status: %w", err)
	}
	return n, nil
}
