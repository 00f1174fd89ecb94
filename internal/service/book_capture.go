package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/id"
	"github.com/storyspine/storyspine-server/internal/store"
)

// coverHasher computes a placeholder hash for a cover image.
type coverHasher interface {
	BlurHash(ctx context.Context, url string) (string, error)
}

// BookCapture creates the local Book the first time a user acts on an
// external id. Catalog metadata is copied once and never refreshed.
type BookCapture struct {
	books   store.BookStore
	catalog catalog.Catalog
	covers  coverHasher
	logger  *slog.Logger
	now     func() time.Time
}

// NewBookCapture creates a book capture. covers may be nil.
func NewBookCapture(books store.BookStore, cat catalog.Catalog, covers coverHasher, logger *slog.Logger) *BookCapture {
	return &BookCapture{
		books:   books,
		catalog: cat,
		covers:  covers,
		logger:  logger,
		now:     time.Now,
	}
}

// Ensure returns the local book for externalID, fetching and storing it from
// the catalog on first use. Concurrent first uses converge on one row.
func (c *BookCapture) Ensure(ctx context.Context, externalID string) (*domain.Book, error) {
	book, err := c.books.GetBookByExternalID(ctx, externalID)
	if err == nil {
		return book, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, storeError(err, "book")
	}

	remote, err := c.catalog.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, catalogError(err)
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}
	book = remote.ToBook(bookID, c.now())
	book.CoverBlurHash = c.blurHash(ctx, book.CoverURL)

	stored, err := c.books.EnsureBook(ctx, book)
	if err != nil {
		return nil, storeError(err, "book")
	}
	if stored.ID == bookID {
		c.logger.InfoContext(ctx, "captured book from catalog",
			"book_id", stored.ID,
			"external_id", externalID,
			"title", stored.Title,
		)
	}
	return stored, nil
}

// Local returns the local book for externalID without consulting the catalog.
func (c *BookCapture) Local(ctx context.Context, externalID string) (*domain.Book, error) {
	book, err := c.books.GetBookByExternalID(ctx, externalID)
	if err != nil {
		return nil, storeError(err, "book")
	}
	return book, nil
}

// blurHash is best effort: a failed cover download leaves the hash empty.
func (c *BookCapture) blurHash(ctx context.Context, coverURL string) string {
	if c.covers == nil || coverURL == "" {
		return ""
	}
	hash, err := c.covers.BlurHash(ctx, coverURL)
	if err != nil {
		c.logger.DebugContext(ctx, "cover blurhash skipped", "url", coverURL, "error", err)
		return ""
	}
	return hash
}
