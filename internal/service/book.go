package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// bookPageReviews is how many reviews a book page carries.
const bookPageReviews = 10

// BookService resolves a book by external id, merging local social context
// with the catalog when the book has never been shelved.
type BookService struct {
	books      store.BookStore
	library    store.LibraryStore
	reviews    store.ReviewStore
	catalog    catalog.Catalog
	visibility *VisibilityService
	logger     *slog.Logger
}

// NewBookService creates a book aggregator.
func NewBookService(
	books store.BookStore,
	library store.LibraryStore,
	reviews store.ReviewStore,
	cat catalog.Catalog,
	visibility *VisibilityService,
	logger *slog.Logger,
) *BookService {
	return &BookService{
		books:      books,
		library:    library,
		reviews:    reviews,
		catalog:    cat,
		visibility: visibility,
		logger:     logger,
	}
}

// ResolveBook returns the local view when the book exists locally and the
// catalog view otherwise. NotFound only when the catalog also has no such id.
func (s *BookService) ResolveBook(ctx context.Context, externalID, viewerID string) (domain.BookView, error) {
	book, err := s.books.GetBookByExternalID(ctx, externalID)
	switch {
	case err == nil:
		return s.localView(ctx, book, viewerID)
	case errors.Is(err, store.ErrNotFound):
	default:
		return nil, storeError(err, "book")
	}

	remote, err := s.catalog.GetByExternalID(ctx, externalID)
	if err != nil {
		return nil, catalogError(err)
	}
	return &domain.ExternalBookView{Book: *remote}, nil
}

func (s *BookService) localView(ctx context.Context, book *domain.Book, viewerID string) (*domain.LocalBookView, error) {
	view := &domain.LocalBookView{Book: *book}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		reviews, err := s.reviews.ListBookReviews(gctx, book.ID, viewerID, store.Page{Limit: bookPageReviews})
		if err != nil {
			return storeError(err, "reviews")
		}
		view.Reviews = reviews
		return nil
	})
	g.Go(func() error {
		count, err := s.books.ReadingCount(gctx, book.ID)
		if err != nil {
			return storeError(err, "book")
		}
		view.ReadingCount = count
		return nil
	})
	if viewerID != "" {
		g.Go(func() error {
			entry, err := s.library.GetLibraryEntry(gctx, viewerID, book.ID)
			switch {
			case err == nil:
				view.ViewerStatus = entry
			case !errors.Is(err, store.ErrNotFound):
				return storeError(err, "library entry")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := s.maskReviews(ctx, viewerID, view.Reviews); err != nil {
		return nil, err
	}
	return view, nil
}

// ListReviews pages through a book's reviews with the same ordering and
// masking as the book page. A book nobody has acted on has no reviews.
func (s *BookService) ListReviews(ctx context.Context, externalID, viewerID string, page store.Page) ([]domain.BookReview, error) {
	book, err := s.books.GetBookByExternalID(ctx, externalID)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.BookReview{}, nil
	}
	if err != nil {
		return nil, storeError(err, "book")
	}

	reviews, err := s.reviews.ListBookReviews(ctx, book.ID, viewerID, page.Normalize(bookPageReviews, 50))
	if err != nil {
		return nil, storeError(err, "reviews")
	}
	if err := s.maskReviews(ctx, viewerID, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// maskReviews hides the identity of private authors the viewer cannot see.
// The viewer's own review is never masked.
func (s *BookService) maskReviews(ctx context.Context, viewerID string, reviews []domain.BookReview) error {
	decided := map[string]bool{}
	for i := range reviews {
		r := &reviews[i]
		if r.IsOwn || !r.AuthorPrivate || r.Author == nil {
			continue
		}

		authorID := r.Author.ID
		visible, ok := decided[authorID]
		if !ok {
			var err error
			visible, err = s.visibility.canViewID(ctx, viewerID, authorID, true)
			if err != nil {
				return err
			}
			decided[authorID] = visible
		}
		if !visible {
			r.Mask()
		}
	}
	return nil
}
