package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// LibraryService manages shelf state.
type LibraryService struct {
	library    store.LibraryStore
	capture    *BookCapture
	visibility *VisibilityService
	validator  *validation.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewLibraryService creates a library service.
func NewLibraryService(
	library store.LibraryStore,
	capture *BookCapture,
	visibility *VisibilityService,
	validator *validation.Validator,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		library:    library,
		capture:    capture,
		visibility: visibility,
		validator:  validator,
		logger:     logger,
		now:        time.Now,
	}
}

// SetStatusRequest shelves a book or moves it to another status.
type SetStatusRequest struct {
	ExternalID string  `json:"external_id" validate:"required,max=128"`
	Status     string  `json:"status" validate:"required,oneof=tbr reading read paused abandoned"`
	Progress   *int    `json:"progress_percent,omitempty" validate:"omitempty,min=0,max=100"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// UpdateEntryRequest edits a book already on the shelf. Nil fields keep their
// stored value.
type UpdateEntryRequest struct {
	ExternalID string  `json:"external_id" validate:"required,max=128"`
	Status     *string `json:"status,omitempty" validate:"omitempty,oneof=tbr reading read paused abandoned"`
	Progress   *int    `json:"progress_percent,omitempty" validate:"omitempty,min=0,max=100"`
	Note       *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}

// LibraryQuery filters a library listing.
type LibraryQuery struct {
	Status string `json:"status,omitempty" validate:"omitempty,oneof=tbr reading read paused abandoned"`
	Year   int    `json:"year,omitempty" validate:"omitempty,min=1000,max=9999"`
	Genre  string `json:"genre,omitempty" validate:"omitempty,max=64"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=100"`
	Offset int    `json:"offset,omitempty" validate:"omitempty,min=0"`
}

// SetStatus applies a status change for userID, capturing the book from the
// catalog on first use. Any known status is accepted from any state.
func (s *LibraryService) SetStatus(ctx context.Context, userID string, req SetStatusRequest) (*domain.LibraryItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	status, _ := domain.ParseReadingStatus(req.Status)

	book, err := s.capture.Ensure(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}

	entry, err := s.library.SetStatus(ctx, userID, book.ID, domain.StatusChange{
		Status:   status,
		Progress: req.Progress,
		Note:     req.Note,
	}, s.now())
	if err != nil {
		return nil, storeError(err, "book")
	}

	s.logger.DebugContext(ctx, "library status set",
		"user_id", userID,
		"book_id", book.ID,
		"status", entry.Status,
		"progress", entry.Progress,
	)
	return &domain.LibraryItem{Book: book.ToSummary(), Entry: *entry}, nil
}

// UpdateEntry edits the caller's entry for a shelved book. Books that are not
// on the shelf are NotFound; use SetStatus to shelve them.
func (s *LibraryService) UpdateEntry(ctx context.Context, userID string, req UpdateEntryRequest) (*domain.LibraryItem, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.capture.Local(ctx, req.ExternalID)
	if err != nil {
		return nil, notShelved(err)
	}
	current, err := s.library.GetLibraryEntry(ctx, userID, book.ID)
	if err != nil {
		return nil, notShelved(storeError(err, "book"))
	}

	status := current.Status
	if req.Status != nil {
		status, _ = domain.ParseReadingStatus(*req.Status)
	}
	entry, err := s.library.SetStatus(ctx, userID, book.ID, domain.StatusChange{
		Status:   status,
		Progress: req.Progress,
		Note:     req.Note,
	}, s.now())
	if err != nil {
		return nil, storeError(err, "book")
	}
	return &domain.LibraryItem{Book: book.ToSummary(), Entry: *entry}, nil
}

func notShelved(err error) error {
	if domainerrors.CodeOf(err) == domainerrors.CodeNotFound {
		return domainerrors.NotFound("book is not on your shelf")
	}
	return err
}

// ListOwn lists the caller's library.
func (s *LibraryService) ListOwn(ctx context.Context, userID string, q LibraryQuery) ([]domain.LibraryItem, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	items, err := s.library.ListLibrary(ctx, userID, filter)
	if err != nil {
		return nil, storeError(err, "library")
	}
	return items, nil
}

// ListFor lists another user's library when the viewer may see it.
func (s *LibraryService) ListFor(ctx context.Context, viewerID, targetID string, q LibraryQuery) ([]domain.LibraryItem, error) {
	filter, err := s.filter(q)
	if err != nil {
		return nil, err
	}
	_, visible, err := s.visibility.Target(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domainerrors.Forbidden("this library is private")
	}
	items, err := s.library.ListLibrary(ctx, targetID, filter)
	if err != nil {
		return nil, storeError(err, "library")
	}
	return items, nil
}

func (s *LibraryService) filter(q LibraryQuery) (domain.LibraryFilter, error) {
	if err := s.validator.Validate(q); err != nil {
		return domain.LibraryFilter{}, err
	}

	page := store.Page{Limit: q.Limit, Offset: q.Offset}.Normalize(50, 100)
	filter := domain.LibraryFilter{
		Genre:  q.Genre,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if q.Status != "" {
		status, _ := domain.ParseReadingStatus(q.Status)
		filter.Status = &status
	}
	if q.Year != 0 {
		year := q.Year
		filter.Year = &year
	}
	return filter, nil
}
