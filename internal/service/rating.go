package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// RatingService records multi-dimension ratings.
type RatingService struct {
	ratings   store.RatingStore
	books     store.BookStore
	capture   *BookCapture
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewRatingService creates a rating service.
func NewRatingService(
	ratings store.RatingStore,
	books store.BookStore,
	capture *BookCapture,
	validator *validation.Validator,
	logger *slog.Logger,
) *RatingService {
	return &RatingService{
		ratings:   ratings,
		books:     books,
		capture:   capture,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// RateRequest submits a rating. Resubmitting replaces every dimension, so an
// omitted optional dimension clears an earlier score.
type RateRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=128"`
	domain.RatingDimensions
}

// RateResult is the stored rating with the book's refreshed aggregates.
type RateResult struct {
	Rating     *domain.Rating      `json:"rating"`
	BookRating domain.LocalRatings `json:"book_ratings"`
}

// Rate upserts userID's rating of a book, capturing the book on first use.
func (s *RatingService) Rate(ctx context.Context, userID string, req RateRequest) (*RateResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.capture.Ensure(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if err := s.ratings.UpsertRating(ctx, &domain.Rating{
		UserID:           userID,
		BookID:           book.ID,
		RatingDimensions: req.RatingDimensions,
		CreatedAt:        now,
		UpdatedAt:        now,
	}); err != nil {
		return nil, storeError(err, "book")
	}

	rating, err := s.ratings.GetRating(ctx, userID, book.ID)
	if err != nil {
		return nil, storeError(err, "rating")
	}
	refreshed, err := s.books.GetBookByExternalID(ctx, req.ExternalID)
	if err != nil {
		return nil, storeError(err, "book")
	}

	s.logger.DebugContext(ctx, "rating saved", "user_id", userID, "book_id", book.ID, "overall", rating.Overall)
	return &RateResult{Rating: rating, BookRating: refreshed.Ratings}, nil
}
