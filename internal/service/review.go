package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/id"
	"github.com/storyspine/storyspine-server/internal/store"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// ReviewService writes and deletes reviews.
type ReviewService struct {
	reviews   store.ReviewStore
	capture   *BookCapture
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewReviewService creates a review service.
func NewReviewService(reviews store.ReviewStore, capture *BookCapture, validator *validation.Validator, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:   reviews,
		capture:   capture,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// UpsertReviewRequest writes the caller's review of a book.
type UpsertReviewRequest struct {
	ExternalID string `json:"external_id" validate:"required,max=128"`
	Content    string `json:"content" validate:"notblank,max=10000"`
	Spoiler    bool   `json:"spoiler"`
}

// Upsert creates or replaces userID's single review of a book. A deleted
// review is revived with its likes.
func (s *ReviewService) Upsert(ctx context.Context, userID string, req UpsertReviewRequest) (*domain.Review, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.capture.Ensure(ctx, req.ExternalID)
	if err != nil {
		return nil, err
	}

	reviewID, err := id.Generate(id.PrefixReview)
	if err != nil {
		return nil, err
	}
	now := s.now()
	review, err := s.reviews.UpsertReview(ctx, &domain.Review{
		ID:        reviewID,
		UserID:    userID,
		BookID:    book.ID,
		Content:   req.Content,
		Spoiler:   req.Spoiler,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, storeError(err, "book")
	}

	s.logger.DebugContext(ctx, "review saved", "user_id", userID, "review_id", review.ID, "book_id", book.ID)
	return review, nil
}

// Delete soft-deletes a review. Only its author may delete it.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := s.reviews.GetReview(ctx, reviewID)
	if err != nil {
		return storeError(err, "review")
	}
	if review.UserID != userID {
		return domainerrors.Forbidden("only the author can delete a review")
	}
	if err := s.reviews.SoftDeleteReview(ctx, reviewID, s.now()); err != nil {
		return storeError(err, "review")
	}
	s.logger.InfoContext(ctx, "review deleted", "user_id", userID, "review_id", reviewID)
	return nil
}
