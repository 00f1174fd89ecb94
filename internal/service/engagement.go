package service

import (
	"context"
	"log/slog"
	"time"

	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
)

// EngagementService toggles review likes.
type EngagementService struct {
	likes  store.EngagementStore
	logger *slog.Logger
	now    func() time.Time
}

// NewEngagementService creates an engagement service.
func NewEngagementService(likes store.EngagementStore, logger *slog.Logger) *EngagementService {
	return &EngagementService{likes: likes, logger: logger, now: time.Now}
}

// LikeState is a review's like status for the caller.
type LikeState struct {
	ReviewID  string `json:"review_id"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"like_count"`
}

// Like records userID's like. Liking twice is a no-op; self-likes count.
func (s *EngagementService) Like(ctx context.Context, userID, reviewID string) (*LikeState, error) {
	if reviewID == "" {
		return nil, domainerrors.Validation("review id is required")
	}
	count, err := s.likes.LikeReview(ctx, userID, reviewID, s.now())
	if err != nil {
		return nil, storeError(err, "review")
	}
	return &LikeState{ReviewID: reviewID, Liked: true, LikeCount: count}, nil
}

// Unlike removes userID's like. Unliking without a like is a no-op.
func (s *EngagementService) Unlike(ctx context.Context, userID, reviewID string) (*LikeState, error) {
	if reviewID == "" {
		return nil, domainerrors.Validation("review id is required")
	}
	count, err := s.likes.UnlikeReview(ctx, userID, reviewID)
	if err != nil {
		return nil, storeError(err, "review")
	}
	return &LikeState{ReviewID: reviewID, Liked: false, LikeCount: count}, nil
}
