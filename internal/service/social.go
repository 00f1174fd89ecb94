package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
)

// SocialService manages the follow graph and profile privacy.
type SocialService struct {
	users      store.UserStore
	social     store.SocialStore
	visibility *VisibilityService
	index      readerIndexer
	logger     *slog.Logger
	now        func() time.Time
}

// NewSocialService creates a social service. index may be nil.
func NewSocialService(
	users store.UserStore,
	social store.SocialStore,
	visibility *VisibilityService,
	index readerIndexer,
	logger *slog.Logger,
) *SocialService {
	return &SocialService{
		users:      users,
		social:     social,
		visibility: visibility,
		index:      index,
		logger:     logger,
		now:        time.Now,
	}
}

// FollowState is the result of a follow toggle.
type FollowState struct {
	Following bool                `json:"following"`
	Counts    domain.FollowCounts `json:"counts"`
}

// Follow makes followerID follow targetID. Following twice is a no-op.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID string) (*FollowState, error) {
	if targetID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"target_user_id": "is required"})
	}
	if followerID == targetID {
		return nil, domainerrors.Validation("you cannot follow yourself")
	}
	if _, err := s.users.GetUser(ctx, targetID); err != nil {
		return nil, storeError(err, "user")
	}
	if err := s.social.Follow(ctx, followerID, targetID, s.now()); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.DebugContext(ctx, "followed user", "follower_id", followerID, "followee_id", targetID)
	return s.state(ctx, followerID, targetID)
}

// Unfollow removes the edge followerID → targetID. A missing edge is fine.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID string) (*FollowState, error) {
	if targetID == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"target_user_id": "is required"})
	}
	if err := s.social.Unfollow(ctx, followerID, targetID); err != nil {
		return nil, storeError(err, "follow")
	}
	s.logger.DebugContext(ctx, "unfollowed user", "follower_id", followerID, "followee_id", targetID)
	return s.state(ctx, followerID, targetID)
}

// RemoveFollower deletes the edge followerID → userID. Only the followee can
// call it because userID is always the caller.
func (s *SocialService) RemoveFollower(ctx context.Context, userID, followerID string) (domain.FollowCounts, error) {
	if followerID == "" {
		return domain.FollowCounts{}, domainerrors.ValidationWithDetails("validation failed", map[string]string{"follower_id": "is required"})
	}
	if err := s.social.Unfollow(ctx, followerID, userID); err != nil {
		return domain.FollowCounts{}, storeError(err, "follow")
	}
	counts, err := s.social.FollowCounts(ctx, userID)
	if err != nil {
		return domain.FollowCounts{}, storeError(err, "user")
	}
	return counts, nil
}

// SetPrivacy toggles whether userID's library and lists are private. The
// reader index is refreshed so a private bio stops being searchable.
func (s *SocialService) SetPrivacy(ctx context.Context, userID string, isPrivate bool) (*domain.User, error) {
	user, err := s.users.SetPrivacy(ctx, userID, isPrivate, s.now())
	if err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.InfoContext(ctx, "privacy changed", "user_id", userID, "is_private", isPrivate)

	if s.index != nil {
		if err := s.index.IndexUser(user); err != nil {
			s.logger.WarnContext(ctx, "reader index update failed", "user_id", userID, "error", err)
		}
	}
	return user, nil
}

// ListFollowers lists who follows targetID when the viewer may see them.
func (s *SocialService) ListFollowers(ctx context.Context, viewerID, targetID string, page store.Page) ([]domain.Connection, error) {
	if err := s.requireVisible(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	conns, err := s.social.ListFollowers(ctx, targetID, page.Normalize(20, 100))
	if err != nil {
		return nil, storeError(err, "followers")
	}
	return conns, nil
}

// ListFollowing lists who targetID follows when the viewer may see them.
func (s *SocialService) ListFollowing(ctx context.Context, viewerID, targetID string, page store.Page) ([]domain.Connection, error) {
	if err := s.requireVisible(ctx, viewerID, targetID); err != nil {
		return nil, err
	}
	conns, err := s.social.ListFollowing(ctx, targetID, page.Normalize(20, 100))
	if err != nil {
		return nil, storeError(err, "following")
	}
	return conns, nil
}

func (s *SocialService) requireVisible(ctx context.Context, viewerID, targetID string) error {
	_, visible, err := s.visibility.Target(ctx, viewerID, targetID)
	if err != nil {
		return err
	}
	if !visible {
		return domainerrors.Forbidden("this profile is private")
	}
	return nil
}

func (s *SocialService) state(ctx context.Context, followerID, targetID string) (*FollowState, error) {
	following, err := s.social.IsFollowing(ctx, followerID, targetID)
	if err != nil {
		return nil, storeError(err, "follow")
	}
	counts, err := s.social.FollowCounts(ctx, targetID)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return &FollowState{Following: following, Counts: counts}, nil
}
