package service

import (
	"context"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

// followChecker answers the one graph question visibility needs.
type followChecker interface {
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)
}

// VisibilityService decides whether a viewer may see a user's library,
// shelves, reviews identity and connection lists. The headline is always
// public. Nothing is cached: every call reads the follow graph afresh.
type VisibilityService struct {
	users  store.UserStore
	follow followChecker
}

// NewVisibilityService creates a visibility authorizer.
func NewVisibilityService(users store.UserStore, follow followChecker) *VisibilityService {
	return &VisibilityService{users: users, follow: follow}
}

// CanView reports whether viewerID ("" for anonymous) may see target.
func (s *VisibilityService) CanView(ctx context.Context, viewerID string, target *domain.User) (bool, error) {
	return s.canViewID(ctx, viewerID, target.ID, target.IsPrivate)
}

// Target loads a live user and evaluates CanView for it.
// Soft-deleted and unknown users are NotFound.
func (s *VisibilityService) Target(ctx context.Context, viewerID, targetID string) (*domain.User, bool, error) {
	target, err := s.users.GetUser(ctx, targetID)
	if err != nil {
		return nil, false, storeError(err, "user")
	}
	visible, err := s.CanView(ctx, viewerID, target)
	if err != nil {
		return nil, false, err
	}
	return target, visible, nil
}

func (s *VisibilityService) canViewID(ctx context.Context, viewerID, targetID string, targetPrivate bool) (bool, error) {
	switch {
	case viewerID != "" && viewerID == targetID:
		return true, nil
	case !targetPrivate:
		return true, nil
	case viewerID == "":
		return false, nil
	}

	following, err := s.follow.IsFollowing(ctx, viewerID, targetID)
	if err != nil {
		return false, storeError(err, "follow")
	}
	return following, nil
}
