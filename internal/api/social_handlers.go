package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "followUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/social/follow",
		Summary:     "Follow reader",
		Description: "Follows a reader. Following twice is a no-op.",
		Tags:        []string{"Social"},
		Security:    bearerAuth,
	}, s.handleFollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "unfollowUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/social/follow/{targetUserId}",
		Summary:     "Unfollow reader",
		Description: "Stops following a reader. Unfollowing someone not followed succeeds.",
		Tags:        []string{"Social"},
		Security:    bearerAuth,
	}, s.handleUnfollow)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeFollower",
		Method:      http.MethodPost,
		Path:        "/api/v1/social/remove-follower",
		Summary:     "Remove follower",
		Description: "Removes a reader from the caller's followers",
		Tags:        []string{"Social"},
		Security:    bearerAuth,
	}, s.handleRemoveFollower)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPrivacy",
		Method:      http.MethodPost,
		Path:        "/api/v1/social/privacy",
		Summary:     "Set privacy",
		Description: "Makes the caller's library and lists visible to followers only, or to everyone",
		Tags:        []string{"Social"},
		Security:    bearerAuth,
	}, s.handleSetPrivacy)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowers",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/followers",
		Summary:     "List followers",
		Tags:        []string{"Social"},
	}, s.handleListFollowers)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFollowing",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/following",
		Summary:     "List following",
		Tags:        []string{"Social"},
	}, s.handleListFollowing)
}

// === DTOs ===

// FollowRequest is the request body for following a reader.
type FollowRequest struct {
	TargetUserID string `json:"target_user_id" doc:"Reader to follow"`
}

// FollowInput wraps the follow request for Huma.
type FollowInput struct {
	Body FollowRequest
}

// UnfollowInput contains parameters for unfollowing.
type UnfollowInput struct {
	TargetUserID string `path:"targetUserId" maxLength:"64" doc:"Reader to unfollow"`
}

// FollowOutput wraps the follow state for Huma.
type FollowOutput struct {
	Body *service.FollowState
}

// RemoveFollowerRequest is the request body for removing a follower.
type RemoveFollowerRequest struct {
	FollowerID string `json:"follower_id" doc:"Follower to remove"`
}

// RemoveFollowerInput wraps the remove request for Huma.
type RemoveFollowerInput struct {
	Body RemoveFollowerRequest
}

// CountsResponse contains the caller's follow counts.
type CountsResponse struct {
	Counts domain.FollowCounts `json:"counts"`
}

// CountsOutput wraps the counts for Huma.
type CountsOutput struct {
	Body CountsResponse
}

// PrivacyRequest is the request body for the privacy toggle.
type PrivacyRequest struct {
	IsPrivate bool `json:"is_private" doc:"true hides library and lists from non-followers"`
}

// PrivacyInput wraps the privacy request for Huma.
type PrivacyInput struct {
	Body PrivacyRequest
}

// PrivacyResponse reports the stored privacy flag.
type PrivacyResponse struct {
	User      domain.UserHeadline `json:"user"`
	IsPrivate bool                `json:"is_private"`
}

// PrivacyOutput wraps the privacy response for Huma.
type PrivacyOutput struct {
	Body PrivacyResponse
}

// ConnectionsInput contains parameters for follower lists.
type ConnectionsInput struct {
	UserID string `path:"userId" maxLength:"64" doc:"Reader id"`
	PageParams
}

// ConnectionsResponse contains one page of a follower list.
type ConnectionsResponse struct {
	Users []domain.Connection `json:"users"`
}

// ConnectionsOutput wraps a follower list for Huma.
type ConnectionsOutput struct {
	Body ConnectionsResponse
}

// === Handlers ===

func (s *Server) handleFollow(ctx context.Context, input *FollowInput) (*FollowOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.services.Social.Follow(ctx, userID, input.Body.TargetUserID)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: state}, nil
}

func (s *Server) handleUnfollow(ctx context.Context, input *UnfollowInput) (*FollowOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.services.Social.Unfollow(ctx, userID, input.TargetUserID)
	if err != nil {
		return nil, err
	}
	return &FollowOutput{Body: state}, nil
}

func (s *Server) handleRemoveFollower(ctx context.Context, input *RemoveFollowerInput) (*CountsOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.services.Social.RemoveFollower(ctx, userID, input.Body.FollowerID)
	if err != nil {
		return nil, err
	}
	return &CountsOutput{Body: CountsResponse{Counts: counts}}, nil
}

func (s *Server) handleSetPrivacy(ctx context.Context, input *PrivacyInput) (*PrivacyOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Social.SetPrivacy(ctx, userID, input.Body.IsPrivate)
	if err != nil {
		return nil, err
	}
	return &PrivacyOutput{Body: PrivacyResponse{User: user.Headline(), IsPrivate: user.IsPrivate}}, nil
}

func (s *Server) handleListFollowers(ctx context.Context, input *ConnectionsInput) (*ConnectionsOutput, error) {
	conns, err := s.services.Social.ListFollowers(ctx, viewerID(ctx), input.UserID, input.page())
	if err != nil {
		return nil, err
	}
	return connectionsOutput(conns), nil
}

func (s *Server) handleListFollowing(ctx context.Context, input *ConnectionsInput) (*ConnectionsOutput, error) {
	conns, err := s.services.Social.ListFollowing(ctx, viewerID(ctx), input.UserID, input.page())
	if err != nil {
		return nil, err
	}
	return connectionsOutput(conns), nil
}

func connectionsOutput(conns []domain.Connection) *ConnectionsOutput {
	if conns == nil {
		conns = []domain.Connection{}
	}
	return &ConnectionsOutput{Body: ConnectionsResponse{Users: conns}}
}
