package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "upsertReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews",
		Summary:     "Write review",
		Description: "Creates or replaces the caller's review of a book. Each reader has one review per book.",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleUpsertReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{reviewId}",
		Summary:     "Delete review",
		Description: "Deletes one of the caller's reviews",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleDeleteReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "likeReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews/{reviewId}/like",
		Summary:     "Like review",
		Description: "Likes a review. Liking twice is a no-op.",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleLikeReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "unlikeReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{reviewId}/like",
		Summary:     "Unlike review",
		Description: "Removes the caller's like. Unliking a review not liked succeeds.",
		Tags:        []string{"Reviews"},
		Security:    bearerAuth,
	}, s.handleUnlikeReview)
}

// UpsertReviewRequest is the request body for a review.
type UpsertReviewRequest struct {
	ExternalID string `json:"external_id" doc:"Catalog volume id"`
	Content    string `json:"content" doc:"Review text"`
	Spoiler    bool   `json:"spoiler,omitempty" doc:"Hide behind a spoiler warning"`
}

// UpsertReviewInput wraps the review request for Huma.
type UpsertReviewInput struct {
	Body UpsertReviewRequest
}

// ReviewOutput wraps a stored review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// ReviewIDInput addresses a review by id.
type ReviewIDInput struct {
	ReviewID string `path:"reviewId" maxLength:"64" doc:"Review id"`
}

// LikeOutput wraps the like state for Huma.
type LikeOutput struct {
	Body *service.LikeState
}

func (s *Server) handleUpsertReview(ctx context.Context, input *UpsertReviewInput) (*ReviewOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	review, err := s.services.Review.Upsert(ctx, userID, service.UpsertReviewRequest{
		ExternalID: input.Body.ExternalID,
		Content:    input.Body.Content,
		Spoiler:    input.Body.Spoiler,
	})
	if err != nil {
		return nil, err
	}
	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.services.Review.Delete(ctx, userID, input.ReviewID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Review deleted"}}, nil
}

func (s *Server) handleLikeReview(ctx context.Context, input *ReviewIDInput) (*LikeOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.services.Engagement.Like(ctx, userID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &LikeOutput{Body: state}, nil
}

func (s *Server) handleUnlikeReview(ctx context.Context, input *ReviewIDInput) (*LikeOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	state, err := s.services.Engagement.Unlike(ctx, userID, input.ReviewID)
	if err != nil {
		return nil, err
	}
	return &LikeOutput{Body: state}, nil
}
