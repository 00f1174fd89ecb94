package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
)

func (s *Server) registerFeedRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getFeed",
		Method:      http.MethodGet,
		Path:        "/api/v1/feed",
		Summary:     "Get feed",
		Description: "Trending books for anonymous or new readers; a personalized mix of preferred genres and followed readers otherwise, padded with trending.",
		Tags:        []string{"Feed"},
	}, s.handleGetFeed)
}

// GetFeedInput contains parameters for the feed.
type GetFeedInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum items (0 uses the server default)"`
}

// FeedOutput wraps the feed for Huma.
type FeedOutput struct {
	Body *domain.Feed
}

func (s *Server) handleGetFeed(ctx context.Context, input *GetFeedInput) (*FeedOutput, error) {
	feed, err := s.services.Feed.Compose(ctx, viewerID(ctx), input.Limit)
	if err != nil {
		return nil, err
	}
	if feed.Items == nil {
		feed.Items = []domain.FeedItem{}
	}
	return &FeedOutput{Body: feed}, nil
}
