package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerRatingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "rateBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/ratings",
		Summary:     "Rate book",
		Description: "Stores the caller's rating. A resubmission replaces every dimension; omitted dimensions are cleared.",
		Tags:        []string{"Ratings"},
		Security:    bearerAuth,
	}, s.handleRateBook)
}

// RateBookRequest is the request body for a rating.
type RateBookRequest struct {
	ExternalID string `json:"external_id" doc:"Catalog volume id"`
	Overall    int    `json:"overall" doc:"1-5"`
	Character  *int   `json:"character,omitempty" doc:"1-5"`
	Pacing     *int   `json:"pacing,omitempty" doc:"1-5"`
	Storyline  *int   `json:"storyline,omitempty" doc:"1-5"`
	Writing    *int   `json:"writing,omitempty" doc:"1-5"`
	Spicy      *int   `json:"spicy,omitempty" doc:"1-5"`
}

// RateBookInput wraps the rating request for Huma.
type RateBookInput struct {
	Body RateBookRequest
}

// RateBookOutput wraps the stored rating for Huma.
type RateBookOutput struct {
	Body *service.RateResult
}

func (s *Server) handleRateBook(ctx context.Context, input *RateBookInput) (*RateBookOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	b := input.Body
	result, err := s.services.Rating.Rate(ctx, userID, service.RateRequest{
		ExternalID: b.ExternalID,
		RatingDimensions: domain.RatingDimensions{
			Overall:   b.Overall,
			Character: b.Character,
			Pacing:    b.Pacing,
			Storyline: b.Storyline,
			Writing:   b.Writing,
			Spicy:     b.Spicy,
		},
	})
	if err != nil {
		return nil, err
	}
	return &RateBookOutput{Body: result}, nil
}
