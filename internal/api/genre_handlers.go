package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Lists the genre catalogue readers can prefer",
		Tags:        []string{"Genres"},
	}, s.handleListGenres)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/v1/preferences",
		Summary:     "Get genre preferences",
		Tags:        []string{"Genres"},
		Security:    bearerAuth,
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "replacePreferences",
		Method:      http.MethodPost,
		Path:        "/api/v1/preferences",
		Summary:     "Replace genre preferences",
		Description: "Replaces the caller's preferred genres with the given set",
		Tags:        []string{"Genres"},
		Security:    bearerAuth,
	}, s.handleReplacePreferences)
}

// GenresResponse contains a list of genres.
type GenresResponse struct {
	Genres []domain.Genre `json:"genres"`
}

// GenresOutput wraps a genre list for Huma.
type GenresOutput struct {
	Body GenresResponse
}

// PreferencesRequest is the request body for replacing preferences.
type PreferencesRequest struct {
	Genres []string `json:"genres" doc:"Genre slugs; an empty list clears preferences"`
}

// PreferencesInput wraps the preferences request for Huma.
type PreferencesInput struct {
	Body PreferencesRequest
}

func (s *Server) handleListGenres(ctx context.Context, _ *struct{}) (*GenresOutput, error) {
	genres, err := s.services.Preference.ListGenres(ctx)
	if err != nil {
		return nil, err
	}
	return genresOutput(genres), nil
}

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*GenresOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	genres, err := s.services.Preference.ListPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	return genresOutput(genres), nil
}

func (s *Server) handleReplacePreferences(ctx context.Context, input *PreferencesInput) (*GenresOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	genres, err := s.services.Preference.ReplacePreferences(ctx, userID, input.Body.Genres)
	if err != nil {
		return nil, err
	}
	return genresOutput(genres), nil
}

func genresOutput(genres []domain.Genre) *GenresOutput {
	if genres == nil {
		genres = []domain.Genre{}
	}
	return &GenresOutput{Body: GenresResponse{Genres: genres}}
}
