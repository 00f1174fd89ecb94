package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/profile/{userId}",
		Summary:     "Get profile",
		Description: "Returns a reader's profile. The headline and follow counts are always shown; shelves, bio and reviews only when the viewer may see the reader.",
		Tags:        []string{"Profile"},
	}, s.handleGetProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/profile",
		Summary:     "Update profile",
		Description: "Edits the caller's display name, bio or avatar. Omitted fields are unchanged.",
		Tags:        []string{"Profile"},
		Security:    bearerAuth,
	}, s.handleUpdateProfile)
}

// GetProfileInput contains parameters for getting a profile.
type GetProfileInput struct {
	UserID string `path:"userId" maxLength:"64" doc:"Reader id"`
}

// ProfileOutput wraps a profile for Huma.
type ProfileOutput struct {
	Body *domain.Profile
}

// UpdateProfileRequest is the request body for profile edits.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" doc:"Name shown to other readers"`
	Bio         *string `json:"bio,omitempty" doc:"Short bio"`
	AvatarURL   *string `json:"avatar_url,omitempty" doc:"Avatar image URL"`
}

// UpdateProfileInput wraps the profile edit for Huma.
type UpdateProfileInput struct {
	Body UpdateProfileRequest
}

// UserOutput wraps the caller's account for Huma.
type UserOutput struct {
	Body *domain.User
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profile.GetProfile(ctx, viewerID(ctx), input.UserID)
	if err != nil {
		return nil, err
	}
	return &ProfileOutput{Body: profile}, nil
}

func (s *Server) handleUpdateProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		DisplayName: input.Body.DisplayName,
		Bio:         input.Body.Bio,
		AvatarURL:   input.Body.AvatarURL,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: user}, nil
}
