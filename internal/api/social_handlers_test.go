package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func TestFollow_CountsReadImmediately(t *testing.T) {
	ts := setupTestServer(t, Options{})
	_, aliceID := ts.register(t, "alice")

	for _, name := range []string{"fan_one", "fan_two", "fan_three"} {
		token, _ := ts.register(t, name)
		resp := ts.api.Post("/api/v1/social/follow", bearer(token), map[string]any{"target_user_id": aliceID})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Get("/api/v1/profile/" + aliceID)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 3, decodeEnvelope[domain.Profile](t, resp.Body).Data.Counts.Followers)

	bobToken, _ := ts.register(t, "bob")
	resp = ts.api.Post("/api/v1/social/follow", bearer(bobToken), map[string]any{"target_user_id": aliceID})
	require.Equal(t, http.StatusOK, resp.Code)
	state := decodeEnvelope[service.FollowState](t, resp.Body).Data
	assert.True(t, state.Following)
	assert.Equal(t, 4, state.Counts.Followers)

	// Following again is a no-op success.
	resp = ts.api.Post("/api/v1/social/follow", bearer(bobToken), map[string]any{"target_user_id": aliceID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/profile/"+aliceID, bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decodeEnvelope[domain.Profile](t, resp.Body).Data
	assert.Equal(t, 4, profile.Counts.Followers)
	assert.True(t, profile.ViewerFollows)
}

func TestFollow_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, userID := ts.register(t, "narcissus")

	resp := ts.api.Post("/api/v1/social/follow", bearer(token), map[string]any{"target_user_id": userID})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/social/follow", bearer(token), map[string]any{"target_user_id": ""})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/social/follow", bearer(token), map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Post("/api/v1/social/follow", bearer(token), map[string]any{"target_user_id": "ghost"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUnfollowAndRemoveFollower_AreIdempotent(t *testing.T) {
	ts := setupTestServer(t, Options{})
	aliceToken, aliceID := ts.register(t, "alice")
	bobToken, bobID := ts.register(t, "bob")

	resp := ts.api.Delete("/api/v1/social/follow/"+aliceID, bearer(bobToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.False(t, decodeEnvelope[service.FollowState](t, resp.Body).Data.Following)

	resp = ts.api.Post("/api/v1/social/follow", bearer(bobToken), map[string]any{"target_user_id": aliceID})
	require.Equal(t, http.StatusOK, resp.Code)

	for range 2 {
		resp = ts.api.Post("/api/v1/social/remove-follower", bearer(aliceToken), map[string]any{"follower_id": bobID})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, 0, decodeEnvelope[CountsResponse](t, resp.Body).Data.Counts.Followers)
	}
}

func TestProfile_PrivateIsRestricted(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	ownerToken, ownerID := ts.register(t, "hidden_reader")
	viewerToken, _ := ts.register(t, "curious")

	resp := ts.api.Patch("/api/v1/profile", bearer(ownerToken), map[string]any{
		"display_name": "Hidden Reader",
		"bio":          "Reads in the dark",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/library", bearer(ownerToken), map[string]any{"external_id": "abc123", "status": "reading"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Post("/api/v1/social/privacy", bearer(ownerToken), map[string]any{"is_private": true})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/profile/"+ownerID, bearer(viewerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	profile := decodeEnvelope[domain.Profile](t, resp.Body).Data
	assert.True(t, profile.Restricted)
	assert.Equal(t, "Hidden Reader", profile.Headline.DisplayName)
	assert.NotEmpty(t, profile.Headline.AvatarColor)
	assert.Empty(t, profile.Bio)
	assert.Empty(t, profile.CurrentlyReading)

	resp = ts.api.Get("/api/v1/users/"+ownerID+"/followers", bearer(viewerToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Get("/api/v1/profile/"+ownerID, bearer(ownerToken))
	profile = decodeEnvelope[domain.Profile](t, resp.Body).Data
	assert.False(t, profile.Restricted)
	assert.Equal(t, "Reads in the dark", profile.Bio)
	require.Len(t, profile.CurrentlyReading, 1)
	assert.Equal(t, "Dune", profile.CurrentlyReading[0].Title)

	resp = ts.api.Get("/api/v1/profile/nobody")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestListFollowers(t *testing.T) {
	ts := setupTestServer(t, Options{})
	_, aliceID := ts.register(t, "alice")
	bobToken, bobID := ts.register(t, "bob")

	resp := ts.api.Post("/api/v1/social/follow", bearer(bobToken), map[string]any{"target_user_id": aliceID})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/users/" + aliceID + "/followers")
	require.Equal(t, http.StatusOK, resp.Code)
	users := decodeEnvelope[ConnectionsResponse](t, resp.Body).Data.Users
	require.Len(t, users, 1)
	assert.Equal(t, bobID, users[0].ID)
	assert.Equal(t, "bob", users[0].Username)

	resp = ts.api.Get("/api/v1/users/" + bobID + "/following")
	require.Equal(t, http.StatusOK, resp.Code)
	users = decodeEnvelope[ConnectionsResponse](t, resp.Body).Data.Users
	require.Len(t, users, 1)
	assert.Equal(t, aliceID, users[0].ID)
}

func TestSearchReaders(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.register(t, "night_owl")

	resp := ts.api.Patch("/api/v1/profile", bearer(token), map[string]any{"display_name": "Maya Reads"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/search/users?q=maya")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	users := decodeEnvelope[SearchReadersResponse](t, resp.Body).Data.Users
	require.Len(t, users, 1)
	assert.Equal(t, "night_owl", users[0].Username)
}

func TestSearchReaders_PrivateBioNotSearchable(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.register(t, "quietreader")

	resp := ts.api.Patch("/api/v1/profile", bearer(token), map[string]any{"bio": "recovering from chemotherapy"})
	require.Equal(t, http.StatusOK, resp.Code)

	search := func() []domain.UserHeadline {
		t.Helper()
		resp := ts.api.Get("/api/v1/search/users?q=chemotherapy")
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		return decodeEnvelope[SearchReadersResponse](t, resp.Body).Data.Users
	}
	require.Len(t, search(), 1)

	resp = ts.api.Post("/api/v1/social/privacy", bearer(token), map[string]any{"is_private": true})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, search(), "a private bio must not be searchable")

	resp = ts.api.Get("/api/v1/search/users?q=quietreader")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[SearchReadersResponse](t, resp.Body).Data.Users, 1, "the headline stays searchable")

	resp = ts.api.Post("/api/v1/social/privacy", bearer(token), map[string]any{"is_private": false})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, search(), 1)
}
