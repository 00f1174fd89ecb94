package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEndpoints_RequireAuthentication(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())

	tests := []struct {
		name   string
		method string
		path   string
		body   map[string]any
	}{
		{"shelve", http.MethodPost, "/api/v1/library", map[string]any{"external_id": "abc123", "status": "tbr"}},
		{"update shelf", http.MethodPatch, "/api/v1/library", map[string]any{"external_id": "abc123", "status": "read"}},
		{"rate", http.MethodPost, "/api/v1/ratings", map[string]any{"external_id": "abc123", "overall": 4}},
		{"review", http.MethodPost, "/api/v1/reviews", map[string]any{"external_id": "abc123", "content": "Spice must flow"}},
		{"delete review", http.MethodDelete, "/api/v1/reviews/rev-1", nil},
		{"like", http.MethodPost, "/api/v1/reviews/rev-1/like", nil},
		{"unlike", http.MethodDelete, "/api/v1/reviews/rev-1/like", nil},
		{"follow", http.MethodPost, "/api/v1/social/follow", map[string]any{"target_user_id": "someone"}},
		{"unfollow", http.MethodDelete, "/api/v1/social/follow/someone", nil},
		{"remove follower", http.MethodPost, "/api/v1/social/remove-follower", map[string]any{"follower_id": "someone"}},
		{"privacy", http.MethodPost, "/api/v1/social/privacy", map[string]any{"is_private": true}},
		{"profile", http.MethodPatch, "/api/v1/profile", map[string]any{"bio": "hi"}},
		{"preferences", http.MethodPost, "/api/v1/preferences", map[string]any{"genres": []string{"fantasy"}}},
		{"own library", http.MethodGet, "/api/v1/library", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, header := range []string{"X-Test: anonymous", "Authorization: Bearer not-a-token"} {
				args := []any{header}
				if tt.body != nil {
					args = append(args, tt.body)
				}
				resp := ts.api.Do(tt.method, tt.path, args...)
				require.Equal(t, http.StatusUnauthorized, resp.Code, resp.Body.String())
				assert.Equal(t, "UNAUTHORIZED", decodeEnvelope[any](t, resp.Body).Code)
			}
		})
	}

	// Nothing was captured from the catalog.
	assert.Equal(t, 0, ts.catalog.Calls())
}

func TestSetLibraryStatus_ProgressBounds(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "chani")

	resp := ts.api.Post("/api/v1/library", bearer(token), map[string]any{
		"external_id":      "abc123",
		"status":           "reading",
		"progress_percent": 150,
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)
	env := decodeEnvelope[any](t, resp.Body)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Details, "progress_percent")

	for _, progress := range []int{0, 100} {
		resp := ts.api.Post("/api/v1/library", bearer(token), map[string]any{
			"external_id":      "abc123",
			"status":           "reading",
			"progress_percent": progress,
		})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		assert.Equal(t, progress, decodeEnvelope[LibraryEntryResponse](t, resp.Body).Data.Entry.Progress)
	}
}

func TestSetLibraryStatus_MissingFields(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "stilgar")

	resp := ts.api.Post("/api/v1/library", bearer(token), map[string]any{"external_id": "abc123"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope[any](t, resp.Body).Code)

	resp = ts.api.Post("/api/v1/library", bearer(token), map[string]any{"external_id": "abc123", "status": "burned"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeEnvelope[any](t, resp.Body).Details, "status")
}

func TestLibrary_Lifecycle(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "jessica")

	steps := []map[string]any{
		{"external_id": "abc123", "status": "tbr"},
		{"external_id": "abc123", "status": "reading", "progress_percent": 40},
		{"external_id": "abc123", "status": "read"},
	}
	var last LibraryEntryResponse
	for _, body := range steps {
		resp := ts.api.Post("/api/v1/library", bearer(token), body)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		last = decodeEnvelope[LibraryEntryResponse](t, resp.Body).Data
	}

	assert.Equal(t, "read", string(last.Entry.Status))
	assert.Equal(t, "Read", last.StatusLabel)
	assert.Equal(t, 100, last.Entry.Progress)
	assert.NotNil(t, last.Entry.StartedAt)
	assert.NotNil(t, last.Entry.FinishedAt)
	assert.Equal(t, "Dune", last.Book.Title)
	assert.Equal(t, 1, ts.catalog.Calls(), "book is captured once")

	resp := ts.api.Get("/api/v1/library?status=read", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	items := decodeEnvelope[LibraryResponse](t, resp.Body).Data.Items
	require.Len(t, items, 1)
	assert.Equal(t, "abc123", items[0].Book.ExternalID)

	resp = ts.api.Get("/api/v1/library?status=tbr", bearer(token))
	assert.Empty(t, decodeEnvelope[LibraryResponse](t, resp.Body).Data.Items)
}

func TestUpdateLibraryEntry(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "gurney")

	resp := ts.api.Patch("/api/v1/library", bearer(token), map[string]any{"external_id": "abc123", "note": "later"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Post("/api/v1/library", bearer(token), map[string]any{"external_id": "abc123", "status": "reading"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Patch("/api/v1/library", bearer(token), map[string]any{
		"external_id":      "abc123",
		"progress_percent": 65,
		"note":             "the water of life",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	entry := decodeEnvelope[LibraryEntryResponse](t, resp.Body).Data.Entry
	assert.Equal(t, "reading", string(entry.Status))
	assert.Equal(t, 65, entry.Progress)
	assert.Equal(t, "the water of life", entry.Note)
}

func TestUserLibrary_PrivateRequiresFollow(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	ownerToken, ownerID := ts.register(t, "irulan")
	viewerToken, _ := ts.register(t, "feyd")

	resp := ts.api.Post("/api/v1/library", bearer(ownerToken), map[string]any{"external_id": "abc123", "status": "read"})
	require.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Post("/api/v1/social/privacy", bearer(ownerToken), map[string]any{"is_private": true})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.True(t, decodeEnvelope[PrivacyResponse](t, resp.Body).Data.IsPrivate)

	path := "/api/v1/users/" + ownerID + "/library"

	resp = ts.api.Get(path)
	assert.Equal(t, http.StatusForbidden, resp.Code)
	resp = ts.api.Get(path, bearer(viewerToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)
	assert.Equal(t, "FORBIDDEN", decodeEnvelope[any](t, resp.Body).Code)

	resp = ts.api.Get(path, bearer(ownerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[LibraryResponse](t, resp.Body).Data.Items, 1)

	resp = ts.api.Post("/api/v1/social/follow", bearer(viewerToken), map[string]any{"target_user_id": ownerID})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get(path, bearer(viewerToken))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Len(t, decodeEnvelope[LibraryResponse](t, resp.Body).Data.Items, 1)

	resp = ts.api.Get("/api/v1/users/nobody/library")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
