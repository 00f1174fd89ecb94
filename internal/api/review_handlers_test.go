package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func TestUpsertReview_OneReviewPerBook(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "critic")

	resp := ts.api.Post("/api/v1/reviews", bearer(token), map[string]any{
		"external_id": "abc123",
		"content":     "First take",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	first := decodeEnvelope[domain.Review](t, resp.Body).Data

	resp = ts.api.Post("/api/v1/reviews", bearer(token), map[string]any{
		"external_id": "abc123",
		"content":     "Second thoughts",
		"spoiler":     true,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	second := decodeEnvelope[domain.Review](t, resp.Body).Data
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Second thoughts", second.Content)
	assert.True(t, second.Spoiler)

	resp = ts.api.Get("/api/v1/books/abc123/reviews", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	reviews := decodeEnvelope[ReviewsResponse](t, resp.Body).Data.Reviews
	require.Len(t, reviews, 1)
	assert.Equal(t, "Second thoughts", reviews[0].Content)
	assert.True(t, reviews[0].IsOwn)
}

func TestUpsertReview_BlankContent(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "quiet")

	resp := ts.api.Post("/api/v1/reviews", bearer(token), map[string]any{
		"external_id": "abc123",
		"content":     "   ",
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeEnvelope[any](t, resp.Body).Details, "content")

	resp = ts.api.Post("/api/v1/reviews", bearer(token), map[string]any{"external_id": "abc123"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDeleteReview_OwnerOnly(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	authorToken, _ := ts.register(t, "author")
	otherToken, _ := ts.register(t, "other")

	resp := ts.api.Post("/api/v1/reviews", bearer(authorToken), map[string]any{
		"external_id": "abc123",
		"content":     "Mine",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	reviewID := decodeEnvelope[domain.Review](t, resp.Body).Data.ID

	resp = ts.api.Delete("/api/v1/reviews/"+reviewID, bearer(otherToken))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/reviews/"+reviewID, bearer(authorToken))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/books/abc123/reviews")
	reviews := decodeEnvelope[ReviewsResponse](t, resp.Body).Data.Reviews
	require.Len(t, reviews, 1)
	assert.Equal(t, reviewID, reviews[0].ID)
	assert.True(t, reviews[0].IsDeleted)
	assert.NotNil(t, reviews[0].DeletedAt)
	assert.Empty(t, reviews[0].Content)
	assert.Nil(t, reviews[0].Author)

	resp = ts.api.Delete("/api/v1/reviews/rev-missing", bearer(authorToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestLikeReview_Idempotent(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	authorToken, _ := ts.register(t, "author")
	fanToken, _ := ts.register(t, "fan")

	resp := ts.api.Post("/api/v1/reviews", bearer(authorToken), map[string]any{
		"external_id": "abc123",
		"content":     "Worth it",
	})
	require.Equal(t, http.StatusOK, resp.Code)
	reviewID := decodeEnvelope[domain.Review](t, resp.Body).Data.ID

	for range 2 {
		resp = ts.api.Post("/api/v1/reviews/"+reviewID+"/like", bearer(fanToken))
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
		state := decodeEnvelope[service.LikeState](t, resp.Body).Data
		assert.True(t, state.Liked)
		assert.Equal(t, 1, state.LikeCount)
	}

	// Authors may like their own review.
	resp = ts.api.Post("/api/v1/reviews/"+reviewID+"/like", bearer(authorToken))
	assert.Equal(t, 2, decodeEnvelope[service.LikeState](t, resp.Body).Data.LikeCount)

	for range 2 {
		resp = ts.api.Delete("/api/v1/reviews/"+reviewID+"/like", bearer(fanToken))
		require.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, 1, decodeEnvelope[service.LikeState](t, resp.Body).Data.LikeCount)
	}

	resp = ts.api.Post("/api/v1/reviews/rev-missing/like", bearer(fanToken))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRateBook_FullReplace(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "rater")

	resp := ts.api.Post("/api/v1/ratings", bearer(token), map[string]any{
		"external_id": "abc123",
		"overall":     4,
		"character":   5,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/ratings", bearer(token), map[string]any{
		"external_id": "abc123",
		"overall":     3,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	result := decodeEnvelope[service.RateResult](t, resp.Body).Data
	require.NotNil(t, result.Rating)
	assert.Equal(t, 3, result.Rating.Overall)
	assert.Nil(t, result.Rating.Character)
	assert.Equal(t, 1, result.BookRating.Count)
	require.NotNil(t, result.BookRating.AvgOverall)
	assert.InDelta(t, 3.0, *result.BookRating.AvgOverall, 0.001)
	assert.Nil(t, result.BookRating.AvgCharacter)
}

func TestRateBook_Validation(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "rater")

	resp := ts.api.Post("/api/v1/ratings", bearer(token), map[string]any{"external_id": "abc123"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decodeEnvelope[any](t, resp.Body).Code)

	resp = ts.api.Post("/api/v1/ratings", bearer(token), map[string]any{"external_id": "abc123", "overall": 6})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeEnvelope[any](t, resp.Body).Details, "overall")

	assert.Equal(t, 0, ts.catalog.Calls())
}

func TestPreferences(t *testing.T) {
	ts := setupTestServer(t, Options{})
	token, _ := ts.register(t, "picky")

	resp := ts.api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotEmpty(t, decodeEnvelope[GenresResponse](t, resp.Body).Data.Genres)

	resp = ts.api.Post("/api/v1/preferences", bearer(token), map[string]any{"genres": []string{"fantasy", "Horror", "fantasy"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Len(t, decodeEnvelope[GenresResponse](t, resp.Body).Data.Genres, 2)

	resp = ts.api.Post("/api/v1/preferences", bearer(token), map[string]any{"genres": []string{"not-a-genre"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, decodeEnvelope[any](t, resp.Body).Details, "genres")

	resp = ts.api.Get("/api/v1/preferences", bearer(token))
	assert.Len(t, decodeEnvelope[GenresResponse](t, resp.Body).Data.Genres, 2)

	resp = ts.api.Post("/api/v1/preferences", bearer(token), map[string]any{"genres": []string{}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeEnvelope[GenresResponse](t, resp.Body).Data.Genres)
}

func TestFeed_AnonymousIsTrending(t *testing.T) {
	ts := setupTestServer(t, Options{}, dune())
	token, _ := ts.register(t, "reader")

	resp := ts.api.Post("/api/v1/library", bearer(token), map[string]any{"external_id": "abc123", "status": "reading"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/feed")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	feed := decodeEnvelope[domain.Feed](t, resp.Body).Data
	assert.Equal(t, domain.FeedTrending, feed.Strategy)
	require.NotEmpty(t, feed.Items)
	assert.Equal(t, "Dune", feed.Items[0].Book.Title)

	// A never-rated reader also gets trending, never an empty feed.
	resp = ts.api.Get("/api/v1/feed", bearer(token))
	feed = decodeEnvelope[domain.Feed](t, resp.Body).Data
	assert.Equal(t, domain.FeedTrending, feed.Strategy)
	assert.NotEmpty(t, feed.Items)
}
