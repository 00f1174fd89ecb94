package googlebooks

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/catalog"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc, timeout time.Duration) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(Config{BaseURL: server.URL, Timeout: timeout, RPS: 100, Burst: 100, APIKey: "test-key"},
		slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestClient_GetByExternalID(t *testing.T) {
	fixture := loadFixture(t, "volume_dune.json")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes/abc123", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write(fixture)
	}, time.Second)

	book, err := client.GetByExternalID(context.Background(), "abc123")
	require.NoError(t, err)

	assert.Equal(t, "abc123", book.ExternalID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.Authors)
	require.NotNil(t, book.PublishedYear)
	assert.Equal(t, 1965, *book.PublishedYear)
	assert.Equal(t, "en", book.Language)
	assert.Equal(t, []string{"Fiction / Science Fiction / General"}, book.Genres)
	require.NotNil(t, book.AvgRating)
	assert.InDelta(t, 4.5, *book.AvgRating, 0.001)
	assert.Equal(t, 120, book.RatingCount)
	assert.Equal(t, "https://books.google.com/books/content?id=abc123&printsec=frontcover&img=1&zoom=1", book.CoverURL)
	assert.Contains(t, book.Summary, "**Arrakis**")
	assert.NotContains(t, book.Summary, "<p>")
}

func TestClient_GetByExternalID_MissingFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": "bare1", "volumeInfo": {"title": "Anonymous Pamphlet"}}`))
	}, time.Second)

	book, err := client.GetByExternalID(context.Background(), "bare1")
	require.NoError(t, err)

	assert.Equal(t, []string{}, book.Authors)
	assert.Equal(t, []string{}, book.Genres)
	assert.Nil(t, book.AvgRating)
	assert.Nil(t, book.PublishedYear)
	assert.Zero(t, book.RatingCount)
	assert.Empty(t, book.CoverURL)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{}`, catalog.ErrNotFound},
		{"invalid id", http.StatusBadRequest, `{}`, catalog.ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, `{}`, catalog.ErrUnavailable},
		{"server error", http.StatusServiceUnavailable, `{}`, catalog.ErrUnavailable},
		{"malformed body", http.StatusOK, `{not json`, catalog.ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}, time.Second)

			_, err := client.GetByExternalID(context.Background(), "abc123")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var catErr *catalog.Error
			require.ErrorAs(t, err, &catErr)
			assert.Equal(t, "get", catErr.Op)
		})
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	start := time.Now()
	_, err := client.GetByExternalID(context.Background(), "slow")
	assert.ErrorIs(t, err, catalog.ErrUnavailable)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_RejectsPathLikeIDs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request to %s", r.URL.Path)
	}, time.Second)

	for _, id := range []string{"", "  ", "../etc", "a?b"} {
		_, err := client.GetByExternalID(context.Background(), id)
		assert.ErrorIs(t, err, catalog.ErrNotFound, "id %q", id)
	}
}

func TestClient_Search(t *testing.T) {
	fixture := loadFixture(t, "search.json")

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/volumes", r.URL.Path)
		assert.Equal(t, "dune", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		w.Write(fixture)
	}, time.Second)

	results, err := client.Search(context.Background(), "dune", 5)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "abc123", results[0].ExternalID)
	assert.Equal(t, "A desert planet & its spice.", results[0].Snippet)
	assert.Equal(t, "https://books.google.com/books/content?id=abc123&img=1", results[0].CoverURL)

	assert.Equal(t, "Dune Messiah", results[1].Title)
	assert.Equal(t, []string{}, results[1].Authors)
	assert.Nil(t, results[1].AvgRating)
}

func TestClient_SearchCapsMaxResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("maxResults"))
		w.Write([]byte(`{"totalItems": 0}`))
	}, time.Second)

	results, err := client.Search(context.Background(), "dune", 500)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestClient_SearchEmptyQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("empty query should not reach the catalog")
	}, time.Second)

	results, err := client.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
