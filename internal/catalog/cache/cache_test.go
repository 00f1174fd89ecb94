package cache

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
)

type countingCatalog struct {
	gets     atomic.Int32
	searches atomic.Int32
	err      error
}

func (f *countingCatalog) GetByExternalID(_ context.Context, id string) (*domain.CatalogBook, error) {
	f.gets.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CatalogBook{ExternalID: id, Title: "Dune", Authors: []string{"Frank Herbert"}}, nil
}

func (f *countingCatalog) Search(_ context.Context, q string, _ int) ([]domain.CatalogSearchResult, error) {
	f.searches.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return []domain.CatalogSearchResult{{ExternalID: "abc123", Title: q}}, nil
}

func newTestCache(t *testing.T, next catalog.Catalog, ttl time.Duration) *Catalog {
	t.Helper()
	c, err := Open("", next, ttl, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestCache_GetByExternalID_Hit(t *testing.T) {
	next := &countingCatalog{}
	c := newTestCache(t, next, time.Hour)
	ctx := context.Background()

	first, err := c.GetByExternalID(ctx, "abc123")
	require.NoError(t, err)
	second, err := c.GetByExternalID(ctx, "abc123")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), next.gets.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	next := &countingCatalog{err: catalog.ErrUnavailable}
	c := newTestCache(t, next, time.Hour)
	ctx := context.Background()

	_, err := c.GetByExternalID(ctx, "abc123")
	assert.ErrorIs(t, err, catalog.ErrUnavailable)

	next.err = nil
	book, err := c.GetByExternalID(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, int32(2), next.gets.Load())
}

func TestCache_SearchKeyNormalized(t *testing.T) {
	next := &countingCatalog{}
	c := newTestCache(t, next, time.Hour)
	ctx := context.Background()

	_, err := c.Search(ctx, "Dune  Messiah", 10)
	require.NoError(t, err)
	_, err = c.Search(ctx, "dune messiah", 10)
	require.NoError(t, err)
	_, err = c.Search(ctx, "dune messiah", 5)
	require.NoError(t, err)

	assert.Equal(t, int32(2), next.searches.Load())
}

func TestCache_ZeroTTLDisablesCaching(t *testing.T) {
	next := &countingCatalog{}
	c := newTestCache(t, next, 0)
	ctx := context.Background()

	for range 3 {
		_, err := c.GetByExternalID(ctx, "abc123")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), next.gets.Load())
}

func TestCache_Entries(t *testing.T) {
	c := newTestCache(t, &countingCatalog{}, time.Hour)
	ctx := context.Background()

	_, err := c.GetByExternalID(ctx, "abc123")
	require.NoError(t, err)
	_, err = c.Search(ctx, "dune", 10)
	require.NoError(t, err)

	var keys []string
	err = c.Entries(VolumePrefix, func(e Entry) error {
		keys = append(keys, e.Key)
		assert.True(t, e.ExpiresAt.After(time.Now()))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"vol:abc123"}, keys)
}
