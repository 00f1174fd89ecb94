// Package catalogtest provides an in-memory catalog for tests.
package catalogtest

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
)

// Fake is an in-memory catalog.Catalog. Set Err to make every call fail.
type Fake struct {
	mu    sync.Mutex
	books map[string]domain.CatalogBook
	calls int

	Err error
}

var _ catalog.Catalog = (*Fake)(nil)

// New returns a fake holding books.
func New(books ...domain.CatalogBook) *Fake {
	f := &Fake{books: make(map[string]domain.CatalogBook)}
	for _, b := range books {
		f.Add(b)
	}
	return f
}

// Add stores or replaces a volume.
func (f *Fake) Add(b domain.CatalogBook) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.Authors == nil {
		b.Authors = []string{}
	}
	if b.Genres == nil {
		b.Genres = []string{}
	}
	f.books[b.ExternalID] = b
}

// Calls reports how many lookups and searches reached the fake.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// GetByExternalID implements catalog.Catalog.
func (f *Fake) GetByExternalID(_ context.Context, externalID string) (*domain.CatalogBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.Err != nil {
		return nil, catalog.WrapError("get", externalID, f.Err)
	}
	b, ok := f.books[externalID]
	if !ok {
		return nil, catalog.WrapError("get", externalID, catalog.ErrNotFound)
	}
	return &b, nil
}

// Search implements catalog.Catalog with a case-insensitive title match,
// ordered by external id.
func (f *Fake) Search(_ context.Context, query string, maxResults int) ([]domain.CatalogSearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++

	if f.Err != nil {
		return nil, catalog.WrapError("search", query, f.Err)
	}

	q := strings.ToLower(query)
	var ids []string
	for id, b := range f.books {
		if strings.Contains(strings.ToLower(b.Title), q) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	results := []domain.CatalogSearchResult{}
	for _, id := range ids {
		if maxResults > 0 && len(results) == maxResults {
			break
		}
		b := f.books[id]
		results = append(results, domain.CatalogSearchResult{
			ExternalID:  b.ExternalID,
			Title:       b.Title,
			Authors:     b.Authors,
			CoverURL:    b.CoverURL,
			AvgRating:   b.AvgRating,
			RatingCount: b.RatingCount,
		})
	}
	return results, nil
}
