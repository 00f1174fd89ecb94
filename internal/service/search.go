package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/storyspine/storyspine-server/internal/catalog"
	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/search"
	"github.com/storyspine/storyspine-server/internal/store"
)

// readerSearcher finds readers by name.
type readerSearcher interface {
	Search(ctx context.Context, q string, limit, offset int) ([]search.Hit, error)
}

// SearchService runs catalog book search and reader discovery.
type SearchService struct {
	catalog    catalog.Catalog
	library    store.LibraryStore
	users      store.UserStore
	readers    readerSearcher
	maxResults int
	logger     *slog.Logger
}

// NewSearchService creates a search service. maxResults caps catalog searches.
func NewSearchService(
	cat catalog.Catalog,
	library store.LibraryStore,
	users store.UserStore,
	readers readerSearcher,
	maxResults int,
	logger *slog.Logger,
) *SearchService {
	return &SearchService{
		catalog:    cat,
		library:    library,
		users:      users,
		readers:    readers,
		maxResults: maxResults,
		logger:     logger,
	}
}

// BookResult is a catalog hit annotated with the viewer's shelf status.
type BookResult struct {
	domain.CatalogSearchResult
	ViewerStatus *domain.ReadingStatus `json:"viewer_status"`
}

// SearchBooks queries the catalog. A signed-in viewer sees the status of
// results already on their shelf.
func (s *SearchService) SearchBooks(ctx context.Context, viewerID, query string, maxResults int) ([]BookResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"q": "is required"})
	}
	if maxResults <= 0 || maxResults > s.maxResults {
		maxResults = s.maxResults
	}

	hits, err := s.catalog.Search(ctx, query, maxResults)
	if err != nil {
		return nil, catalogError(err)
	}

	statuses := map[string]domain.ReadingStatus{}
	if viewerID != "" && len(hits) > 0 {
		ids := make([]string, len(hits))
		for i, h := range hits {
			ids[i] = h.ExternalID
		}
		statuses, err = s.library.StatusesByExternalID(ctx, viewerID, ids)
		if err != nil {
			return nil, storeError(err, "library")
		}
	}

	results := make([]BookResult, len(hits))
	for i, h := range hits {
		results[i] = BookResult{CatalogSearchResult: h}
		if st, ok := statuses[h.ExternalID]; ok {
			results[i].ViewerStatus = &st
		}
	}
	return results, nil
}

// SearchReaders finds readers by username, display name or bio. Only
// headlines are returned, so private readers are discoverable by name.
func (s *SearchService) SearchReaders(ctx context.Context, query string, page store.Page) ([]domain.UserHeadline, error) {
	if strings.TrimSpace(query) == "" {
		return []domain.UserHeadline{}, nil
	}
	page = page.Normalize(20, 50)

	hits, err := s.readers.Search(ctx, query, page.Limit, page.Offset)
	if err != nil {
		return nil, domainerrors.UpstreamUnavailable("reader search unavailable", err)
	}

	headlines := make([]domain.UserHeadline, 0, len(hits))
	for _, hit := range hits {
		u, err := s.users.GetUser(ctx, hit.UserID)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storeError(err, "user")
		}
		headlines = append(headlines, u.Headline())
	}
	return headlines, nil
}
