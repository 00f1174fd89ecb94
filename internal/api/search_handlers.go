package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Free-text catalog search. Signed-in readers see their shelf status on each hit.",
		Tags:        []string{"Search"},
	}, s.handleSearchBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchReaders",
		Method:      http.MethodGet,
		Path:        "/api/v1/search/users",
		Summary:     "Search readers",
		Description: "Finds readers by username, display name or bio",
		Tags:        []string{"Search"},
	}, s.handleSearchReaders)
}

// SearchBooksInput contains parameters for book search.
type SearchBooksInput struct {
	Query string `query:"q" maxLength:"200" doc:"Search text"`
	Max   int    `query:"max" minimum:"0" maximum:"40" doc:"Maximum results (0 uses the server default)"`
}

// SearchBooksResponse contains catalog hits.
type SearchBooksResponse struct {
	Results []service.BookResult `json:"results"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

// SearchReadersInput contains parameters for reader search.
type SearchReadersInput struct {
	Query string `query:"q" maxLength:"100" doc:"Search text"`
	PageParams
}

// SearchReadersResponse contains matching readers.
type SearchReadersResponse struct {
	Users []domain.UserHeadline `json:"users"`
}

// SearchReadersOutput wraps the reader search response for Huma.
type SearchReadersOutput struct {
	Body SearchReadersResponse
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	results, err := s.services.Search.SearchBooks(ctx, viewerID(ctx), input.Query, input.Max)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []service.BookResult{}
	}
	return &SearchBooksOutput{Body: SearchBooksResponse{Results: results}}, nil
}

func (s *Server) handleSearchReaders(ctx context.Context, input *SearchReadersInput) (*SearchReadersOutput, error) {
	users, err := s.services.Search.SearchReaders(ctx, input.Query, input.page())
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []domain.UserHeadline{}
	}
	return &SearchReadersOutput{Body: SearchReadersResponse{Users: users}}, nil
}
