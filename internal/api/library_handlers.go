package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/service"
)

func (s *Server) registerLibraryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/library",
		Summary:     "List own library",
		Description: "Lists the caller's shelved books, filtered by status, start year or genre",
		Tags:        []string{"Library"},
		Security:    bearerAuth,
	}, s.handleListLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "setLibraryStatus",
		Method:      http.MethodPost,
		Path:        "/api/v1/library",
		Summary:     "Shelve book",
		Description: "Sets the caller's status for a book, capturing it from the catalog on first use. Any status is accepted from any state.",
		Tags:        []string{"Library"},
		Security:    bearerAuth,
	}, s.handleSetLibraryStatus)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateLibraryEntry",
		Method:      http.MethodPatch,
		Path:        "/api/v1/library",
		Summary:     "Update shelf entry",
		Description: "Edits status, progress or note of a book already on the caller's shelf",
		Tags:        []string{"Library"},
		Security:    bearerAuth,
	}, s.handleUpdateLibraryEntry)

	huma.Register(s.api, huma.Operation{
		OperationID: "listUserLibrary",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userId}/library",
		Summary:     "List reader library",
		Description: "Lists another reader's shelf. Private readers are visible to themselves and their followers only.",
		Tags:        []string{"Library"},
	}, s.handleListUserLibrary)
}

// === DTOs ===

// LibraryFilterParams are the library listing query parameters.
type LibraryFilterParams struct {
	Status string `query:"status" doc:"Only entries with this status: tbr, reading, read, paused or abandoned"`
	Year   int    `query:"year" minimum:"0" maximum:"9999" doc:"Only entries started in this year"`
	Genre  string `query:"genre" maxLength:"64" doc:"Only books in this genre slug"`
	PageParams
}

func (p LibraryFilterParams) query() service.LibraryQuery {
	return service.LibraryQuery{
		Status: p.Status,
		Year:   p.Year,
		Genre:  p.Genre,
		Limit:  p.Limit,
		Offset: p.Offset,
	}
}

// ListLibraryInput contains parameters for listing the caller's library.
type ListLibraryInput struct {
	LibraryFilterParams
}

// ListUserLibraryInput contains parameters for listing a reader's library.
type ListUserLibraryInput struct {
	UserID string `path:"userId" maxLength:"64" doc:"Reader id"`
	LibraryFilterParams
}

// LibraryResponse contains library rows.
type LibraryResponse struct {
	Items []domain.LibraryItem `json:"items"`
}

// LibraryOutput wraps the library response for Huma.
type LibraryOutput struct {
	Body LibraryResponse
}

// SetStatusRequest is the request body for shelving a book.
type SetStatusRequest struct {
	ExternalID string  `json:"external_id" doc:"Catalog volume id"`
	Status     string  `json:"status" doc:"tbr, reading, read, paused or abandoned"`
	Progress   *int    `json:"progress_percent,omitempty" doc:"0-100, kept while reading"`
	Note       *string `json:"note,omitempty" doc:"Private note"`
}

// SetStatusInput wraps the shelve request for Huma.
type SetStatusInput struct {
	Body SetStatusRequest
}

// UpdateEntryRequest is the request body for editing a shelf entry.
type UpdateEntryRequest struct {
	ExternalID string  `json:"external_id" doc:"Catalog volume id"`
	Status     *string `json:"status,omitempty" doc:"New status, unchanged when omitted"`
	Progress   *int    `json:"progress_percent,omitempty" doc:"0-100, kept while reading"`
	Note       *string `json:"note,omitempty" doc:"Private note"`
}

// UpdateEntryInput wraps the update request for Huma.
type UpdateEntryInput struct {
	Body UpdateEntryRequest
}

// LibraryEntryResponse is one shelf row after a write.
type LibraryEntryResponse struct {
	Book        domain.BookSummary  `json:"book"`
	Entry       domain.LibraryEntry `json:"entry"`
	StatusLabel string              `json:"status_label" doc:"Display label for the status"`
}

// LibraryEntryOutput wraps a shelf row for Huma.
type LibraryEntryOutput struct {
	Body LibraryEntryResponse
}

// === Handlers ===

func (s *Server) handleListLibrary(ctx context.Context, input *ListLibraryInput) (*LibraryOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.services.Library.ListOwn(ctx, userID, input.query())
	if err != nil {
		return nil, err
	}
	return libraryOutput(items), nil
}

func (s *Server) handleListUserLibrary(ctx context.Context, input *ListUserLibraryInput) (*LibraryOutput, error) {
	items, err := s.services.Library.ListFor(ctx, viewerID(ctx), input.UserID, input.query())
	if err != nil {
		return nil, err
	}
	return libraryOutput(items), nil
}

func (s *Server) handleSetLibraryStatus(ctx context.Context, input *SetStatusInput) (*LibraryEntryOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.services.Library.SetStatus(ctx, userID, service.SetStatusRequest{
		ExternalID: input.Body.ExternalID,
		Status:     input.Body.Status,
		Progress:   input.Body.Progress,
		Note:       input.Body.Note,
	})
	if err != nil {
		return nil, err
	}
	return libraryEntryOutput(item), nil
}

func (s *Server) handleUpdateLibraryEntry(ctx context.Context, input *UpdateEntryInput) (*LibraryEntryOutput, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	item, err := s.services.Library.UpdateEntry(ctx, userID, service.UpdateEntryRequest{
		ExternalID: input.Body.ExternalID,
		Status:     input.Body.Status,
		Progress:   input.Body.Progress,
		Note:       input.Body.Note,
	})
	if err != nil {
		return nil, err
	}
	return libraryEntryOutput(item), nil
}

func libraryOutput(items []domain.LibraryItem) *LibraryOutput {
	if items == nil {
		items = []domain.LibraryItem{}
	}
	return &LibraryOutput{Body: LibraryResponse{Items: items}}
}

func libraryEntryOutput(item *domain.LibraryItem) *LibraryEntryOutput {
	return &LibraryEntryOutput{Body: LibraryEntryResponse{
		Book:        item.Book,
		Entry:       item.Entry,
		StatusLabel: domain.StatusLabel(item.Entry.Status),
	}}
}
