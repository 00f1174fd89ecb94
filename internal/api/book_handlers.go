package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{externalId}",
		Summary:     "Get book",
		Description: "Resolves a book by catalog id. Known books carry reviews, reader count and the viewer's shelf entry; others come straight from the catalog.",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{externalId}/reviews",
		Summary:     "List book reviews",
		Description: "Pages through a book's reviews, the viewer's own first",
		Tags:        []string{"Books"},
	}, s.handleListBookReviews)
}

// === DTOs ===

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ExternalID string `path:"externalId" maxLength:"128" doc:"Catalog volume id"`
}

// BookDetail is a book as shown on its page. Local-only fields are absent or
// null for catalog-only books.
type BookDetail struct {
	ID            string               `json:"id,omitempty" doc:"Local book id, absent until first shelved, rated or reviewed"`
	ExternalID    string               `json:"external_id" doc:"Catalog volume id"`
	Title         string               `json:"title"`
	Authors       string               `json:"authors" doc:"Authors joined for display"`
	AuthorList    []string             `json:"author_list"`
	CoverURL      string               `json:"cover_url,omitempty"`
	CoverBlurHash string               `json:"cover_blur_hash,omitempty"`
	Summary       string               `json:"summary,omitempty"`
	PublishedYear *int                 `json:"published_year"`
	Language      string               `json:"language,omitempty"`
	Genres        []string             `json:"genres"`
	AvgRating     *float64             `json:"avg_rating" doc:"Catalog average rating"`
	RatingCount   int                  `json:"rating_count" doc:"Catalog rating count"`
	LocalRatings  *domain.LocalRatings `json:"local_ratings" doc:"Ratings from readers here, null for catalog-only books"`
}

// UserStatus is the viewer's shelf entry for a book.
type UserStatus struct {
	domain.LibraryEntry
	StatusLabel string `json:"status_label" doc:"Display label for the status"`
}

// BookResponse is the book page payload.
type BookResponse struct {
	Source       domain.BookSource   `json:"source" enum:"local,external" doc:"Where the book was resolved"`
	Book         BookDetail          `json:"book"`
	Reviews      []domain.BookReview `json:"reviews"`
	ReadingCount int                 `json:"reading_count" doc:"Readers currently reading"`
	UserStatus   *UserStatus         `json:"user_status" doc:"Viewer's shelf entry, null when not shelved or anonymous"`
}

// BookOutput wraps the book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBookReviewsInput contains parameters for listing reviews.
type ListBookReviewsInput struct {
	ExternalID string `path:"externalId" maxLength:"128" doc:"Catalog volume id"`
	PageParams
}

// ReviewsResponse contains a page of reviews.
type ReviewsResponse struct {
	Reviews []domain.BookReview `json:"reviews"`
}

// ReviewsOutput wraps the reviews response for Huma.
type ReviewsOutput struct {
	Body ReviewsResponse
}

// === Handlers ===

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	view, err := s.services.Book.ResolveBook(ctx, input.ExternalID, viewerID(ctx))
	if err != nil {
		return nil, err
	}

	switch v := view.(type) {
	case *domain.LocalBookView:
		return &BookOutput{Body: localBookResponse(v)}, nil
	case *domain.ExternalBookView:
		return &BookOutput{Body: externalBookResponse(v)}, nil
	default:
		return nil, domainerrors.Internal("unknown book source")
	}
}

func (s *Server) handleListBookReviews(ctx context.Context, input *ListBookReviewsInput) (*ReviewsOutput, error) {
	reviews, err := s.services.Book.ListReviews(ctx, input.ExternalID, viewerID(ctx), input.page())
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.BookReview{}
	}
	return &ReviewsOutput{Body: ReviewsResponse{Reviews: reviews}}, nil
}

func localBookResponse(v *domain.LocalBookView) BookResponse {
	b := v.Book
	ratings := b.Ratings
	resp := BookResponse{
		Source: v.Source(),
		Book: BookDetail{
			ID:            b.ID,
			ExternalID:    b.ExternalID,
			Title:         b.Title,
			Authors:       domain.JoinAuthors(b.Authors),
			AuthorList:    nonNilStrings(b.Authors),
			CoverURL:      b.CoverURL,
			CoverBlurHash: b.CoverBlurHash,
			Summary:       b.Summary,
			PublishedYear: b.PublishedYear,
			Language:      b.Language,
			Genres:        nonNilStrings(b.Genres),
			AvgRating:     b.ExternalAvgRating,
			RatingCount:   b.ExternalRatingCount,
			LocalRatings:  &ratings,
		},
		Reviews:      v.Reviews,
		ReadingCount: v.ReadingCount,
	}
	if resp.Reviews == nil {
		resp.Reviews = []domain.BookReview{}
	}
	if v.ViewerStatus != nil {
		resp.UserStatus = &UserStatus{
			LibraryEntry: *v.ViewerStatus,
			StatusLabel:  domain.StatusLabel(v.ViewerStatus.Status),
		}
	}
	return resp
}

func externalBookResponse(v *domain.ExternalBookView) BookResponse {
	b := v.Book
	return BookResponse{
		Source: v.Source(),
		Book: BookDetail{
			ExternalID:    b.ExternalID,
			Title:         b.Title,
			Authors:       domain.JoinAuthors(b.Authors),
			AuthorList:    nonNilStrings(b.Authors),
			CoverURL:      b.CoverURL,
			Summary:       b.Summary,
			PublishedYear: b.PublishedYear,
			Language:      b.Language,
			Genres:        nonNilStrings(b.Genres),
			AvgRating:     b.AvgRating,
			RatingCount:   b.RatingCount,
		},
		Reviews: []domain.BookReview{},
	}
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
