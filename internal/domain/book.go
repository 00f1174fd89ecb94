package domain

import (
	"strings"
	"time"
)

// Book is the local record mirroring catalog metadata. It is created lazily the
// first time a user shelves, rates or reviews the book and is never refreshed.
type Book struct {
	ID                  string       `json:"id"`
	ExternalID          string       `json:"external_id"`
	Title               string       `json:"title"`
	Authors             []string     `json:"authors"`
	CoverURL            string       `json:"cover_url,omitempty"`
	CoverBlurHash       string       `json:"cover_blur_hash,omitempty"`
	Summary             string       `json:"summary,omitempty"`
	PublishedYear       *int         `json:"published_year"`
	Language            string       `json:"language,omitempty"`
	Genres              []string     `json:"genres"`
	ExternalAvgRating   *float64     `json:"external_avg_rating"`
	ExternalRatingCount int          `json:"external_rating_count"`
	Ratings             LocalRatings `json:"ratings"`
	CreatedAt           time.Time    `json:"created_at"`
}

// LocalRatings are per-dimension averages over local ratings.
// Averages stay nil until at least one local rating exists.
type LocalRatings struct {
	AvgOverall   *float64 `json:"avg_overall"`
	AvgCharacter *float64 `json:"avg_character"`
	AvgPacing    *float64 `json:"avg_pacing"`
	AvgStoryline *float64 `json:"avg_storyline"`
	AvgWriting   *float64 `json:"avg_writing"`
	AvgSpicy     *float64 `json:"avg_spicy"`
	Count        int      `json:"count"`
}

// ToSummary returns the compact form used in lists and feeds.
func (b *Book) ToSummary() BookSummary {
	return BookSummary{
		ID:            b.ID,
		ExternalID:    b.ExternalID,
		Title:         b.Title,
		Authors:       b.Authors,
		CoverURL:      b.CoverURL,
		CoverBlurHash: b.CoverBlurHash,
		PublishedYear: b.PublishedYear,
		Genres:        b.Genres,
		AvgOverall:    b.Ratings.AvgOverall,
		RatingCount:   b.Ratings.Count,
	}
}

// BookSummary is a lightweight book projection.
type BookSummary struct {
	ID            string   `json:"id"`
	ExternalID    string   `json:"external_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	CoverURL      string   `json:"cover_url,omitempty"`
	CoverBlurHash string   `json:"cover_blur_hash,omitempty"`
	PublishedYear *int     `json:"published_year"`
	Genres        []string `json:"genres"`
	AvgOverall    *float64 `json:"avg_overall"`
	RatingCount   int      `json:"rating_count"`
}

// CatalogBook is a volume as returned by the external catalog, already normalized:
// Authors and Genres are never nil and missing ratings are nil.
type CatalogBook struct {
	ExternalID    string   `json:"external_id"`
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	CoverURL      string   `json:"cover_url,omitempty"`
	Summary       string   `json:"summary,omitempty"`
	PublishedYear *int     `json:"published_year"`
	Language      string   `json:"language,omitempty"`
	Genres        []string `json:"genres"`
	AvgRating     *float64 `json:"avg_rating"`
	RatingCount   int      `json:"rating_count"`
}

// ToBook captures catalog metadata for a new local book.
func (c *CatalogBook) ToBook(bookID string, now time.Time) *Book {
	return &Book{
		ID:                  bookID,
		ExternalID:          c.ExternalID,
		Title:               c.Title,
		Authors:             nonNil(c.Authors),
		CoverURL:            c.CoverURL,
		Summary:             c.Summary,
		PublishedYear:       c.PublishedYear,
		Language:            c.Language,
		Genres:              nonNil(c.Genres),
		ExternalAvgRating:   c.AvgRating,
		ExternalRatingCount: c.RatingCount,
		CreatedAt:           now,
	}
}

// CatalogSearchResult is one free-text search hit.
type CatalogSearchResult struct {
	ExternalID  string   `json:"external_id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	CoverURL    string   `json:"cover_url,omitempty"`
	Snippet     string   `json:"snippet,omitempty"`
	AvgRating   *float64 `json:"avg_rating"`
	RatingCount int      `json:"rating_count"`
}

// JoinAuthors renders an author list the way clients display it.
func JoinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
