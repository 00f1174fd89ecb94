package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
)

func TestUpsertRating_FullReplace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u-1", "reader")
	ensureTestBook(t, s, "book-1", "ext-1", "Dune")

	first := &domain.Rating{
		UserID:           "u-1",
		BookID:           "book-1",
		RatingDimensions: domain.RatingDimensions{Overall: 4, Character: ptr(5)},
		CreatedAt:        testNow,
		UpdatedAt:        testNow,
	}
	if err := s.UpsertRating(ctx, first); err != nil {
		t.Fatalf("UpsertRating: %v", err)
	}

	second := &domain.Rating{
		UserID:           "u-1",
		BookID:           "book-1",
		RatingDimensions: domain.RatingDimensions{Overall: 3},
		CreatedAt:        testNow.Add(1),
		UpdatedAt:        testNow.Add(1),
	}
	if err := s.UpsertRating(ctx, second); err != nil {
		t.Fatalf("UpsertRating again: %v", err)
	}

	got, err := s.GetRating(ctx, "u-1", "book-1")
	if err != nil {
		t.Fatalf("GetRating: %v", err)
	}
	if got.Overall != 3 {
		t.Errorf("overall: got %d", got.Overall)
	}
	if got.Character != nil {
		t.Errorf("character should be cleared, got %d", *got.Character)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("created_at should be kept, got %v", got.CreatedAt)
	}
}

func TestUpsertRating_Aggregates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	createTestUser(t, s, "u-1", "alice")
	createTestUser(t, s, "u-2", "bob")
	ensureTestBook(t, s, "book-1", "ext-1", "Dune")

	rate := func(userID string, dims domain.RatingDimensions) {
		t.Helper()
		err := s.UpsertRating(ctx, &domain.Rating{
			UserID: userID, BookID: "book-1", RatingDimensions: dims,
			CreatedAt: testNow, UpdatedAt: testNow,
		})
		if err != nil {
			t.Fatalf("UpsertRating: %v", err)
		}
	}
	rate("u-1", domain.RatingDimensions{Overall: 5, Pacing: ptr(2)})
	rate("u-2", domain.RatingDimensions{Overall: 4})

	b, err := s.GetBookByExternalID(ctx, "ext-1")
	if err != nil {
		t.Fatalf("GetBookByExternalID: %v", err)
	}
	if b.Ratings.Count != 2 {
		t.Errorf("count: got %d", b.Ratings.Count)
	}
	if b.Ratings.AvgOverall == nil || *b.Ratings.AvgOverall != 4.5 {
		t.Errorf("avg overall: got %v", b.Ratings.AvgOverall)
	}
	if b.Ratings.AvgPacing == nil || *b.Ratings.AvgPacing != 2 {
		t.Errorf("avg pacing: got %v", b.Ratings.AvgPacing)
	}
	if b.Ratings.AvgSpicy != nil {
		t.Errorf("avg spicy should stay null, got %v", *b.Ratings.AvgSpicy)
	}
}

func TestGetRating_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetRating(context.Background(), "u-1", "book-1"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
