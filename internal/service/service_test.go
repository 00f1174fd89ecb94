package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/catalog/catalogtest"
	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/id"
	"github.com/storyspine/storyspine-server/internal/store/sqlite"
	"github.com/storyspine/storyspine-server/internal/validation"
)

type fixture struct {
	store      *sqlite.Store
	catalog    *catalogtest.Fake
	validator  *validation.Validator
	visibility *VisibilityService
	capture    *BookCapture
	logger     *slog.Logger
}

func newFixture(t *testing.T, books ...domain.CatalogBook) *fixture {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "service.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	cat := catalogtest.New(books...)
	return &fixture{
		store:      st,
		catalog:    cat,
		validator:  validation.New(),
		visibility: NewVisibilityService(st, st),
		capture:    NewBookCapture(st, cat, nil, logger),
		logger:     logger,
	}
}

// user inserts a reader directly into the store.
func (f *fixture) user(t *testing.T, username string, private bool) *domain.User {
	t.Helper()
	now := time.Now().UTC()
	u := &domain.User{
		ID:           id.NewUserID(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "unused",
		IsPrivate:    private,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.store.CreateUser(context.Background(), u))
	return u
}

func (f *fixture) follow(t *testing.T, follower, followee *domain.User) {
	t.Helper()
	require.NoError(t, f.store.Follow(context.Background(), follower.ID, followee.ID, time.Now().UTC()))
}

func (f *fixture) library() *LibraryService {
	return NewLibraryService(f.store, f.capture, f.visibility, f.validator, f.logger)
}

func (f *fixture) reviews() *ReviewService {
	return NewReviewService(f.store, f.capture, f.validator, f.logger)
}

func (f *fixture) books() *BookService {
	return NewBookService(f.store, f.store, f.store, f.catalog, f.visibility, f.logger)
}

func catalogBook(externalID, title string) domain.CatalogBook {
	year := 2001
	return domain.CatalogBook{
		ExternalID:    externalID,
		Title:         title,
		Authors:       []string{"Some Author"},
		PublishedYear: &year,
		Language:      "en",
		Genres:        []string{"Fiction / Fantasy / General"},
	}
}

func intPtr(v int) *int { return &v }
