package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/storyspine/storyspine-server/internal/domain"
	"github.com/storyspine/storyspine-server/internal/store"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// profileShelfSize caps each shelf and the review list on a profile page.
const profileShelfSize = 10

// readerIndexer keeps reader discovery in step with profile edits.
type readerIndexer interface {
	IndexUser(u *domain.User) error
}

// ProfileService assembles profile pages and edits the caller's profile.
type ProfileService struct {
	store      store.Store
	visibility *VisibilityService
	index      readerIndexer
	validator  *validation.Validator
	logger     *slog.Logger
	now        func() time.Time
}

// NewProfileService creates a profile service. index may be nil.
func NewProfileService(
	st store.Store,
	visibility *VisibilityService,
	index readerIndexer,
	validator *validation.Validator,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:      st,
		visibility: visibility,
		index:      index,
		validator:  validator,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateProfileRequest edits the caller's profile. Nil fields are unchanged;
// an empty string clears a field.
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name,omitempty" validate:"omitempty,max=50"`
	Bio         *string `json:"bio,omitempty" validate:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url,omitempty" validate:"omitempty,max=2048"`
}

// GetProfile returns targetID's profile as viewerID sees it. The headline and
// follow counts are always present; the rest requires visibility.
func (s *ProfileService) GetProfile(ctx context.Context, viewerID, targetID string) (*domain.Profile, error) {
	target, visible, err := s.visibility.Target(ctx, viewerID, targetID)
	if err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		Headline:         target.Headline(),
		IsPrivate:        target.IsPrivate,
		Restricted:       !visible,
		Genres:           []string{},
		CurrentlyReading: []domain.BookSummary{},
		RecentlyFinished: []domain.BookSummary{},
		RecentReviews:    []domain.ProfileReview{},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.store.FollowCounts(gctx, targetID)
		profile.Counts = counts
		return err
	})
	if viewerID != "" && viewerID != targetID {
		g.Go(func() error {
			follows, err := s.store.IsFollowing(gctx, viewerID, targetID)
			profile.ViewerFollows = follows
			return err
		})
	}
	if visible {
		profile.Bio = target.Bio
		g.Go(func() error {
			genres, err := s.store.ListPreferences(gctx, targetID)
			for _, genre := range genres {
				profile.Genres = append(profile.Genres, genre.Name)
			}
			return err
		})
		g.Go(func() error {
			n, err := s.store.CountByStatus(gctx, targetID, domain.StatusRead)
			profile.BooksReadCount = n
			return err
		})
		g.Go(func() error {
			books, err := s.store.ShelfBooks(gctx, targetID, domain.StatusReading, profileShelfSize)
			profile.CurrentlyReading = books
			return err
		})
		g.Go(func() error {
			books, err := s.store.ShelfBooks(gctx, targetID, domain.StatusRead, profileShelfSize)
			profile.RecentlyFinished = books
			return err
		})
		g.Go(func() error {
			reviews, err := s.store.ListUserReviews(gctx, targetID, profileShelfSize)
			profile.RecentReviews = reviews
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, storeError(err, "profile")
	}
	return profile, nil
}

// UpdateProfile edits the caller's display name, bio and avatar.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	update := domain.ProfileUpdate{
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		AvatarURL:   req.AvatarURL,
	}
	if update.IsEmpty() {
		user, err := s.store.GetUser(ctx, userID)
		return user, storeError(err, "user")
	}

	user, err := s.store.UpdateProfile(ctx, userID, update, s.now())
	if err != nil {
		return nil, storeError(err, "user")
	}

	if s.index != nil {
		if err := s.index.IndexUser(user); err != nil {
			s.logger.WarnContext(ctx, "reader index update failed", "user_id", userID, "error", err)
		}
	}
	return user, nil
}
