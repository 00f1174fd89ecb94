package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
)

// maxPreferences bounds how many genres a reader can follow.
const maxPreferences = 20

// PreferenceService manages the genre catalogue and genre preferences.
type PreferenceService struct {
	genres store.GenreStore
	logger *slog.Logger
	now    func() time.Time
}

// NewPreferenceService creates a preference service.
func NewPreferenceService(genres store.GenreStore, logger *slog.Logger) *PreferenceService {
	return &PreferenceService{genres: genres, logger: logger, now: time.Now}
}

// ListGenres returns the genre catalogue.
func (s *PreferenceService) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := s.genres.ListGenres(ctx)
	if err != nil {
		return nil, storeError(err, "genres")
	}
	return genres, nil
}

// ListPreferences returns userID's preferred genres.
func (s *PreferenceService) ListPreferences(ctx context.Context, userID string) ([]domain.Genre, error) {
	genres, err := s.genres.ListPreferences(ctx, userID)
	if err != nil {
		return nil, storeError(err, "preferences")
	}
	return genres, nil
}

// ReplacePreferences swaps userID's preferences for slugs wholesale. An
// empty list clears them. Unknown slugs reject the whole request.
func (s *PreferenceService) ReplacePreferences(ctx context.Context, userID string, slugs []string) ([]domain.Genre, error) {
	cleaned := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		slug = strings.ToLower(strings.TrimSpace(slug))
		if slug != "" && !slices.Contains(cleaned, slug) {
			cleaned = append(cleaned, slug)
		}
	}
	if len(cleaned) > maxPreferences {
		return nil, domainerrors.Validationf("at most %d genres can be selected", maxPreferences)
	}

	missing, err := s.genres.MissingGenres(ctx, cleaned)
	if err != nil {
		return nil, storeError(err, "genres")
	}
	if len(missing) > 0 {
		return nil, domainerrors.ValidationWithDetails("unknown genres", map[string]any{"genres": missing})
	}

	if err := s.genres.ReplacePreferences(ctx, userID, cleaned, s.now()); err != nil {
		return nil, storeError(err, "user")
	}
	s.logger.DebugContext(ctx, "genre preferences replaced", "user_id", userID, "count", len(cleaned))
	return s.ListPreferences(ctx, userID)
}
