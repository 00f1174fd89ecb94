package providers

import (
	"github.com/samber/do/v2"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/config"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/media/covers"
	"github.com/storyspine/storyspine-server/internal/service"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideVisibilityService provides the privacy authorizer.
func ProvideVisibilityService(i do.Injector) (*service.VisibilityService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return service.NewVisibilityService(storeHandle.Store, storeHandle.Store), nil
}

// ProvideBookCapture provides the catalog-to-local book capture.
func ProvideBookCapture(i do.Injector) (*service.BookCapture, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	hasher := do.MustInvoke[*covers.Hasher](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookCapture(storeHandle.Store, catalogHandle, hasher, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokens, indexHandle.ReaderIndex, validator, log.Logger), nil
}

// ProvideBookService provides the book page aggregator.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	visibility := do.MustInvoke[*service.VisibilityService](i)
	log := do.MustInvoke[*logger.Logger](i)

	st := storeHandle.Store
	return service.NewBookService(st, st, st, catalogHandle, visibility, log.Logger), nil
}

// ProvideLibraryService provides the reading list service.
func ProvideLibraryService(i do.Injector) (*service.LibraryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	capture := do.MustInvoke[*service.BookCapture](i)
	visibility := do.MustInvoke[*service.VisibilityService](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLibraryService(storeHandle.Store, capture, visibility, validator, log.Logger), nil
}

// ProvideSocialService provides the follow graph service.
func ProvideSocialService(i do.Injector) (*service.SocialService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	visibility := do.MustInvoke[*service.VisibilityService](i)
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSocialService(storeHandle.Store, storeHandle.Store, visibility, indexHandle.ReaderIndex, log.Logger), nil
}

// ProvideEngagementService provides the review like service.
func ProvideEngagementService(i do.Injector) (*service.EngagementService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewEngagementService(storeHandle.Store, log.Logger), nil
}

// ProvideRatingService provides the rating service.
func ProvideRatingService(i do.Injector) (*service.RatingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	capture := do.MustInvoke[*service.BookCapture](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRatingService(storeHandle.Store, storeHandle.Store, capture, validator, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	capture := do.MustInvoke[*service.BookCapture](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, capture, validator, log.Logger), nil
}

// ProvideFeedService provides the home feed composer.
func ProvideFeedService(i do.Injector) (*service.FeedService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFeedService(storeHandle.Store, cfg.Feed.PageSize, cfg.Feed.TrendingWindow, log.Logger), nil
}

// ProvideProfileService provides the profile service.
func ProvideProfileService(i do.Injector) (*service.ProfileService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	visibility := do.MustInvoke[*service.VisibilityService](i)
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewProfileService(storeHandle.Store, visibility, indexHandle.ReaderIndex, validator, log.Logger), nil
}

// ProvidePreferenceService provides the genre preference service.
func ProvidePreferenceService(i do.Injector) (*service.PreferenceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPreferenceService(storeHandle.Store, log.Logger), nil
}

// ProvideSearchService provides book and reader search.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(
		catalogHandle,
		storeHandle.Store,
		storeHandle.Store,
		indexHandle.ReaderIndex,
		cfg.Catalog.MaxResults,
		log.Logger,
	), nil
}
