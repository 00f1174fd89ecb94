// Package di provides dependency injection configuration for the StorySpine server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/config"
	"github.com/storyspine/storyspine-server/internal/di/providers"
	"github.com/storyspine/storyspine-server/internal/identity"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/media/covers"
	"github.com/storyspine/storyspine-server/internal/service"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideReaderIndex)

	// Catalog layer
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideCoverHasher)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideIdentityResolver)

	// Business services
	do.Provide(injector, providers.ProvideVisibilityService)
	do.Provide(injector, providers.ProvideBookCapture)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideLibraryService)
	do.Provide(injector, providers.ProvideSocialService)
	do.Provide(injector, providers.ProvideEngagementService)
	do.Provide(injector, providers.ProvideRatingService)
	do.Provide(injector, providers.ProvideReviewService)
	do.Provide(injector, providers.ProvideFeedService)
	do.Provide(injector, providers.ProvideProfileService)
	do.Provide(injector, providers.ProvidePreferenceService)
	do.Provide(injector, providers.ProvideSearchService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Core infrastructure; invoked with errors so a bad config or
	// unreadable data directory fails startup cleanly.
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*validation.Validator](injector)
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ReaderIndexHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.CatalogHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*covers.Hasher](injector)
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*identity.Resolver](injector)

	// Business services
	_ = do.MustInvoke[*service.VisibilityService](injector)
	_ = do.MustInvoke[*service.BookCapture](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.LibraryService](injector)
	_ = do.MustInvoke[*service.SocialService](injector)
	_ = do.MustInvoke[*service.EngagementService](injector)
	_ = do.MustInvoke[*service.RatingService](injector)
	_ = do.MustInvoke[*service.ReviewService](injector)
	_ = do.MustInvoke[*service.FeedService](injector)
	_ = do.MustInvoke[*service.ProfileService](injector)
	_ = do.MustInvoke[*service.PreferenceService](injector)
	_ = do.MustInvoke[*service.SearchService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerReaderReindexIfNeeded(injector)

	return nil
}
