package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/storyspine/storyspine-server/internal/api"
	"github.com/storyspine/storyspine-server/internal/config"
	"github.com/storyspine/storyspine-server/internal/identity"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	api *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.api.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*ReaderIndexHandle](i)
	resolver := do.MustInvoke[*identity.Resolver](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:       do.MustInvoke[*service.AuthService](i),
		Book:       do.MustInvoke[*service.BookService](i),
		Library:    do.MustInvoke[*service.LibraryService](i),
		Social:     do.MustInvoke[*service.SocialService](i),
		Engagement: do.MustInvoke[*service.EngagementService](i),
		Rating:     do.MustInvoke[*service.RatingService](i),
		Review:     do.MustInvoke[*service.ReviewService](i),
		Feed:       do.MustInvoke[*service.FeedService](i),
		Profile:    do.MustInvoke[*service.ProfileService](i),
		Preference: do.MustInvoke[*service.PreferenceService](i),
		Search:     do.MustInvoke[*service.SearchService](i),
	}

	handler := api.NewServer(services, resolver, storeHandle.Store, indexHandle.ReaderIndex, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		AuthRPS:     cfg.Server.AuthRPS,
		AuthBurst:   cfg.Server.AuthBurst,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, api: handler}, nil
}
