// Package api provides the HTTP API server and handlers for StorySpine.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/storyspine/storyspine-server/internal/http/response"
	"github.com/storyspine/storyspine-server/internal/identity"
	"github.com/storyspine/storyspine-server/internal/logger"
	"github.com/storyspine/storyspine-server/internal/ratelimit"
	"github.com/storyspine/storyspine-server/internal/service"
)

// Services bundles the application services the handlers call.
type Services struct {
	Auth       *service.AuthService
	Book       *service.BookService
	Library    *service.LibraryService
	Social     *service.SocialService
	Engagement *service.EngagementService
	Rating     *service.RatingService
	Review     *service.ReviewService
	Feed       *service.FeedService
	Profile    *service.ProfileService
	Preference *service.PreferenceService
	Search     *service.SearchService
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentCounter reports the size of the reader index.
type DocumentCounter interface {
	Count() (uint64, error)
}

// Options tunes the HTTP layer.
type Options struct {
	CORSOrigins []string
	// Credential endpoints: requests per second and burst per client IP.
	// Zero AuthRPS disables the limiter.
	AuthRPS   float64
	AuthBurst int
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services        *Services
	resolver        *identity.Resolver
	store           Pinger
	readers         DocumentCounter
	router          *chi.Mux
	api             huma.API
	authRateLimiter *ratelimit.KeyedRateLimiter
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// store and readers only feed the health check and may be nil.
func NewServer(services *Services, resolver *identity.Resolver, store Pinger, readers DocumentCounter, opts Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	router := chi.NewRouter()

	s := &Server{
		services: services,
		resolver: resolver,
		store:    store,
		readers:  readers,
		router:   router,
		logger:   log,
	}
	if opts.AuthRPS > 0 {
		burst := opts.AuthBurst
		if burst <= 0 {
			burst = 1
		}
		s.authRateLimiter = ratelimit.New(opts.AuthRPS, burst)
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("StorySpine API", "1.0.0")
	humaConfig.Info.Description = "Social reading tracker: shelves, ratings, reviews, follows and feeds."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "route not found", s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	if s.authRateLimiter != nil {
		s.authRateLimiter.Stop()
	}
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(s.authRateLimitMiddleware)
	s.router.Use(s.principalMiddleware)
}

func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerSearchRoutes()
	s.registerFeedRoutes()
	s.registerLibraryRoutes()
	s.registerSocialRoutes()
	s.registerProfileRoutes()
	s.registerRatingRoutes()
	s.registerReviewRoutes()
	s.registerGenreRoutes()
}

// requestLogger tags every log record written while serving the request with
// its request id and logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.AppendAttrs(r.Context(), slog.String("request_id", middleware.GetReqID(r.Context())))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.DebugContext(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}
