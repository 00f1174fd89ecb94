package api

import (
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/storyspine/storyspine-server/internal/http/response"
	"github.com/storyspine/storyspine-server/internal/identity"
	"github.com/storyspine/storyspine-server/internal/logger"
)

const authPathPrefix = "/api/v1/auth/"

// principalMiddleware resolves the caller once per request. An invalid token
// leaves the request anonymous; handlers that need a user reject it.
func (s *Server) principalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := s.resolver.Resolve(r.Context(), r.Header.Get("Authorization"))
		ctx := identity.WithPrincipal(r.Context(), p)
		if id := p.ViewerID(); id != "" {
			ctx = logger.AppendAttrs(ctx, slog.String("principal_id", id))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authRateLimitMiddleware throttles the credential endpoints by client IP.
// Returns 429 Too Many Requests when limit is exceeded.
func (s *Server) authRateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authRateLimiter == nil || !strings.HasPrefix(r.URL.Path, authPathPrefix) {
			next.ServeHTTP(w, r)
			return
		}

		key := clientIP(r)
		if !s.authRateLimiter.Allow(key) {
			s.logger.Warn("Rate limit exceeded",
				"ip", key,
				"path", r.URL.Path,
			)
			response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP returns the request's client address without port. RealIP has
// already applied X-Forwarded-For and X-Real-IP to RemoteAddr.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
