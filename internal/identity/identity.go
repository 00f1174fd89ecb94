// Package identity turns a request's bearer token into a Principal.
package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

// Principal is the caller of a request: anonymous when UserID is empty.
type Principal struct {
	UserID    string
	Username  string
	SessionID string
}

// Anonymous is the principal of an unauthenticated request.
var Anonymous = Principal{}

// IsAnonymous reports whether no user is signed in.
func (p Principal) IsAnonymous() bool {
	return p.UserID == ""
}

// ViewerID returns the user id, or "" for anonymous callers.
func (p Principal) ViewerID() string {
	return p.UserID
}

// Require returns the user id or an Unauthorized error.
func (p Principal) Require() (string, error) {
	if p.IsAnonymous() {
		return "", domainerrors.Unauthorized("authentication required")
	}
	return p.UserID, nil
}

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal stored in ctx, or Anonymous.
func FromContext(ctx context.Context) Principal {
	if p, ok := ctx.Value(ctxKey{}).(Principal); ok {
		return p
	}
	return Anonymous
}

// TokenVerifier verifies access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// UserLookup loads live users. Soft-deleted users must resolve as not found.
type UserLookup interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
}

// Resolver maps an Authorization header to a Principal. It never writes.
type Resolver struct {
	tokens TokenVerifier
	users  UserLookup
	logger *slog.Logger
}

// NewResolver creates a resolver. users may be nil to skip the account check.
func NewResolver(tokens TokenVerifier, users UserLookup, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{tokens: tokens, users: users, logger: logger}
}

// Resolve returns the principal for an Authorization header value.
// A missing, malformed or invalid token, or a token whose account no longer
// exists, resolves to Anonymous; handlers that need a user reject it.
func (r *Resolver) Resolve(ctx context.Context, authorization string) Principal {
	token, ok := bearerToken(authorization)
	if !ok {
		return Anonymous
	}

	claims, err := r.tokens.VerifyAccessToken(token)
	if err != nil {
		r.logger.Debug("access token rejected", "error", err)
		return Anonymous
	}

	if r.users != nil {
		if _, err := r.users.GetUser(ctx, claims.UserID); err != nil {
			r.logger.Debug("token user unavailable", "user_id", claims.UserID, "error", err)
			return Anonymous
		}
	}

	return Principal{
		UserID:    claims.UserID,
		Username:  claims.Username,
		SessionID: claims.SessionID,
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
