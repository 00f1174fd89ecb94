package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/id"
	"github.com/storyspine/storyspine-server/internal/store"
	"github.com/storyspine/storyspine-server/internal/validation"
)

// authStore is the persistence AuthService needs.
type authStore interface {
	store.UserStore
	store.SessionStore
}

// AuthService handles registration, login and session tokens.
type AuthService struct {
	store     authStore
	tokens    *auth.TokenService
	index     readerIndexer
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewAuthService creates an auth service. index may be nil.
func NewAuthService(
	st authStore,
	tokens *auth.TokenService,
	index readerIndexer,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     st,
		tokens:    tokens,
		index:     index,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name,omitempty" validate:"omitempty,max=50"`
}

// LoginRequest signs in with an email or a username.
type LoginRequest struct {
	Login    string `json:"login" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=1024"`
}

// AuthResult carries a fresh token pair.
type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// Register creates a user and signs them in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	req.Email = strings.TrimSpace(req.Email)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "hash password")
	}

	now := s.now()
	user := &domain.User{
		ID:           id.NewUserID(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		DisplayName:  req.DisplayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, domainerrors.AlreadyExists("username or email already in use")
		}
		return nil, storeError(err, "user")
	}

	if s.index != nil {
		if err := s.index.IndexUser(user); err != nil {
			s.logger.WarnContext(ctx, "reader index update failed", "user_id", user.ID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return s.startSession(ctx, user)
}

// Login verifies credentials and opens a session. Unknown logins and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByLogin(ctx, strings.TrimSpace(req.Login))
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}
	if err != nil {
		return nil, storeError(err, "user")
	}
	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}

	return s.startSession(ctx, user)
}

// Refresh rotates a refresh token and issues a new access token. Each
// refresh token works once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{"refresh_token": "is required"})
	}

	oldHash := auth.HashRefreshToken(refreshToken)
	session, err := s.store.GetSessionByRefreshHash(ctx, oldHash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, storeError(err, "session")
	}

	now := s.now()
	if session.IsExpired(now) {
		if err := s.store.DeleteSession(ctx, session.ID); err != nil {
			s.logger.WarnContext(ctx, "failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, storeError(err, "user")
	}

	next, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate refresh token")
	}
	expiresAt := now.Add(s.tokens.RefreshTokenDuration())
	err = s.store.RotateSession(ctx, session.ID, oldHash, auth.HashRefreshToken(next), expiresAt, now)
	if errors.Is(err, store.ErrNotFound) {
		// Another refresh with the same token won the race.
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}
	if err != nil {
		return nil, storeError(err, "session")
	}

	return s.issue(user, session.ID, next)
}

// Logout ends the session owning refreshToken. Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{"refresh_token": "is required"})
	}
	session, err := s.store.GetSessionByRefreshHash(ctx, auth.HashRefreshToken(refreshToken))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return storeError(err, "session")
	}
	if err := s.store.DeleteSession(ctx, session.ID); err != nil {
		return storeError(err, "session")
	}
	s.logger.DebugContext(ctx, "session ended", "session_id", session.ID, "user_id", session.UserID)
	return nil
}

// PruneSessions deletes expired sessions and reports how many went.
func (s *AuthService) PruneSessions(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, storeError(err, "session")
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "pruned expired sessions", "count", n)
	}
	return n, nil
}

func (s *AuthService) startSession(ctx context.Context, user *domain.User) (*AuthResult, error) {
	refresh, err := s.tokens.GenerateRefreshToken()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate refresh token")
	}
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate session id")
	}

	now := s.now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refresh),
		ExpiresAt:        now.Add(s.tokens.RefreshTokenDuration()),
		CreatedAt:        now,
		LastUsedAt:       now,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, storeError(err, "session")
	}

	return s.issue(user, sessionID, refresh)
}

func (s *AuthService) issue(user *domain.User, sessionID, refresh string) (*AuthResult, error) {
	access, expiresAt, err := s.tokens.GenerateAccessToken(user.ID, user.Username, sessionID)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate access token")
	}
	return &AuthResult{
		User:         user,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}
