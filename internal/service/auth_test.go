package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/auth"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

func newAuthService(t *testing.T, f *fixture) *AuthService {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i * 7)
	}
	tokens, err := auth.NewTokenService(key, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return NewAuthService(f.store, tokens, nil, f.validator, f.logger)
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterRequest{
		Username: "  NewReader ",
		Email:    "new@example.com",
		Password: "long-enough-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "newreader", result.User.Username)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.NotEqual(t, "long-enough-pass", result.User.PasswordHash)

	_, err = svc.Register(ctx, RegisterRequest{Username: "newreader", Email: "x@example.com", Password: "long-enough-pass"})
	assert.Equal(t, domainerrors.CodeAlreadyExists, domainerrors.CodeOf(err))

	_, err = svc.Login(ctx, LoginRequest{Login: "newreader", Password: "long-enough-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Login: "newreader", Password: "nope-nope-nope"})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainerrors.CodeOf(err))

	_, err = svc.Login(ctx, LoginRequest{Login: "nobody", Password: "long-enough-pass"})
	assert.Equal(t, domainerrors.CodeInvalidCredentials, domainerrors.CodeOf(err), "unknown logins look like wrong passwords")
}

func TestAuth_RefreshIsSingleUse(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterRequest{Username: "reader", Email: "r@example.com", Password: "long-enough-pass"})
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, session.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, session.RefreshToken, rotated.RefreshToken)
	assert.Equal(t, session.User.ID, rotated.User.ID)

	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainerrors.CodeOf(err))

	_, err = svc.Refresh(ctx, "")
	assert.Equal(t, domainerrors.CodeValidation, domainerrors.CodeOf(err))

	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken))
	require.NoError(t, svc.Logout(ctx, rotated.RefreshToken), "logging out twice is fine")

	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainerrors.CodeOf(err))
}

func TestAuth_ExpiredSessions(t *testing.T) {
	f := newFixture(t)
	svc := newAuthService(t, f)
	ctx := context.Background()

	first, err := svc.Register(ctx, RegisterRequest{Username: "reader", Email: "r@example.com", Password: "long-enough-pass"})
	require.NoError(t, err)
	_, err = svc.Login(ctx, LoginRequest{Login: "reader", Password: "long-enough-pass"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.Equal(t, domainerrors.CodeTokenExpired, domainerrors.CodeOf(err))

	n, err := svc.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n, "the expired refresh already removed one session")

	n, err = svc.PruneSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
