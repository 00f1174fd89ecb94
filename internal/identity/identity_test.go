package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storyspine/storyspine-server/internal/auth"
	"github.com/storyspine/storyspine-server/internal/domain"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
)

type fakeUsers map[string]*domain.User

func (f fakeUsers) GetUser(_ context.Context, id string) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	tokens, err := auth.NewTokenService(key, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	return tokens
}

func TestResolver_Resolve(t *testing.T) {
	tokens := newTokens(t)
	users := fakeUsers{"u-1": {ID: "u-1", Username: "reader"}}
	resolver := NewResolver(tokens, users, nil)

	valid, _, err := tokens.GenerateAccessToken("u-1", "reader", "sess-1")
	require.NoError(t, err)
	orphan, _, err := tokens.GenerateAccessToken("u-gone", "ghost", "sess-2")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   Principal
	}{
		{"no header", "", Anonymous},
		{"wrong scheme", "Basic abc", Anonymous},
		{"empty bearer", "Bearer ", Anonymous},
		{"garbage token", "Bearer not-a-token", Anonymous},
		{"deleted user", "Bearer " + orphan, Anonymous},
		{"valid", "Bearer " + valid, Principal{UserID: "u-1", Username: "reader", SessionID: "sess-1"}},
		{"lowercase scheme", "bearer " + valid, Principal{UserID: "u-1", Username: "reader", SessionID: "sess-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(context.Background(), tt.header))
		})
	}
}

func TestPrincipal_Require(t *testing.T) {
	_, err := Anonymous.Require()
	assert.True(t, errors.Is(err, domainerrors.ErrUnauthorized))

	userID, err := Principal{UserID: "u-1"}.Require()
	require.NoError(t, err)
	assert.Equal(t, "u-1", userID)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.True(t, FromContext(ctx).IsAnonymous())

	ctx = WithPrincipal(ctx, Principal{UserID: "u-1"})
	assert.Equal(t, "u-1", FromContext(ctx).ViewerID())
}
