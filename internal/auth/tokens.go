package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"
	"golang.org/x/crypto/blake2b"

	"github.com/storyspine/storyspine-server/internal/id"
)

const (
	tokenIssuer   = "storyspine-server"
	tokenAudience = "storyspine-client"

	refreshTokenSize = 32
)

// ErrInvalidToken is returned for tokens that fail decryption, rules or claim parsing.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are the claims carried in a v4.local access token.
type AccessClaims struct {
	UserID    string
	Username  string
	SessionID string
	ExpiresAt time.Time
}

// TokenService issues and verifies session tokens.
type TokenService struct {
	key             paseto.V4SymmetricKey
	accessDuration  time.Duration
	refreshDuration time.Duration
	now             func() time.Time
}

// NewTokenService creates a token service from a raw 32-byte key.
func NewTokenService(key []byte, accessDuration, refreshDuration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("access token key must be %d bytes, got %d", keyLength, len(key))
	}

	symmetric, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO symmetric key: %w", err)
	}

	return &TokenService{
		key:             symmetric,
		accessDuration:  accessDuration,
		refreshDuration: refreshDuration,
		now:             time.Now,
	}, nil
}

// GenerateAccessToken creates an encrypted access token bound to a session.
func (s *TokenService) GenerateAccessToken(userID, username, sessionID string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.accessDuration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(userID)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)
	token.SetJti(id.MustGenerate("tok"))
	token.SetString("username", username)
	token.SetString("sid", sessionID)

	return token.V4Encrypt(s.key, nil), expires, nil
}

// VerifyAccessToken decrypts and validates tokenString.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.GetSubject()
	if err != nil || subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	expires, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("%w: missing expiration", ErrInvalidToken)
	}
	username, _ := token.GetString("username") //nolint:errcheck // optional claim
	sessionID, _ := token.GetString("sid")     //nolint:errcheck // optional claim

	return &AccessClaims{
		UserID:    subject,
		Username:  username,
		SessionID: sessionID,
		ExpiresAt: expires,
	}, nil
}

// GenerateRefreshToken creates an opaque random refresh token.
// Only its hash is ever persisted.
func (s *TokenService) GenerateRefreshToken() (string, error) {
	b := make([]byte, refreshTokenSize)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// HashRefreshToken returns the BLAKE2b-256 digest of a refresh token as hex.
func HashRefreshToken(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// AccessTokenDuration returns the configured access token lifetime.
func (s *TokenService) AccessTokenDuration() time.Duration {
	return s.accessDuration
}

// RefreshTokenDuration returns the configured refresh token lifetime.
func (s *TokenService) RefreshTokenDuration() time.Duration {
	return s.refreshDuration
}
