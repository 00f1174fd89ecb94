// Package id generates identifiers for persisted records.
package id

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for NanoID based identifiers.
const (
	PrefixBook    = "book"
	PrefixReview  = "rev"
	PrefixSession = "sess"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "rev-V1StGXR8_Z5jdHi6B-myT").
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}

// NewUserID returns a random UUID string. User ids travel in URLs and
// tokens, so they use the canonical UUID form instead of a prefixed NanoID.
func NewUserID() string {
	return uuid.NewString()
}

// IsUserID reports whether s parses as a UUID.
func IsUserID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
