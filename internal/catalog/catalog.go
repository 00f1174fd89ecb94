// Package catalog defines the external book catalog the server falls back to
// for books no user has shelved yet.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/storyspine/storyspine-server/internal/domain"
)

// Sentinel errors for catalog operations.
var (
	// ErrNotFound means the catalog answered and has no such volume.
	ErrNotFound = errors.New("catalog: not found")
	// ErrUnavailable covers timeouts, network failures, throttling and 5xx answers.
	ErrUnavailable = errors.New("catalog: unavailable")
)

// Catalog looks books up in the external catalog. Implementations make a
// single bounded attempt per call and never retry.
type Catalog interface {
	GetByExternalID(ctx context.Context, externalID string) (*domain.CatalogBook, error)
	Search(ctx context.Context, query string, maxResults int) ([]domain.CatalogSearchResult, error)
}

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // "get" or "search"
	Key string // External id or query
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("catalog %s [%s]: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// WrapError attaches operation context to err.
func WrapError(op, key string, err error) error {
	return &Error{Op: op, Key: key, Err: err}
}
