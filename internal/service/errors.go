package service

import (
	"context"
	"errors"

	"github.com/storyspine/storyspine-server/internal/catalog"
	domainerrors "github.com/storyspine/storyspine-server/internal/errors"
	"github.com/storyspine/storyspine-server/internal/store"
)

// storeError maps a persistence failure to a domain error. what names the
// missing resource in NotFound messages.
func storeError(err error, what string) error {
	if err == nil {
		return nil
	}

	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		return err
	}

	var storeErr *store.Error
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFoundf("%s not found", what).WithCause(err)
	case errors.Is(err, store.ErrInvalidInput) && errors.As(err, &storeErr):
		return domainerrors.Validation(storeErr.Message).WithCause(err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainerrors.UpstreamUnavailable("request timed out", err)
	default:
		return domainerrors.UpstreamUnavailable("storage unavailable", err)
	}
}

// catalogError maps a catalog failure to a domain error.
func catalogError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, catalog.ErrNotFound) {
		return domainerrors.NotFound("book not found").WithCause(err)
	}
	return domainerrors.UpstreamUnavailable("book catalog unavailable", err)
}
