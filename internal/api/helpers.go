package api

import (
	"context"

	"github.com/storyspine/storyspine-server/internal/identity"
	"github.com/storyspine/storyspine-server/internal/store"
)

// bearerAuth marks an operation as requiring the bearer scheme in OpenAPI.
var bearerAuth = []map[string][]string{{"bearer": {}}}

// requireUser returns the caller's user ID, or an Unauthorized error for
// anonymous requests.
func requireUser(ctx context.Context) (string, error) {
	return identity.FromContext(ctx).Require()
}

// viewerID returns the caller's user ID, or "" for anonymous requests.
func viewerID(ctx context.Context) string {
	return identity.FromContext(ctx).ViewerID()
}

// PageParams are the shared limit/offset query parameters.
type PageParams struct {
	Limit  int `query:"limit" minimum:"0" maximum:"100" doc:"Maximum number of results"`
	Offset int `query:"offset" minimum:"0" doc:"Number of results to skip"`
}

func (p PageParams) page() store.Page {
	return store.Page{Limit: p.Limit, Offset: p.Offset}
}
