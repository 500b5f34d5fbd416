// Package source fetches a user's library from one of the supported
// upstream catalogs and normalizes it to the internal schema the resolver
// consumes.
package source

import (
	"context"

	"musixport/internal/models"
)

// Source is one upstream catalog adapter.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (models.Library, error)
}
