package repository

import "context"

// VersionRepository exposes the crawl version marker.
type VersionRepository interface {
	// Latest returns the most recent version id.
	Latest(ctx context.Context) (string, error)
}
