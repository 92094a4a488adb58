// package services defines interface Catalog for external music-catalog providers
package services

import (
	"context"

	"github.com/desertthunder/encore/internal/models"
)

// Catalog defines the interface for external music-catalog providers used to
// backfill song data. Providers are read-only collaborators: this system never
// writes to them and their records may change or vanish without notice.
type Catalog interface {
	// SearchTracks searches the provider for tracks matching query, optionally
	// filtered by artist name, returning at most limit candidates in provider order.
	SearchTracks(ctx context.Context, query, artist string, limit int) ([]models.CatalogTrack, error)

	// Track retrieves a single track by its provider identifier.
	Track(ctx context.Context, id string) (*models.CatalogTrack, error)

	// Name returns the provider name (e.g., "Spotify")
	Name() string
}
