// Package search implements the song search-and-backfill flow.
//
// Searching songs is a read-through cache over the song store: a local
// substring query first, then a conditional catalog lookup that persists
// not-yet-stored candidates. The two phases are explicit so the consistency
// story stays auditable; nothing backfills as a hidden side effect of a
// generic data-access layer.
//
// The store's unique index on songs.external_id is the only serialization
// point between concurrent searches backfilling the same track. The existence
// check and the insert are deliberately not atomic; a losing writer sees a
// duplicate-insert error and skips the candidate.
package search

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
	"github.com/desertthunder/encore/internal/shared"
)

// MinQueryLength is the shortest trimmed query worth hitting the store for.
// Shorter queries return an empty result without any store or catalog access.
const MinQueryLength = 2

// SongStore is the slice of the song repository the flow consumes.
// [repositories.SongRepository] satisfies it; tests substitute fakes.
type SongStore interface {
	// SearchByTitle returns songs whose title contains text case-insensitively,
	// filtered by artist substring when non-empty, title ascending, capped at limit.
	SearchByTitle(text, artist string, limit int) ([]*models.Song, error)

	// GetByExternalID returns the song carrying the external catalog id, or
	// [shared.ErrNotFound].
	GetByExternalID(externalID string) (*models.Song, error)

	// Create inserts a song; [shared.ErrDuplicate] when its external id is taken.
	Create(song *models.Song) error
}

// Options tunes the backfill phase. Neither value affects correctness, only
// how eagerly the catalog is consulted and how many candidates it may return.
type Options struct {
	// SparseThreshold is the local match count below which the catalog is consulted.
	SparseThreshold int
	// CandidateLimit caps how many catalog candidates are requested per search.
	CandidateLimit int
}

// DefaultOptions returns the stock backfill tuning.
func DefaultOptions() Options {
	return Options{SparseThreshold: 5, CandidateLimit: 10}
}

// Reconciler runs song searches against the local store, enriching sparse
// results from an external catalog. Store and catalog are injected so tests
// can substitute fakes.
type Reconciler struct {
	store   SongStore
	catalog services.Catalog
	opts    Options
	logger  *log.Logger
}

// NewReconciler creates a Reconciler over the given store and catalog.
// A nil catalog disables the backfill phase entirely.
func NewReconciler(store SongStore, catalog services.Catalog, opts Options, logger *log.Logger) *Reconciler {
	if opts.SparseThreshold <= 0 {
		opts.SparseThreshold = DefaultOptions().SparseThreshold
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = DefaultOptions().CandidateLimit
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &Reconciler{store: store, catalog: catalog, opts: opts, logger: logger}
}

// Search returns songs matching query (and artist, when non-empty), preferring
// stored rows and backfilling from the catalog when local matches are sparse.
//
// Queries shorter than [MinQueryLength] after trimming return an empty slice
// without touching the store or the catalog.
//
// A store read failure fails the whole operation. A catalog failure does not:
// the local matches are returned as a degraded but successful result. Songs
// inserted during backfill are appended after the local matches, in the order
// the catalog returned their source candidates.
func (r *Reconciler) Search(ctx context.Context, query, artist string, limit int) ([]*models.Song, error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []*models.Song{}, nil
	}

	matches, err := r.store.SearchByTitle(query, artist, limit)
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []*models.Song{}
	}

	if len(matches) >= r.opts.SparseThreshold || r.catalog == nil {
		return matches, nil
	}

	candidates, err := r.catalog.SearchTracks(ctx, query, artist, r.opts.CandidateLimit)
	if err != nil {
		// Degraded but successful: local matches stand on their own.
		r.logger.Warn("catalog search failed, returning local matches only",
			"provider", r.catalog.Name(), "query", query, "err", err)
		return matches, nil
	}

	created, err := r.backfill(ctx, candidates)
	if err != nil {
		return nil, err
	}

	return append(matches, created...), nil
}

// backfill persists catalog candidates the store has not seen and returns the
// newly created rows in candidate order. A store read failure aborts the whole
// operation; rows already inserted stay committed (they are idempotent by
// external id).
func (r *Reconciler) backfill(ctx context.Context, candidates []models.CatalogTrack) ([]*models.Song, error) {
	var created []*models.Song

	for _, candidate := range candidates {
		if ctx.Err() != nil {
			// Caller gave up; rows already inserted stay inserted.
			break
		}
		if candidate.ExternalID == "" {
			continue
		}

		_, err := r.store.GetByExternalID(candidate.ExternalID)
		if err == nil {
			// Already stored, and counted by the title search if it matched.
			continue
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}

		song := models.SongFromCatalog(0, candidate)
		if err := r.store.Create(song); err != nil {
			if errors.Is(err, shared.ErrDuplicate) {
				// Lost the insert race; the row exists, which is all we wanted.
				continue
			}
			r.logger.Warn("backfill insert failed, skipping candidate",
				"external_id", candidate.ExternalID, "err", err)
			continue
		}

		created = append(created, song)
	}

	return created, nil
}
