// package tasks implements bulk catalog ingestion into the song store.
//
// The core abstraction is IngestEngine, which pulls track records from a
// catalog provider and persists the ones the store has not seen. Operations
// emit progress updates via channels for non-blocking status reporting to
// CLI/UI layers.
package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/services"
)

// SongWriter is the slice of the song repository the ingest engine consumes.
type SongWriter interface {
	GetByExternalID(externalID string) (*models.Song, error)
	Create(song *models.Song) error
}

// TrackIngestResult represents the outcome of ingesting a single catalog track.
type TrackIngestResult struct {
	ExternalID string       // Catalog identifier of the source track
	Song       *models.Song // Persisted song (nil when skipped or failed)
	Skipped    bool         // True when the store already had the track
	Error      error        // Error if the ingest failed
}

// IngestRunResult contains all data from a bulk ingest operation.
type IngestRunResult struct {
	Results      []TrackIngestResult // Individual track outcomes
	CreatedCount int                 // Number of songs newly persisted
	SkippedCount int                 // Number of tracks already present
	FailedCount  int                 // Number of failed ingests
	TotalTracks  int                 // Total tracks processed
}

// IngestEngine pulls catalog tracks into the song store.
// Contains dependencies on the catalog provider and the store.
type IngestEngine struct {
	catalog services.Catalog
	store   SongWriter
}

// NewIngestEngine creates a new IngestEngine with the provided dependencies.
func NewIngestEngine(catalog services.Catalog, store SongWriter) *IngestEngine {
	return &IngestEngine{catalog: catalog, store: store}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *IngestEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// dependenciesReady reports a usable engine configuration.
func (e *IngestEngine) dependenciesReady() error {
	if e.catalog == nil {
		return fmt.Errorf("catalog provider not initialized")
	}
	if e.store == nil {
		return fmt.Errorf("song store not initialized")
	}
	return nil
}

// IngestQuery searches the catalog and persists every candidate the store has
// not seen, sequentially. Duplicate rows (already ingested or raced by another
// writer) are counted as skipped, not failed.
func (e *IngestEngine) IngestQuery(ctx context.Context, progress chan<- ProgressUpdate, query, artist string, limit int) (*IngestRunResult, error) {
	if err := e.dependenciesReady(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, searchCatalogUpdate(1, 1, query))

	candidates, err := e.catalog.SearchTracks(ctx, query, artist, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog search failed: %w", err)
	}

	ids := make([]string, 0, len(candidates))
	byID := make(map[string]models.CatalogTrack, len(candidates))
	for _, candidate := range candidates {
		if candidate.ExternalID == "" {
			continue
		}
		ids = append(ids, candidate.ExternalID)
		byID[candidate.ExternalID] = candidate
	}

	result := &IngestRunResult{TotalTracks: len(ids)}

	for i, id := range ids {
		candidate := byID[id]
		e.sendProgress(progress, ingestTrackUpdate(i+1, len(ids), candidate.Artist, candidate.Title))
		result.tally(e.ingestOne(candidate))
	}

	return result, nil
}

// ingestOne persists a single candidate unless the store already has it.
func (e *IngestEngine) ingestOne(candidate models.CatalogTrack) TrackIngestResult {
	res := TrackIngestResult{ExternalID: candidate.ExternalID}

	if existing, err := e.store.GetByExternalID(candidate.ExternalID); err == nil && existing != nil {
		res.Skipped = true
		return res
	}

	song := models.SongFromCatalog(0, candidate)
	if err := e.store.Create(song); err != nil {
		if isDuplicate(err) {
			res.Skipped = true
			return res
		}
		res.Error = err
		return res
	}

	res.Song = song
	return res
}

// tally folds a single track outcome into the run totals.
func (r *IngestRunResult) tally(res TrackIngestResult) {
	r.Results = append(r.Results, res)
	switch {
	case res.Error != nil:
		r.FailedCount++
	case res.Skipped:
		r.SkippedCount++
	default:
		r.CreatedCount++
	}
}
