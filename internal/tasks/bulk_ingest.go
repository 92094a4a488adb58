package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/time/rate"
)

// BulkIngestOpts contains configuration for bulk track ingestion.
type BulkIngestOpts struct {
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Catalog requests per second (default: 5)
}

// trackIngestJob carries one track id through the worker pool.
type trackIngestJob struct {
	ExternalID string
	Step       int
}

// BulkIngest ingests a list of catalog track ids concurrently with rate
// limiting and progress tracking.
//
// This method implements a worker pool pattern: a rate-limited feeder hands
// track ids to workers, each worker fetches the track from the catalog and
// persists it. Partial failures are collected in the result, not returned as
// an operation error; tracks the store already holds count as skipped.
// Ordering of Results follows completion order, not input order. Callers that
// need input order should sort by ExternalID.
func (e *IngestEngine) BulkIngest(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkIngestOpts,
) (*IngestRunResult, error) {
	if err := e.dependenciesReady(); err != nil {
		return nil, err
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	result := &IngestRunResult{TotalTracks: len(ids)}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan trackIngestJob, len(ids))
	results := make(chan TrackIngestResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.ingestWorker(ctx, &wg, limiter, jobs, results)
	}

	go func() {
		for i, id := range ids {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}
			jobs <- trackIngestJob{ExternalID: id, Step: i + 1}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.tally(res)

		switch {
		case res.Error != nil:
			e.sendProgress(prog, ingestFailedUpdate(completed, len(ids), res.ExternalID, res.Error))
		case res.Skipped:
			e.sendProgress(prog, ingestSkippedUpdate(completed, len(ids), res.ExternalID))
		default:
			e.sendProgress(prog, ingestCompletedUpdate(completed, len(ids), res.Song.Artist(), res.Song.Title()))
		}
	}

	return result, nil
}

// ingestWorker is a worker goroutine that ingests tracks from the jobs channel.
func (e *IngestEngine) ingestWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan trackIngestJob,
	results chan<- TrackIngestResult,
) {
	defer wg.Done()

	for job := range jobs {
		// Only the catalog fetch is rate limited, not the local insert.
		if err := limiter.Wait(ctx); err != nil {
			results <- TrackIngestResult{ExternalID: job.ExternalID, Error: err}
			continue
		}

		track, err := e.catalog.Track(ctx, job.ExternalID)
		if err != nil {
			results <- TrackIngestResult{
				ExternalID: job.ExternalID,
				Error:      fmt.Errorf("catalog fetch failed: %w", err),
			}
			continue
		}

		results <- e.ingestOne(*track)
	}
}

// isDuplicate reports whether err marks a row the store already holds.
func isDuplicate(err error) bool {
	return errors.Is(err, shared.ErrDuplicate)
}
