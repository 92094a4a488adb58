package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/desertthunder/encore/internal/tasks"
	"github.com/urfave/cli/v3"
)

// CatalogIngest pulls catalog search results for a query into the song store.
func (r *Runner) CatalogIngest(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: no catalog client configured", shared.ErrCatalogUnavailable)
	}

	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewIngestEngine(r.catalog, repositories.NewSongRepository(db))

	progress := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progress {
			r.logger.Info(update.Phase.String(), "step", update.Step, "total", update.Total, "message", update.Message)
		}
	}()

	result, err := engine.IngestQuery(ctx, progress, query, cmd.String("artist"), cmd.Int("limit"))
	close(progress)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	return r.printIngestResult(result)
}

// CatalogBulk ingests an explicit list of catalog track ids concurrently.
func (r *Runner) CatalogBulk(ctx context.Context, cmd *cli.Command) error {
	rawIDs := cmd.String("ids")
	if rawIDs == "" {
		return fmt.Errorf("%w: --ids is required", shared.ErrMissingArgument)
	}

	ids := []string{}
	for _, id := range strings.Split(rawIDs, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: --ids contained no track ids", shared.ErrInvalidArgument)
	}

	if r.catalog == nil {
		return fmt.Errorf("%w: no catalog client configured", shared.ErrCatalogUnavailable)
	}

	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	engine := tasks.NewIngestEngine(r.catalog, repositories.NewSongRepository(db))

	progress := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progress {
			r.logger.Info(update.Phase.String(), "step", update.Step, "total", update.Total, "message", update.Message)
		}
	}()

	opts := tasks.BulkIngestOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  config.Search.CatalogRate,
	}

	result, err := engine.BulkIngest(ctx, progress, ids, opts)
	close(progress)
	if err != nil {
		return fmt.Errorf("bulk ingest failed: %w", err)
	}

	return r.printIngestResult(result)
}

func (r *Runner) printIngestResult(result *tasks.IngestRunResult) error {
	err := r.writePlainln("✓ Ingest complete: %d created, %d skipped, %d failed (of %d)",
		result.CreatedCount, result.SkippedCount, result.FailedCount, result.TotalTracks)
	if err != nil {
		return err
	}

	for _, res := range result.Results {
		if res.Error != nil {
			if err := r.writePlain("  ✗ %s: %v\n", res.ExternalID, res.Error); err != nil {
				return err
			}
		}
	}
	return nil
}

// catalogCommand handles catalog ingest operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Pull songs from the external catalog into the library",
		Commands: []*cli.Command{
			{
				Name:  "ingest",
				Usage: "Ingest catalog search results for a query",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "artist",
						Aliases: []string{"a"},
						Usage:   "Restrict candidates to an artist name",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of candidates to ingest",
						Value: 10,
					},
				},
				Action: r.CatalogIngest,
			},
			{
				Name:  "bulk",
				Usage: "Ingest an explicit list of catalog track ids concurrently",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "ids",
						Usage:    "Comma-separated catalog track ids",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of concurrent workers (max 10)",
						Value:   5,
					},
				},
				Action: r.CatalogBulk,
			},
		},
	}
}
