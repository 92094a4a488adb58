package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsSearch runs the search flow from the command line, backfilling sparse
// results from the catalog when a client is configured.
func (r *Runner) SongsSearch(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: a search query is required", shared.ErrMissingArgument)
	}

	artist := cmd.String("artist")
	limit := cmd.Int("limit")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	if r.catalog == nil {
		r.logger.Warn("no catalog client configured, returning local results only")
	}

	songs, err := r.buildReconciler(db, config).Search(ctx, query, artist, limit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if useJSON {
		payload := make([]map[string]any, 0, len(songs))
		for _, song := range songs {
			payload = append(payload, map[string]any{
				"id":          song.ID(),
				"title":       song.Title(),
				"artist":      song.Artist(),
				"external_id": song.ExternalID(),
			})
		}
		return r.writeJSON(payload, pretty)
	}

	if len(songs) == 0 {
		return r.writePlainln("No songs matched '%s'", query)
	}

	if err := r.writePlainln("%d songs matched '%s':", len(songs), query); err != nil {
		return err
	}
	for _, song := range songs {
		if err := r.printSong(song); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runner) printSong(song *models.Song) error {
	origin := "local"
	if song.ExternalID() != "" {
		origin = "catalog"
	}
	return r.writePlain("  • %s by %s (%s)\n", song.Title(), song.Artist(), origin)
}

// songsCommand handles song library operations
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "songs",
		Aliases: []string{"song"},
		Usage:   "Search and browse the song library",
		Commands: []*cli.Command{
			{
				Name:  "search",
				Usage: "Search songs by title, backfilling from the catalog when sparse",
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
						Usage:   "Restrict matches to an artist name",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of songs to return",
						Value: 25,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SongsSearch,
			},
		},
	}
}
