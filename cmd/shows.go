package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/urfave/cli/v3"
)

// ShowsList lists shows for an artist, newest first.
func (r *Runner) ShowsList(ctx context.Context, cmd *cli.Command) error {
	artistName := cmd.String("artist")
	if artistName == "" {
		return fmt.Errorf("%w: --artist is required", shared.ErrMissingArgument)
	}

	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	artists := repositories.NewArtistRepository(db)
	artist, err := artists.GetByName(artistName)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return r.writePlainln("No artist named '%s'", artistName)
		}
		return fmt.Errorf("failed to look up artist: %w", err)
	}

	shows, err := repositories.NewShowRepository(db).List(map[string]any{"artist_id": artist.ID()})
	if err != nil {
		return fmt.Errorf("failed to list shows: %w", err)
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, 0, len(shows))
		for _, show := range shows {
			payload = append(payload, map[string]any{
				"id":       show.ID(),
				"venue_id": show.VenueID(),
				"date":     show.Date(),
				"tour":     show.Tour(),
			})
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	if len(shows) == 0 {
		return r.writePlainln("No shows recorded for %s", artist.Name())
	}

	venues := repositories.NewVenueRepository(db)
	if err := r.writePlainln("%d shows for %s:", len(shows), artist.Name()); err != nil {
		return err
	}
	for _, show := range shows {
		location := show.VenueID()
		if venue, err := venues.Get(show.VenueID()); err == nil {
			location = fmt.Sprintf("%s, %s", venue.Name(), venue.City())
		}
		line := fmt.Sprintf("  %s at %s", show.Date(), location)
		if show.Tour() != "" {
			line = fmt.Sprintf("%s (%s)", line, show.Tour())
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}

	return nil
}

// ShowsAdd records a show, creating the artist and venue when they are new.
func (r *Runner) ShowsAdd(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	artist, err := r.findOrCreateArtist(db, cmd.String("artist"))
	if err != nil {
		return err
	}

	venue, err := r.findOrCreateVenue(db, cmd.String("venue"), cmd.String("city"), cmd.String("country"))
	if err != nil {
		return err
	}

	show := models.NewShow(0, artist.ID(), venue.ID(), cmd.String("date"), cmd.String("tour"))
	if err := repositories.NewShowRepository(db).Create(show); err != nil {
		return fmt.Errorf("failed to create show: %w", err)
	}

	r.logger.Info("show recorded", "id", show.ID(), "artist", artist.Name(), "date", show.Date())
	return r.writePlainln("✓ Recorded %s at %s on %s", artist.Name(), venue.Name(), show.Date())
}

func (r *Runner) findOrCreateArtist(db *sql.DB, name string) (*models.Artist, error) {
	repo := repositories.NewArtistRepository(db)

	artist, err := repo.GetByName(name)
	if err == nil {
		return artist, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up artist: %w", err)
	}

	artist = models.NewArtist(0, name, "")
	if err := repo.Create(artist); err != nil {
		return nil, fmt.Errorf("failed to create artist: %w", err)
	}

	r.logger.Info("artist created", "name", name)
	return artist, nil
}

func (r *Runner) findOrCreateVenue(db *sql.DB, name, city, country string) (*models.Venue, error) {
	repo := repositories.NewVenueRepository(db)

	venues, err := repo.List(map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("failed to look up venue: %w", err)
	}
	if len(venues) > 0 {
		return venues[0], nil
	}

	venue := models.NewVenue(0, name, city, country)
	if err := repo.Create(venue); err != nil {
		return nil, fmt.Errorf("failed to create venue: %w", err)
	}

	r.logger.Info("venue created", "name", name, "city", city)
	return venue, nil
}

// showsCommand handles show history operations
func showsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "shows",
		Usage: "Record and browse concert history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List shows for an artist, newest first",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
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
				Action: r.ShowsList,
			},
			{
				Name:  "add",
				Usage: "Record a show, creating the artist and venue as needed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:     "artist",
						Aliases:  []string{"a"},
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "venue",
						Usage:    "Venue name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "city",
						Usage: "Venue city",
					},
					&cli.StringFlag{
						Name:  "country",
						Usage: "Venue country",
					},
					&cli.StringFlag{
						Name:     "date",
						Aliases:  []string{"d"},
						Usage:    "Show date (YYYY-MM-DD)",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "tour",
						Usage: "Tour name",
					},
				},
				Action: r.ShowsAdd,
			},
		},
	}
}
