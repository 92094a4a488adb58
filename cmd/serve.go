package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve starts the REST API server and blocks until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config := r.loadConfig(cmd.String("config"))

	if host := cmd.String("host"); host != "" {
		config.Server.Host = host
	}
	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = port
	}

	db, err := r.openDatabase(config)
	if err != nil {
		return err
	}
	defer db.Close()

	handler := server.NewHandler(server.HandlerOpts{
		Search:   r.buildReconciler(db, config),
		Songs:    repositories.NewSongRepository(db),
		Artists:  repositories.NewArtistRepository(db),
		Venues:   repositories.NewVenueRepository(db),
		Shows:    repositories.NewShowRepository(db),
		Setlists: repositories.NewSetlistRepository(db),
		Votes:    repositories.NewVoteRepository(db),
		Logger:   r.logger,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(*config, handler)
	return srv.Start(ctx)
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the REST API server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "Host to bind (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}
