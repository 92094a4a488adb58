package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(h.logger))

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		// Songs. Search reads through to the catalog when local
		// matches are sparse.
		r.Get("/songs/search", h.SearchSongs)
		r.Get("/songs/{id}", h.GetSong)

		// Artists and their show history.
		r.Get("/artists", h.ListArtists)
		r.Post("/artists", h.CreateArtist)
		r.Get("/artists/{id}/shows", h.ListArtistShows)

		// Venues.
		r.Get("/venues", h.ListVenues)
		r.Post("/venues", h.CreateVenue)

		// Shows and setlists.
		r.Post("/shows", h.CreateShow)
		r.Get("/shows/{id}", h.GetShow)
		r.Post("/shows/{id}/setlist", h.CreateSetlist)
		r.Post("/setlists/{id}/songs", h.AddSetlistSong)

		// Votes.
		r.Post("/votes", h.CreateVote)
	})

	return r
}
