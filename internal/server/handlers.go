package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/repositories"
	"github.com/desertthunder/encore/internal/search"
	"github.com/desertthunder/encore/internal/shared"
	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Default and maximum page sizes for song search.
const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// Handler holds API route handlers and their domain dependencies.
type Handler struct {
	search   *search.Reconciler
	songs    *repositories.SongRepository
	artists  *repositories.ArtistRepository
	venues   *repositories.VenueRepository
	shows    *repositories.ShowRepository
	setlists *repositories.SetlistRepository
	votes    *repositories.VoteRepository
	logger   *log.Logger
}

// HandlerOpts contains the dependencies for a Handler.
type HandlerOpts struct {
	Search   *search.Reconciler
	Songs    *repositories.SongRepository
	Artists  *repositories.ArtistRepository
	Venues   *repositories.VenueRepository
	Shows    *repositories.ShowRepository
	Setlists *repositories.SetlistRepository
	Votes    *repositories.VoteRepository
	Logger   *log.Logger
}

// NewHandler creates a new Handler.
func NewHandler(opts HandlerOpts) *Handler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Handler{
		search:   opts.Search,
		songs:    opts.Songs,
		artists:  opts.Artists,
		venues:   opts.Venues,
		shows:    opts.Shows,
		setlists: opts.Setlists,
		votes:    opts.Votes,
		logger:   opts.Logger,
	}
}

// writeError maps domain errors onto status codes and logs server faults.
func (h *Handler) writeError(w http.ResponseWriter, err error, action string) {
	var validationErrs validation.Errors

	switch {
	case errors.Is(err, shared.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, shared.ErrDuplicate):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, shared.ErrInvalidInput), errors.As(err, &validationErrs):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		h.logger.Error(action+" failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SearchSongs handles GET /api/songs/search.
//
// Queries shorter than two characters yield an empty list, not an error, and
// a catalog outage degrades the result to local rows only. Only a store
// failure produces a 500.
func (h *Handler) SearchSongs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	songs, err := h.search.Search(r.Context(), q.Get("q"), q.Get("artist"), limit)
	if err != nil {
		h.writeError(w, err, "song search")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"songs": songsJSON(songs),
		"total": len(songs),
	})
}

// GetSong handles GET /api/songs/{id}.
func (h *Handler) GetSong(w http.ResponseWriter, r *http.Request) {
	song, err := h.songs.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get song")
		return
	}
	writeJSON(w, http.StatusOK, songJSON(song))
}

// ListArtists handles GET /api/artists.
func (h *Handler) ListArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.artists.List(map[string]any{"name": r.URL.Query().Get("name")})
	if err != nil {
		h.writeError(w, err, "list artists")
		return
	}

	payload := make([]map[string]any, 0, len(artists))
	for _, artist := range artists {
		payload = append(payload, artistJSON(artist))
	}
	writeJSON(w, http.StatusOK, map[string]any{"artists": payload, "total": len(payload)})
}

// CreateArtist handles POST /api/artists.
func (h *Handler) CreateArtist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		ExternalID string `json:"external_id"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	artist := models.NewArtist(0, req.Name, req.ExternalID)
	if err := h.artists.Create(artist); err != nil {
		h.writeError(w, err, "create artist")
		return
	}
	writeJSON(w, http.StatusCreated, artistJSON(artist))
}

// ListArtistShows handles GET /api/artists/{id}/shows.
func (h *Handler) ListArtistShows(w http.ResponseWriter, r *http.Request) {
	artistID := chi.URLParam(r, "id")

	if _, err := h.artists.Get(artistID); err != nil {
		h.writeError(w, err, "get artist")
		return
	}

	shows, err := h.shows.List(map[string]any{"artist_id": artistID})
	if err != nil {
		h.writeError(w, err, "list shows")
		return
	}

	payload := make([]map[string]any, 0, len(shows))
	for _, show := range shows {
		payload = append(payload, showJSON(show))
	}
	writeJSON(w, http.StatusOK, map[string]any{"shows": payload, "total": len(payload)})
}

// ListVenues handles GET /api/venues.
func (h *Handler) ListVenues(w http.ResponseWriter, r *http.Request) {
	venues, err := h.venues.List(map[string]any{"city": r.URL.Query().Get("city")})
	if err != nil {
		h.writeError(w, err, "list venues")
		return
	}

	payload := make([]map[string]any, 0, len(venues))
	for _, venue := range venues {
		payload = append(payload, venueJSON(venue))
	}
	writeJSON(w, http.StatusOK, map[string]any{"venues": payload, "total": len(payload)})
}

// CreateVenue handles POST /api/venues.
func (h *Handler) CreateVenue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		City    string `json:"city"`
		Country string `json:"country"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	venue := models.NewVenue(0, req.Name, req.City, req.Country)
	if err := h.venues.Create(venue); err != nil {
		h.writeError(w, err, "create venue")
		return
	}
	writeJSON(w, http.StatusCreated, venueJSON(venue))
}

// CreateShow handles POST /api/shows.
func (h *Handler) CreateShow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ArtistID string `json:"artist_id"`
		VenueID  string `json:"venue_id"`
		Date     string `json:"date"`
		Tour     string `json:"tour"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if _, err := h.artists.Get(req.ArtistID); err != nil {
		h.writeError(w, err, "get artist")
		return
	}
	if _, err := h.venues.Get(req.VenueID); err != nil {
		h.writeError(w, err, "get venue")
		return
	}

	show := models.NewShow(0, req.ArtistID, req.VenueID, req.Date, req.Tour)
	if err := h.shows.Create(show); err != nil {
		h.writeError(w, err, "create show")
		return
	}
	writeJSON(w, http.StatusCreated, showJSON(show))
}

// GetShow handles GET /api/shows/{id}, returning the show with its setlist
// (when one exists) including per-entry vote totals.
func (h *Handler) GetShow(w http.ResponseWriter, r *http.Request) {
	show, err := h.shows.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err, "get show")
		return
	}

	payload := showJSON(show)

	setlist, err := h.setlists.GetByShow(show.ID())
	if err == nil {
		entries, err := h.setlistJSON(setlist)
		if err != nil {
			h.writeError(w, err, "load setlist")
			return
		}
		payload["setlist"] = map[string]any{"id": setlist.ID(), "songs": entries}
	} else if !errors.Is(err, shared.ErrNotFound) {
		h.writeError(w, err, "load setlist")
		return
	}

	writeJSON(w, http.StatusOK, payload)
}

// CreateSetlist handles POST /api/shows/{id}/setlist.
func (h *Handler) CreateSetlist(w http.ResponseWriter, r *http.Request) {
	showID := chi.URLParam(r, "id")

	var req struct {
		Songs []struct {
			SongID   string `json:"song_id"`
			Position int    `json:"position"`
			Encore   bool   `json:"encore"`
		} `json:"songs"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if _, err := h.shows.Get(showID); err != nil {
		h.writeError(w, err, "get show")
		return
	}

	setlist := models.NewSetlist(0, showID)
	entries := make([]models.SetlistEntry, 0, len(req.Songs))
	for _, s := range req.Songs {
		entries = append(entries, models.SetlistEntry{
			SongID:   s.SongID,
			Position: s.Position,
			Encore:   s.Encore,
		})
	}
	setlist.SetEntries(entries)

	if err := h.setlists.Create(setlist); err != nil {
		h.writeError(w, err, "create setlist")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"id": setlist.ID(), "show_id": showID})
}

// AddSetlistSong handles POST /api/setlists/{id}/songs.
func (h *Handler) AddSetlistSong(w http.ResponseWriter, r *http.Request) {
	setlistID := chi.URLParam(r, "id")

	var req struct {
		SongID   string `json:"song_id"`
		Position int    `json:"position"`
		Encore   bool   `json:"encore"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}

	if _, err := h.setlists.Get(setlistID); err != nil {
		h.writeError(w, err, "get setlist")
		return
	}

	entry, err := h.setlists.AddEntry(setlistID, req.SongID, req.Position, req.Encore)
	if err != nil {
		h.writeError(w, err, "add setlist song")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       entry.ID,
		"song_id":  entry.SongID,
		"position": entry.Position,
		"encore":   entry.Encore,
	})
}

// CreateVote handles POST /api/votes. The voter is identified by the
// X-Voter-Token header; one vote per voter per setlist entry.
func (h *Handler) CreateVote(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Voter-Token")
	if token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("X-Voter-Token header is required"))
		return
	}

	var req struct {
		SetlistSongID string `json:"setlist_song_id"`
		Value         int    `json:"value"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		return
	}
	if req.Value == 0 {
		req.Value = 1
	}

	vote := models.NewVote(0, req.SetlistSongID, token, req.Value)
	if err := h.votes.Create(vote); err != nil {
		h.writeError(w, err, "create vote")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":              vote.ID(),
		"setlist_song_id": vote.SetlistSongID(),
		"value":           vote.Value(),
	})
}

// decodeBody decodes a size-capped JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return err
	}
	return nil
}

// setlistJSON renders a setlist's entries with song details and vote totals.
func (h *Handler) setlistJSON(setlist *models.Setlist) ([]map[string]any, error) {
	entries := make([]map[string]any, 0, len(setlist.Entries()))

	for _, entry := range setlist.Entries() {
		song, err := h.songs.Get(entry.SongID)
		if err != nil {
			return nil, err
		}

		votes, err := h.votes.Count(entry.ID)
		if err != nil {
			return nil, err
		}

		entries = append(entries, map[string]any{
			"id":       entry.ID,
			"position": entry.Position,
			"encore":   entry.Encore,
			"votes":    votes,
			"song":     songJSON(song),
		})
	}

	return entries, nil
}

func songJSON(song *models.Song) map[string]any {
	payload := map[string]any{
		"id":     song.ID(),
		"title":  song.Title(),
		"artist": song.Artist(),
	}
	if song.ExternalID() != "" {
		payload["external_id"] = song.ExternalID()
	}
	return payload
}

func songsJSON(songs []*models.Song) []map[string]any {
	payload := make([]map[string]any, 0, len(songs))
	for _, song := range songs {
		payload = append(payload, songJSON(song))
	}
	return payload
}

func artistJSON(artist *models.Artist) map[string]any {
	payload := map[string]any{
		"id":   artist.ID(),
		"name": artist.Name(),
	}
	if artist.ExternalID() != "" {
		payload["external_id"] = artist.ExternalID()
	}
	return payload
}

func venueJSON(venue *models.Venue) map[string]any {
	return map[string]any{
		"id":      venue.ID(),
		"name":    venue.Name(),
		"city":    venue.City(),
		"country": venue.Country(),
	}
}

func showJSON(show *models.Show) map[string]any {
	payload := map[string]any{
		"id":        show.ID(),
		"artist_id": show.ArtistID(),
		"venue_id":  show.VenueID(),
		"date":      show.Date(),
	}
	if show.Tour() != "" {
		payload["tour"] = show.Tour()
	}
	return payload
}
