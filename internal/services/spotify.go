// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Spotify caps search page sizes at 50.
	spotifyMaxLimit = 50
)

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Artists     []SpotifyArtist `json:"artists"`
	Album       SpotifyAlbum    `json:"album"`
	DurationMS  int             `json:"duration_ms"`
	Explicit    bool            `json:"explicit"`
	ExternalIDs externalIDs     `json:"external_ids"`
	Popularity  int             `json:"popularity"`
	URI         string          `json:"uri"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
	URI    string   `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
	URI         string `json:"uri"`
}

// SpotifySearchResult represents the tracks portion of a search response.
type SpotifySearchResult struct {
	Tracks struct {
		Items  []SpotifyTrack `json:"items"`
		Total  int            `json:"total"`
		Limit  int            `json:"limit"`
		Offset int            `json:"offset"`
		Next   *string        `json:"next"`
	} `json:"tracks"`
}

// SpotifyCatalog implements the [Catalog] interface for the Spotify Web API.
// Uses the [clientcredentials] OAuth2 flow; search and track lookup need no
// user authorization.
type SpotifyCatalog struct {
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyCatalog creates a Spotify catalog client with the given app credentials.
func NewSpotifyCatalog(credentials map[string]string) (*SpotifyCatalog, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}

	return &SpotifyCatalog{
		httpClient: config.Client(context.Background()),
		baseURL:    spotifyBaseURL,
	}, nil
}

// SetBaseURL overrides the API base URL, for tests pointed at a local server.
func (s *SpotifyCatalog) SetBaseURL(base string) { s.baseURL = base }

// SetHTTPClient overrides the HTTP client, for tests with canned transports.
func (s *SpotifyCatalog) SetHTTPClient(client *http.Client) { s.httpClient = client }

func (s *SpotifyCatalog) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against the Spotify API and decodes
// the JSON response into result.
func (s *SpotifyCatalog) doRequest(ctx context.Context, endpoint string, result any) error {
	apiURL := s.baseURL + endpoint

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrCatalogRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", shared.ErrCatalogRequest, resp.StatusCode)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%w: decode response: %v", shared.ErrCatalogRequest, err)
		}
	}

	return nil
}

// SearchTracks searches the Spotify catalog for tracks matching query,
// optionally scoped to an artist name, in provider relevance order.
func (s *SpotifyCatalog) SearchTracks(ctx context.Context, query, artist string, limit int) ([]models.CatalogTrack, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > spotifyMaxLimit {
		limit = spotifyMaxLimit
	}

	q := query
	if artist != "" {
		q = fmt.Sprintf("%s artist:%s", query, artist)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var result SpotifySearchResult
	if err := s.doRequest(ctx, "/search?"+params.Encode(), &result); err != nil {
		return nil, err
	}

	tracks := make([]models.CatalogTrack, 0, len(result.Tracks.Items))
	for _, item := range result.Tracks.Items {
		tracks = append(tracks, TrackToCatalog(item))
	}

	return tracks, nil
}

// Track retrieves a single track by its Spotify ID.
func (s *SpotifyCatalog) Track(ctx context.Context, id string) (*models.CatalogTrack, error) {
	var track SpotifyTrack
	endpoint := fmt.Sprintf("/tracks/%s", url.PathEscape(id))
	if err := s.doRequest(ctx, endpoint, &track); err != nil {
		return nil, err
	}

	mapped := TrackToCatalog(track)
	return &mapped, nil
}

// TrackToCatalog maps a provider track record into the local candidate shape.
// The first listed artist becomes the artist name.
func TrackToCatalog(track SpotifyTrack) models.CatalogTrack {
	candidate := models.CatalogTrack{
		ExternalID: track.ID,
		Title:      track.Name,
		Album:      track.Album.Name,
		Duration:   track.DurationMS / 1000,
		ISRC:       track.ExternalIDs.ISRC,
	}

	if len(track.Artists) > 0 {
		candidate.Artist = track.Artists[0].Name
	}

	return candidate
}
