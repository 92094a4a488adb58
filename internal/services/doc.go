// Package services defines the [Catalog] interface for external music-catalog providers and implements it for Spotify.
//
// # Catalog Interface
//
// All catalog providers implement a common abstraction so the search backfill
// and ingest flows work uniformly across providers.
//
// # Spotify Implementation
//
// [SpotifyCatalog] authenticates with the OAuth2 client-credentials flow
// ([clientcredentials.Config]); app credentials only, no user login. The token
// source refreshes expired tokens transparently.
//
// # Error Handling
//
// Provider failures (network error, non-2xx status, malformed payload) surface
// as [shared.ErrCatalogRequest]-wrapped errors. Callers in the search flow treat
// any catalog error as non-fatal and fall back to local data.
//
// # API Mappings
//
// Provider-specific JSON responses convert to [models.CatalogTrack]; the first
// listed artist becomes the track's artist name and external_ids.isrc is carried
// when present.
package services
