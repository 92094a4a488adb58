package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CatalogTrack represents a track candidate returned by an external catalog
// provider search. Read-only to this system; the provider owns the record and
// may change or drop it without notice.
type CatalogTrack struct {
	ExternalID string // Provider identifier, the dedupe key for backfilled songs
	Title      string
	Artist     string
	Album      string
	Duration   int // Duration in seconds
	ISRC       string
}

// Song is a persisted song row.
//
// ExternalID is a weak reference into the catalog provider's identifier space:
// a lookup key, never an ownership relation. At most one Song row may exist per
// external id (enforced by a partial unique index on songs.external_id).
type Song struct {
	record
	title      string
	artist     string
	externalID string
}

// NewSong creates a Song from locally entered data, without a catalog link.
func NewSong(sequence int, title, artist string) *Song {
	return &Song{record: newRecord(sequence), title: title, artist: artist}
}

// SongFromCatalog creates a Song from a catalog track candidate.
func SongFromCatalog(sequence int, track CatalogTrack) *Song {
	return &Song{
		record:     newRecord(sequence),
		title:      track.Title,
		artist:     track.Artist,
		externalID: track.ExternalID,
	}
}

func (s *Song) Title() string      { return s.title }
func (s *Song) Artist() string     { return s.artist }
func (s *Song) ExternalID() string { return s.externalID }

// Validate checks song invariants before persistence.
func (s *Song) Validate() error {
	return validation.Errors{
		"title":       validation.Validate(s.title, validation.Required, validation.Length(1, 512)),
		"artist":      validation.Validate(s.artist, validation.Required, validation.Length(1, 512)),
		"external_id": validation.Validate(s.externalID, validation.Length(0, 64)),
	}.Filter()
}
