// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [ArtistRepository] : Artist persistence with name and catalog id lookups
//   - [VenueRepository] : Venue persistence
//   - [ShowRepository] : Show persistence with per-artist listings
//   - [SongRepository] : Song persistence with title-substring search and catalog id dedupe
//   - [SetlistRepository] : Setlists plus their ordered song entries
//   - [VoteRepository] : Setlist entry votes with per-voter dedupe
//
// Sequence numbers provide stable, human-readable ordering (e.g., song #42, show #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Uniqueness constraints (songs.external_id, votes voter/entry pairs) are the
// sole serialization point for concurrent writers; violation is reported as
// [shared.ErrDuplicate] so callers can treat the race as benign.
package repositories
