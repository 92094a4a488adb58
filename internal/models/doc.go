// Package models defines domain entities and persistence interfaces for the setlist tracking service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs carrying external catalog data
//   - [CatalogTrack] : Track metadata returned by a catalog provider search
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Artist] : Performing artists, optionally linked to a catalog record
//   - [Venue] : Concert venues
//   - [Show] : A single concert (artist, venue, date, tour)
//   - [Song] : Songs, keyed by an optional unique external catalog identifier
//   - [Setlist] : Ordered songs performed at a show
//   - [Vote] : One voter's vote on a setlist entry
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
