package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// SongRepository implements models.Repository[*models.Song].
//
// Songs carry an optional external catalog identifier; the partial unique index
// on songs.external_id guarantees at most one row per catalog track no matter
// how many writers race an insert. Create reports that race as
// [shared.ErrDuplicate] rather than a hard failure.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new [models.Song] into the database with generated ID and sequence.
//
// Returns [shared.ErrDuplicate] when a row with the same external id already exists.
func (r *SongRepository) Create(song *models.Song) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)
	song.SetSequence(sequence)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, title, artist, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var externalID any = song.ExternalID()
	if externalID == "" {
		externalID = nil
	}

	_, err = r.db.Exec(query,
		id,
		sequence,
		song.Title(),
		song.Artist(),
		externalID,
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return insertError("songs", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, external_id, created_at, updated_at, deleted_at
		FROM songs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByExternalID retrieves a song by its external catalog identifier.
//
// Returns [shared.ErrNotFound] when no row carries the id.
func (r *SongRepository) GetByExternalID(externalID string) (*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, external_id, created_at, updated_at, deleted_at
		FROM songs
		WHERE external_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, externalID))
}

// SearchByTitle retrieves songs whose title contains text as a case-insensitive
// substring, optionally filtered by an artist-name substring, ordered by title
// ascending and capped at limit.
//
// SQLite LIKE is only case-insensitive for ASCII, so both sides are lowered
// explicitly.
func (r *SongRepository) SearchByTitle(text, artist string, limit int) ([]*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, external_id, created_at, updated_at, deleted_at
		FROM songs
		WHERE deleted_at IS NULL AND LOWER(title) LIKE ? ESCAPE '\'
	`
	args := []any{likePattern(text)}

	if artist != "" {
		query += ` AND LOWER(artist) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(artist))
	}

	query += " ORDER BY title ASC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, song.Title(), song.Artist(), now, song.ID())
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, song.ID())
	}

	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `
		SELECT id, sequence, title, artist, external_id, created_at, updated_at, deleted_at
		FROM songs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND LOWER(artist) = LOWER(?)"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	return r.collect(rows)
}

// likeEscaper escapes the LIKE metacharacters so user input matches literally.
// Queries using likePattern must carry a matching ESCAPE '\' clause.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a lowered substring LIKE pattern for text.
func likePattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}

// collect scans all rows into songs.
func (r *SongRepository) collect(rows *sql.Rows) ([]*models.Song, error) {
	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows.Scan)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return songs, nil
}

// scanOne scans a single [sql.Row] into a [models.Song]
func (r *SongRepository) scanOne(row *sql.Row) (*models.Song, error) {
	song, err := scanSong(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: song", shared.ErrNotFound)
	}
	return song, err
}

// scanSong scans one row worth of song columns via the provided scan function.
func scanSong(scan func(dest ...any) error) (*models.Song, error) {
	var (
		id         string
		sequence   int
		title      string
		artist     string
		externalID sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := scan(&id, &sequence, &title, &artist, &externalID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	var song *models.Song
	if externalID.Valid {
		song = models.SongFromCatalog(sequence, models.CatalogTrack{
			ExternalID: externalID.String,
			Title:      title,
			Artist:     artist,
		})
	} else {
		song = models.NewSong(sequence, title, artist)
	}

	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
