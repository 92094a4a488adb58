package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ArtistRepository implements models.Repository[*models.Artist].
type ArtistRepository struct {
	db *sql.DB
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{db: db}
}

// Create inserts a new [models.Artist] with generated ID and sequence.
//
// Returns [shared.ErrDuplicate] when the name or external id is already taken.
func (r *ArtistRepository) Create(artist *models.Artist) error {
	sequence, err := NextSequence(r.db, "artists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	artist.SetID(id)
	artist.SetSequence(sequence)

	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO artists (id, sequence, name, external_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var externalID any = artist.ExternalID()
	if externalID == "" {
		externalID = nil
	}

	_, err = r.db.Exec(query, id, sequence, artist.Name(), externalID, artist.CreatedAt(), artist.UpdatedAt())
	if err != nil {
		return insertError("artists", err)
	}

	return nil
}

// Get retrieves an artist by ID, excluding soft-deleted artists
func (r *ArtistRepository) Get(id string) (*models.Artist, error) {
	query := `
		SELECT id, sequence, name, external_id, created_at, updated_at, deleted_at
		FROM artists
		WHERE id = ? AND deleted_at IS NULL
	`
	return scanArtistRow(r.db.QueryRow(query, id))
}

// GetByName retrieves an artist by exact name, case-insensitively.
func (r *ArtistRepository) GetByName(name string) (*models.Artist, error) {
	query := `
		SELECT id, sequence, name, external_id, created_at, updated_at, deleted_at
		FROM artists
		WHERE LOWER(name) = LOWER(?) AND deleted_at IS NULL
	`
	return scanArtistRow(r.db.QueryRow(query, name))
}

// Update modifies an existing artist in the database
func (r *ArtistRepository) Update(artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	artist.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE artists SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		artist.Name(), now, artist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: artist %s", shared.ErrNotFound, artist.ID())
	}

	return nil
}

// Delete soft-deletes an artist by ID
func (r *ArtistRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE artists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: artist %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all artists matching the given criteria, excluding soft-deleted artists
func (r *ArtistRepository) List(criteria map[string]any) ([]*models.Artist, error) {
	query := `
		SELECT id, sequence, name, external_id, created_at, updated_at, deleted_at
		FROM artists
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += ` AND LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(name))
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		artist, err := scanArtist(rows.Scan)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return artists, nil
}

func scanArtistRow(row *sql.Row) (*models.Artist, error) {
	artist, err := scanArtist(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: artist", shared.ErrNotFound)
	}
	return artist, err
}

func scanArtist(scan func(dest ...any) error) (*models.Artist, error) {
	var (
		id         string
		sequence   int
		name       string
		externalID sql.NullString
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := scan(&id, &sequence, &name, &externalID, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}

	artist := models.NewArtist(sequence, name, externalID.String)
	artist.SetID(id)
	artist.SetCreatedAt(createdAt)
	artist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		artist.SetDeletedAt(&deletedAt.Time)
	}

	return artist, nil
}
