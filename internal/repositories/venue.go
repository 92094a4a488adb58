package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// VenueRepository implements models.Repository[*models.Venue].
type VenueRepository struct {
	db *sql.DB
}

// NewVenueRepository creates a new VenueRepository with the given database connection
func NewVenueRepository(db *sql.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// Create inserts a new [models.Venue] with generated ID and sequence
func (r *VenueRepository) Create(venue *models.Venue) error {
	sequence, err := NextSequence(r.db, "venues")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	venue.SetID(id)
	venue.SetSequence(sequence)

	if err := venue.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO venues (id, sequence, name, city, country, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, venue.Name(), venue.City(), venue.Country(), venue.CreatedAt(), venue.UpdatedAt())
	if err != nil {
		return insertError("venues", err)
	}

	return nil
}

// Get retrieves a venue by ID, excluding soft-deleted venues
func (r *VenueRepository) Get(id string) (*models.Venue, error) {
	query := `
		SELECT id, sequence, name, city, country, created_at, updated_at, deleted_at
		FROM venues
		WHERE id = ? AND deleted_at IS NULL
	`

	venue, err := scanVenue(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: venue", shared.ErrNotFound)
	}
	return venue, err
}

// Update modifies an existing venue in the database
func (r *VenueRepository) Update(venue *models.Venue) error {
	if err := venue.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	venue.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE venues SET name = ?, city = ?, country = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		venue.Name(), venue.City(), venue.Country(), now, venue.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: venue %s", shared.ErrNotFound, venue.ID())
	}

	return nil
}

// Delete soft-deletes a venue by ID
func (r *VenueRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE venues SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete venue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: venue %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all venues matching the given criteria, excluding soft-deleted venues
func (r *VenueRepository) List(criteria map[string]any) ([]*models.Venue, error) {
	query := `
		SELECT id, sequence, name, city, country, created_at, updated_at, deleted_at
		FROM venues
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND LOWER(name) = LOWER(?)"
		args = append(args, name)
	}

	if city, ok := criteria["city"].(string); ok && city != "" {
		query += " AND LOWER(city) = LOWER(?)"
		args = append(args, city)
	}

	query += " ORDER BY name ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var venues []*models.Venue
	for rows.Next() {
		venue, err := scanVenue(rows.Scan)
		if err != nil {
			return nil, err
		}
		venues = append(venues, venue)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return venues, nil
}

func scanVenue(scan func(dest ...any) error) (*models.Venue, error) {
	var (
		id        string
		sequence  int
		name      string
		city      string
		country   string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := scan(&id, &sequence, &name, &city, &country, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan venue: %w", err)
	}

	venue := models.NewVenue(sequence, name, city, country)
	venue.SetID(id)
	venue.SetCreatedAt(createdAt)
	venue.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		venue.SetDeletedAt(&deletedAt.Time)
	}

	return venue, nil
}
