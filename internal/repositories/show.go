package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// ShowRepository implements models.Repository[*models.Show].
type ShowRepository struct {
	db *sql.DB
}

// NewShowRepository creates a new ShowRepository with the given database connection
func NewShowRepository(db *sql.DB) *ShowRepository {
	return &ShowRepository{db: db}
}

// Create inserts a new [models.Show] with generated ID and sequence
func (r *ShowRepository) Create(show *models.Show) error {
	sequence, err := NextSequence(r.db, "shows")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	show.SetID(id)
	show.SetSequence(sequence)

	if err := show.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO shows (id, sequence, artist_id, venue_id, show_date, tour, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var tour any = show.Tour()
	if tour == "" {
		tour = nil
	}

	_, err = r.db.Exec(query, id, sequence, show.ArtistID(), show.VenueID(), show.Date(), tour, show.CreatedAt(), show.UpdatedAt())
	if err != nil {
		return insertError("shows", err)
	}

	return nil
}

// Get retrieves a show by ID, excluding soft-deleted shows
func (r *ShowRepository) Get(id string) (*models.Show, error) {
	query := `
		SELECT id, sequence, artist_id, venue_id, show_date, tour, created_at, updated_at, deleted_at
		FROM shows
		WHERE id = ? AND deleted_at IS NULL
	`

	show, err := scanShow(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: show", shared.ErrNotFound)
	}
	return show, err
}

// Update modifies an existing show in the database
func (r *ShowRepository) Update(show *models.Show) error {
	if err := show.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	show.SetUpdatedAt(now)

	result, err := r.db.Exec(
		`UPDATE shows SET show_date = ?, tour = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		show.Date(), show.Tour(), now, show.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update show: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: show %s", shared.ErrNotFound, show.ID())
	}

	return nil
}

// Delete soft-deletes a show by ID
func (r *ShowRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE shows SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete show: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: show %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all shows matching the given criteria, excluding soft-deleted
// shows, most recent show date first.
func (r *ShowRepository) List(criteria map[string]any) ([]*models.Show, error) {
	query := `
		SELECT id, sequence, artist_id, venue_id, show_date, tour, created_at, updated_at, deleted_at
		FROM shows
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if artistID, ok := criteria["artist_id"].(string); ok && artistID != "" {
		query += " AND artist_id = ?"
		args = append(args, artistID)
	}

	if venueID, ok := criteria["venue_id"].(string); ok && venueID != "" {
		query += " AND venue_id = ?"
		args = append(args, venueID)
	}

	query += " ORDER BY show_date DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var shows []*models.Show
	for rows.Next() {
		show, err := scanShow(rows.Scan)
		if err != nil {
			return nil, err
		}
		shows = append(shows, show)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return shows, nil
}

func scanShow(scan func(dest ...any) error) (*models.Show, error) {
	var (
		id        string
		sequence  int
		artistID  string
		venueID   string
		showDate  string
		tour      sql.NullString
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := scan(&id, &sequence, &artistID, &venueID, &showDate, &tour, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan show: %w", err)
	}

	show := models.NewShow(sequence, artistID, venueID, showDate, tour.String)
	show.SetID(id)
	show.SetCreatedAt(createdAt)
	show.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		show.SetDeletedAt(&deletedAt.Time)
	}

	return show, nil
}
