package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// SetlistRepository implements models.Repository[*models.Setlist], managing
// setlists and their ordered song entries.
type SetlistRepository struct {
	db *sql.DB
}

// NewSetlistRepository creates a new SetlistRepository with the given database connection
func NewSetlistRepository(db *sql.DB) *SetlistRepository {
	return &SetlistRepository{db: db}
}

// Create inserts a new [models.Setlist] with generated ID and sequence.
// Entries present on the model are inserted in the same transaction.
//
// Returns [shared.ErrDuplicate] when the show already has a setlist.
func (r *SetlistRepository) Create(setlist *models.Setlist) error {
	sequence, err := NextSequence(r.db, "setlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	setlist.SetID(id)
	setlist.SetSequence(sequence)

	if err := setlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO setlists (id, sequence, show_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, sequence, setlist.ShowID(), setlist.CreatedAt(), setlist.UpdatedAt(),
	)
	if err != nil {
		return insertError("setlists", err)
	}

	entries := setlist.Entries()
	for i := range entries {
		if err := insertEntry(tx, id, &entries[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AddEntry appends a song at the given position to an existing setlist.
//
// Returns [shared.ErrDuplicate] when the position or song is already taken.
func (r *SetlistRepository) AddEntry(setlistID string, songID string, position int, encore bool) (*models.SetlistEntry, error) {
	entry := models.SetlistEntry{
		SetlistID: setlistID,
		SongID:    songID,
		Position:  position,
		Encore:    encore,
	}

	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertEntry(tx, setlistID, &entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &entry, nil
}

// insertEntry persists one entry, generating its ID and timestamp in place so
// they flow back to the caller.
func insertEntry(tx *sql.Tx, setlistID string, entry *models.SetlistEntry) error {
	entry.SetlistID = setlistID
	if entry.ID == "" {
		entry.ID = shared.GenerateID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := tx.Exec(
		`INSERT INTO setlist_songs (id, setlist_id, song_id, position, encore, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, setlistID, entry.SongID, entry.Position, entry.Encore, entry.CreatedAt,
	)
	if err != nil {
		return insertError("setlist_songs", err)
	}
	return nil
}

// Get retrieves a setlist by ID with its entries in position order
func (r *SetlistRepository) Get(id string) (*models.Setlist, error) {
	query := `
		SELECT id, sequence, show_id, created_at, updated_at, deleted_at
		FROM setlists
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.hydrate(r.db.QueryRow(query, id))
}

// GetByShow retrieves the setlist for a show.
func (r *SetlistRepository) GetByShow(showID string) (*models.Setlist, error) {
	query := `
		SELECT id, sequence, show_id, created_at, updated_at, deleted_at
		FROM setlists
		WHERE show_id = ? AND deleted_at IS NULL
	`
	return r.hydrate(r.db.QueryRow(query, showID))
}

// hydrate scans a setlist row and loads its entries.
func (r *SetlistRepository) hydrate(row *sql.Row) (*models.Setlist, error) {
	var (
		id        string
		sequence  int
		showID    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &showID, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: setlist", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan setlist: %w", err)
	}

	setlist := models.NewSetlist(sequence, showID)
	setlist.SetID(id)
	setlist.SetCreatedAt(createdAt)
	setlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		setlist.SetDeletedAt(&deletedAt.Time)
	}

	entries, err := r.entries(id)
	if err != nil {
		return nil, err
	}
	setlist.SetEntries(entries)

	return setlist, nil
}

// entries loads the entries for a setlist in position order.
func (r *SetlistRepository) entries(setlistID string) ([]models.SetlistEntry, error) {
	rows, err := r.db.Query(
		`SELECT id, setlist_id, song_id, position, encore, created_at FROM setlist_songs WHERE setlist_id = ? ORDER BY position ASC`,
		setlistID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var entries []models.SetlistEntry
	for rows.Next() {
		var entry models.SetlistEntry
		if err := rows.Scan(&entry.ID, &entry.SetlistID, &entry.SongID, &entry.Position, &entry.Encore, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setlist entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return entries, nil
}

// Update is a no-op placeholder; setlists change through AddEntry.
func (r *SetlistRepository) Update(setlist *models.Setlist) error {
	return fmt.Errorf("%w: setlist update", shared.ErrNotImplemented)
}

// Delete soft-deletes a setlist by ID
func (r *SetlistRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE setlists SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete setlist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: setlist %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves setlists matching the given criteria.
func (r *SetlistRepository) List(criteria map[string]any) ([]*models.Setlist, error) {
	query := `
		SELECT id, sequence, show_id, created_at, updated_at, deleted_at
		FROM setlists
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if showID, ok := criteria["show_id"].(string); ok && showID != "" {
		query += " AND show_id = ?"
		args = append(args, showID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var setlists []*models.Setlist
	for rows.Next() {
		var (
			id        string
			sequence  int
			showID    string
			createdAt time.Time
			updatedAt time.Time
			deletedAt sql.NullTime
		)
		if err := rows.Scan(&id, &sequence, &showID, &createdAt, &updatedAt, &deletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan setlist: %w", err)
		}

		setlist := models.NewSetlist(sequence, showID)
		setlist.SetID(id)
		setlist.SetCreatedAt(createdAt)
		setlist.SetUpdatedAt(updatedAt)
		setlists = append(setlists, setlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return setlists, nil
}
