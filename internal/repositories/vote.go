package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/encore/internal/models"
	"github.com/desertthunder/encore/internal/shared"
)

// VoteRepository implements models.Repository[*models.Vote].
//
// The UNIQUE(setlist_song_id, voter_token) constraint serializes concurrent
// duplicate votes the same way songs.external_id serializes backfill inserts.
type VoteRepository struct {
	db *sql.DB
}

// NewVoteRepository creates a new VoteRepository with the given database connection
func NewVoteRepository(db *sql.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Create inserts a new [models.Vote] with generated ID and sequence.
//
// Returns [shared.ErrDuplicate] when the voter already voted on the entry.
func (r *VoteRepository) Create(vote *models.Vote) error {
	sequence, err := NextSequence(r.db, "votes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	vote.SetID(id)
	vote.SetSequence(sequence)

	if err := vote.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO votes (id, sequence, setlist_song_id, voter_token, value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query, id, sequence, vote.SetlistSongID(), vote.VoterToken(), vote.Value(), vote.CreatedAt(), vote.UpdatedAt())
	if err != nil {
		return insertError("votes", err)
	}

	return nil
}

// Get retrieves a vote by ID, excluding soft-deleted votes
func (r *VoteRepository) Get(id string) (*models.Vote, error) {
	query := `
		SELECT id, sequence, setlist_song_id, voter_token, value, created_at, updated_at, deleted_at
		FROM votes
		WHERE id = ? AND deleted_at IS NULL
	`

	vote, err := scanVote(r.db.QueryRow(query, id).Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vote", shared.ErrNotFound)
	}
	return vote, err
}

// Count returns the vote total for a setlist entry.
func (r *VoteRepository) Count(setlistSongID string) (int, error) {
	var total int
	err := r.db.QueryRow(
		`SELECT COALESCE(SUM(value), 0) FROM votes WHERE setlist_song_id = ? AND deleted_at IS NULL`,
		setlistSongID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	return total, nil
}

// Update is a no-op placeholder; votes are immutable once cast.
func (r *VoteRepository) Update(vote *models.Vote) error {
	return fmt.Errorf("%w: vote update", shared.ErrNotImplemented)
}

// Delete soft-deletes a vote by ID
func (r *VoteRepository) Delete(id string) error {
	result, err := r.db.Exec(
		`UPDATE votes SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`,
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: vote %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all votes matching the given criteria, excluding soft-deleted votes
func (r *VoteRepository) List(criteria map[string]any) ([]*models.Vote, error) {
	query := `
		SELECT id, sequence, setlist_song_id, voter_token, value, created_at, updated_at, deleted_at
		FROM votes
		WHERE deleted_at IS NULL
	`
	args := []any{}

	if entryID, ok := criteria["setlist_song_id"].(string); ok && entryID != "" {
		query += " AND setlist_song_id = ?"
		args = append(args, entryID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}
	defer rows.Close()

	var votes []*models.Vote
	for rows.Next() {
		vote, err := scanVote(rows.Scan)
		if err != nil {
			return nil, err
		}
		votes = append(votes, vote)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrStoreRead, err)
	}

	return votes, nil
}

func scanVote(scan func(dest ...any) error) (*models.Vote, error) {
	var (
		id            string
		sequence      int
		setlistSongID string
		voterToken    string
		value         int
		createdAt     time.Time
		updatedAt     time.Time
		deletedAt     sql.NullTime
	)

	err := scan(&id, &sequence, &setlistSongID, &voterToken, &value, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan vote: %w", err)
	}

	vote := models.NewVote(sequence, setlistSongID, voterToken, value)
	vote.SetID(id)
	vote.SetCreatedAt(createdAt)
	vote.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		vote.SetDeletedAt(&deletedAt.Time)
	}

	return vote, nil
}
