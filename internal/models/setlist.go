package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Setlist is the ordered list of songs performed at a show.
// At most one live setlist exists per show.
type Setlist struct {
	record
	showID  string
	entries []SetlistEntry
}

// SetlistEntry is one positioned song within a setlist.
// Position is 1-based and unique within the setlist.
type SetlistEntry struct {
	ID        string
	SetlistID string
	SongID    string
	Position  int
	Encore    bool
	CreatedAt time.Time
}

// NewSetlist creates an empty Setlist for a show.
func NewSetlist(sequence int, showID string) *Setlist {
	return &Setlist{record: newRecord(sequence), showID: showID}
}

func (s *Setlist) ShowID() string          { return s.showID }
func (s *Setlist) Entries() []SetlistEntry { return s.entries }

// SetEntries replaces the in-memory entry list, used when hydrating from the store.
func (s *Setlist) SetEntries(entries []SetlistEntry) { s.entries = entries }

// Validate checks setlist invariants before persistence.
func (s *Setlist) Validate() error {
	if err := (validation.Errors{
		"show_id": validation.Validate(s.showID, validation.Required),
	}.Filter()); err != nil {
		return err
	}

	seen := make(map[int]bool, len(s.entries))
	for _, entry := range s.entries {
		if entry.Position < 1 {
			return validation.NewError("validation_position", "entry positions start at 1")
		}
		if seen[entry.Position] {
			return validation.NewError("validation_position", "duplicate entry position")
		}
		seen[entry.Position] = true
	}
	return nil
}
