package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Vote is one voter's vote on a setlist entry.
// A voter token may vote once per entry; the UNIQUE(setlist_song_id, voter_token)
// constraint is the backstop against concurrent duplicate votes.
type Vote struct {
	record
	setlistSongID string
	voterToken    string
	value         int
}

// NewVote creates a Vote for a setlist entry.
func NewVote(sequence int, setlistSongID, voterToken string, value int) *Vote {
	return &Vote{
		record:        newRecord(sequence),
		setlistSongID: setlistSongID,
		voterToken:    voterToken,
		value:         value,
	}
}

func (v *Vote) SetlistSongID() string { return v.setlistSongID }
func (v *Vote) VoterToken() string    { return v.voterToken }
func (v *Vote) Value() int            { return v.value }

// Validate checks vote invariants before persistence.
func (v *Vote) Validate() error {
	return validation.Errors{
		"setlist_song_id": validation.Validate(v.setlistSongID, validation.Required),
		"voter_token":     validation.Validate(v.voterToken, validation.Required, validation.Length(1, 128)),
		"value":           validation.Validate(v.value, validation.Required, validation.In(1, -1)),
	}.Filter()
}
