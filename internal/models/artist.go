package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Artist is a persisted performing artist, optionally linked to a catalog record.
type Artist struct {
	record
	name       string
	externalID string
}

// NewArtist creates an Artist with the given name.
func NewArtist(sequence int, name, externalID string) *Artist {
	return &Artist{record: newRecord(sequence), name: name, externalID: externalID}
}

func (a *Artist) Name() string       { return a.name }
func (a *Artist) ExternalID() string { return a.externalID }

// Validate checks artist invariants before persistence.
func (a *Artist) Validate() error {
	return validation.Errors{
		"name":        validation.Validate(a.name, validation.Required, validation.Length(1, 512)),
		"external_id": validation.Validate(a.externalID, validation.Length(0, 64)),
	}.Filter()
}
