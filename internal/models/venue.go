package models

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Venue is a persisted concert venue.
type Venue struct {
	record
	name    string
	city    string
	country string
}

// NewVenue creates a Venue.
func NewVenue(sequence int, name, city, country string) *Venue {
	return &Venue{record: newRecord(sequence), name: name, city: city, country: country}
}

func (v *Venue) Name() string    { return v.name }
func (v *Venue) City() string    { return v.city }
func (v *Venue) Country() string { return v.country }

// Validate checks venue invariants before persistence.
func (v *Venue) Validate() error {
	return validation.Errors{
		"name":    validation.Validate(v.name, validation.Required, validation.Length(1, 512)),
		"city":    validation.Validate(v.city, validation.Required),
		"country": validation.Validate(v.country, validation.Required, validation.Length(2, 64)),
	}.Filter()
}
