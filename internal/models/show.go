package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ShowDateLayout is the canonical date format for show dates.
const ShowDateLayout = "2006-01-02"

// Show is a persisted concert: one artist at one venue on one date.
type Show struct {
	record
	artistID string
	venueID  string
	date     string
	tour     string
}

// NewShow creates a Show. The date must use [ShowDateLayout].
func NewShow(sequence int, artistID, venueID, date, tour string) *Show {
	return &Show{
		record:   newRecord(sequence),
		artistID: artistID,
		venueID:  venueID,
		date:     date,
		tour:     tour,
	}
}

func (s *Show) ArtistID() string { return s.artistID }
func (s *Show) VenueID() string  { return s.venueID }
func (s *Show) Date() string     { return s.date }
func (s *Show) Tour() string     { return s.tour }

// Validate checks show invariants before persistence.
func (s *Show) Validate() error {
	return validation.Errors{
		"artist_id": validation.Validate(s.artistID, validation.Required),
		"venue_id":  validation.Validate(s.venueID, validation.Required),
		"show_date": validation.Validate(s.date, validation.Required, validation.By(validDate)),
	}.Filter()
}

func validDate(value any) error {
	str, _ := value.(string)
	if _, err := time.Parse(ShowDateLayout, str); err != nil {
		return validation.NewError("validation_date", "must be a date in YYYY-MM-DD form")
	}
	return nil
}
