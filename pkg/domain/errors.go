package domain

import "errors"

var (
	// ErrNotFound reports a missing date, entry or item where the caller asked
	// for a hard failure instead of a no-op.
	ErrNotFound = errors.New("not found")
	// ErrInvalidIndex is returned when an entry index is outside the day's meals.
	ErrInvalidIndex = errors.New("invalid entry index")
	// ErrInvalidEntry is returned for food entries missing a name or carrying an
	// unknown meal type.
	ErrInvalidEntry = errors.New("invalid food entry")
	// ErrInvalidDate is returned for daily log keys that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)
