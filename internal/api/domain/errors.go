package domain

import "errors"

var (
	// ErrJobNotFound is returned when a job cannot be found in the store
	ErrJobNotFound = errors.New("job not found")

	// ErrInvalidStatusClass is returned for an unrecognized status class
	ErrInvalidStatusClass = errors.New("invalid status class")
)
