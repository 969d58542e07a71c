package models

import "errors"

var (
	// ErrNotFound is returned when a record is unknown to every storage tier.
	ErrNotFound = errors.New("not found")

	// ErrInvalidSeed is returned when a seed identifier is empty or looks like a URL.
	ErrInvalidSeed = errors.New("invalid seed identifier")

	// ErrInvalidTransition is returned when a job status change would move backwards
	// or leave a terminal state.
	ErrInvalidTransition = errors.New("invalid job status transition")

	// ErrInvalidInput is returned when caller-supplied data fails validation.
	ErrInvalidInput = errors.New("invalid input")
)
