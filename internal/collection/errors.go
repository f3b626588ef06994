package collection

import "errors"

var (
	// ErrNotFound is returned when an entry does not exist for the given
	// user and list kind.
	ErrNotFound = errors.New("entry not found")

	// ErrInvalidTarget is returned for a manual position that is not a
	// number. Out-of-range numeric targets are clamped, not rejected.
	ErrInvalidTarget = errors.New("invalid target position")
)
