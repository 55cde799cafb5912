package dues

import "errors"

var (
	// ErrInvalidAmount is returned when a tendered amount is zero,
	// negative, or not a finite number.
	ErrInvalidAmount = errors.New("dues: invalid payment amount")

	// ErrNoConfig is returned when no billing configuration exists, so
	// neither pending dues nor a late fee can be computed.
	ErrNoConfig = errors.New("dues: billing configuration unavailable")
)
