package domain

import "errors"

// Classifier response errors. Both are per-record failures.
var (
	// ErrMissingFramingField indicates one of the three numeric framing fields is absent.
	ErrMissingFramingField = errors.New("classifier response is missing a numeric framing field")

	// ErrInvalidFraming indicates the response could not be decoded or holds unusable values.
	ErrInvalidFraming = errors.New("classifier response is invalid")
)

// ErrClassifierUnavailable indicates no classifier is configured for the run.
var ErrClassifierUnavailable = errors.New("classifier is not configured")
