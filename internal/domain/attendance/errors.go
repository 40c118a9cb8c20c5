package attendance

import "errors"

// Attendance domain errors
var (
	ErrInvalidTargetDate = errors.New("target date is not a valid calendar date")
	ErrNoUsablePunches   = errors.New("no usable punch events after normalization")
)
