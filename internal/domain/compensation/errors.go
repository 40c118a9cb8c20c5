package compensation

import "errors"

// Compensation domain errors
var (
	ErrItemMasterNotFound = errors.New("compensation item master not found")
	ErrMalformedRule      = errors.New("compensation rule must set exactly one of amount or percentage")
)
