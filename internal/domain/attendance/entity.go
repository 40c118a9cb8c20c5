package attendance

import (
	"time"
)

// PunchDirection is the normalized direction of a biometric punch event.
// Raw device payloads are converted to this enum at the ingestion boundary
// (see NormalizePunches) so pairing only ever sees a clean tag.
type PunchDirection string

const (
	DirectionIn  PunchDirection = "in"
	DirectionOut PunchDirection = "out"
)

// PunchEvent is a single normalized biometric punch. Events carry no
// ordering guarantee and are sorted before processing.
type PunchEvent struct {
	Timestamp time.Time
	Direction PunchDirection
	SourceID  string
}

type ShiftStatus string

const (
	ShiftComplete   ShiftStatus = "complete"
	ShiftIncomplete ShiftStatus = "incomplete"
)

// Shift is one paired IN/OUT work interval detected for a target date.
// Shifts are derived and recomputed on every detection run; persistence
// belongs to the caller.
type Shift struct {
	SequenceNumber  int
	InTime          time.Time
	OutTime         *time.Time
	InEventID       string
	OutEventID      *string
	Status          ShiftStatus
	DurationMinutes int
	WorkingHours    float64

	// Set by the scheduling layer when comparing against the employee's
	// work schedule; detection leaves them zero.
	OvertimeHours float64
	ExtraHours    float64
}

// DailyTotals aggregates one day's shifts.
type DailyTotals struct {
	ShiftCount         int
	TotalWorkingHours  float64
	TotalOvertimeHours float64
	TotalExtraHours    float64
	FirstInTime        *time.Time
	LastOutTime        *time.Time
}
