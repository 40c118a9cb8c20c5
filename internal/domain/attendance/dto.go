package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// ========================================
// PUNCH INGESTION DTOs
// ========================================

// RawPunch is a punch row as delivered by a biometric device export.
// Devices disagree on how they encode direction: punch_state may be a JSON
// number (0 = in, 1 = out) or a string ("0", "1", "in", "out", "IN", "OUT"),
// and some exports only carry a type column. Normalization happens here,
// once, so the pairing engine never sees this mess.
type RawPunch struct {
	Timestamp  string      `json:"timestamp"`
	PunchState interface{} `json:"punch_state,omitempty"`
	Type       string      `json:"type,omitempty"`
	SourceID   string      `json:"source_id"`
}

// NormalizePunches converts raw device rows into clean PunchEvents.
// Rows with an unparseable timestamp or an unrecognized direction are
// skipped, not failed; the skipped count is returned so the caller can log
// it.
func NormalizePunches(raw []RawPunch) ([]PunchEvent, int) {
	events := make([]PunchEvent, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		ts, ok := validator.IsValidDateTime(r.Timestamp)
		if !ok {
			skipped++
			continue
		}

		dir, ok := normalizeDirection(r.PunchState, r.Type)
		if !ok {
			skipped++
			continue
		}

		events = append(events, PunchEvent{
			Timestamp: ts,
			Direction: dir,
			SourceID:  r.SourceID,
		})
	}

	return events, skipped
}

func normalizeDirection(state interface{}, typ string) (PunchDirection, bool) {
	switch v := state.(type) {
	case float64:
		// JSON numbers decode as float64
		if v == 0 {
			return DirectionIn, true
		}
		if v == 1 {
			return DirectionOut, true
		}
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "0", "in", "checkin", "check-in":
			return DirectionIn, true
		case "1", "out", "checkout", "check-out":
			return DirectionOut, true
		}
	}

	switch strings.ToLower(strings.TrimSpace(typ)) {
	case "in", "checkin", "check-in":
		return DirectionIn, true
	case "out", "checkout", "check-out":
		return DirectionOut, true
	}

	return "", false
}

// ========================================
// SHIFT DETECTION DTOs
// ========================================

type DetectShiftsRequest struct {
	Date      string     `json:"date"`
	Punches   []RawPunch `json:"punches"`
	MaxShifts *int       `json:"max_shifts,omitempty"`
}

func (r *DetectShiftsRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.MaxShifts != nil && *r.MaxShifts < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "max_shifts",
			Message: "max_shifts must be at least 1",
		})
	}

	for i, p := range r.Punches {
		if validator.IsEmpty(p.Timestamp) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("punches[%d].timestamp", i),
				Message: "timestamp is required",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ShiftResponse struct {
	SequenceNumber  int     `json:"sequence_number"`
	InTime          string  `json:"in_time"`
	OutTime         *string `json:"out_time,omitempty"`
	InEventID       string  `json:"in_event_id"`
	OutEventID      *string `json:"out_event_id,omitempty"`
	Status          string  `json:"status"`
	DurationMinutes int     `json:"duration_minutes"`
	WorkingHours    float64 `json:"working_hours"`
}

type DailyTotalsResponse struct {
	ShiftCount         int     `json:"shift_count"`
	TotalWorkingHours  float64 `json:"total_working_hours"`
	TotalOvertimeHours float64 `json:"total_overtime_hours"`
	TotalExtraHours    float64 `json:"total_extra_hours"`
	FirstInTime        *string `json:"first_in_time,omitempty"`
	LastOutTime        *string `json:"last_out_time,omitempty"`
}

type DetectShiftsResponse struct {
	Date           string              `json:"date"`
	Shifts         []ShiftResponse     `json:"shifts"`
	DailyTotals    DailyTotalsResponse `json:"daily_totals"`
	SkippedPunches int                 `json:"skipped_punches,omitempty"`
}

// MapShiftResponse converts a detected shift to its transport shape.
func MapShiftResponse(s Shift) ShiftResponse {
	return ShiftResponse{
		SequenceNumber:  s.SequenceNumber,
		InTime:          s.InTime.Format(time.RFC3339),
		OutTime:         timePtrToString(s.OutTime),
		InEventID:       s.InEventID,
		OutEventID:      s.OutEventID,
		Status:          string(s.Status),
		DurationMinutes: s.DurationMinutes,
		WorkingHours:    s.WorkingHours,
	}
}

// MapDailyTotalsResponse converts daily totals to their transport shape.
func MapDailyTotalsResponse(t DailyTotals) DailyTotalsResponse {
	return DailyTotalsResponse{
		ShiftCount:         t.ShiftCount,
		TotalWorkingHours:  t.TotalWorkingHours,
		TotalOvertimeHours: t.TotalOvertimeHours,
		TotalExtraHours:    t.TotalExtraHours,
		FirstInTime:        timePtrToString(t.FirstInTime),
		LastOutTime:        timePtrToString(t.LastOutTime),
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
