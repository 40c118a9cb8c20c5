package shift

import (
	"math"
	"sort"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
)

const (
	DefaultMaxShifts  = 3
	DefaultDedupGap   = 60 * time.Minute
	DefaultPairWindow = 24 * time.Hour
)

// Options tunes shift detection. Zero fields fall back to the defaults.
type Options struct {
	MaxShifts  int
	DedupGap   time.Duration
	PairWindow time.Duration
}

type ShiftServiceImpl struct {
	opts Options
}

func NewShiftService(opts Options) *ShiftServiceImpl {
	if opts.MaxShifts <= 0 {
		opts.MaxShifts = DefaultMaxShifts
	}
	if opts.DedupGap <= 0 {
		opts.DedupGap = DefaultDedupGap
	}
	if opts.PairWindow <= 0 {
		opts.PairWindow = DefaultPairWindow
	}
	return &ShiftServiceImpl{opts: opts}
}

// DetectShifts pairs a day's raw punches into ordered shifts. Punches may
// arrive in any order; the result depends only on their timestamps. An IN
// punch seeds a shift only when its calendar date (in date's location)
// matches the target date. OUT punches are considered regardless of date
// because an overnight shift clocks out after midnight.
func (s *ShiftServiceImpl) DetectShifts(punches []attendance.PunchEvent, date time.Time) []attendance.Shift {
	sorted := make([]attendance.PunchEvent, len(punches))
	copy(sorted, punches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	loc := date.Location()
	ty, tm, td := date.Date()

	var ins, outs []attendance.PunchEvent
	for _, p := range sorted {
		switch p.Direction {
		case attendance.DirectionIn:
			y, m, d := p.Timestamp.In(loc).Date()
			if y == ty && m == tm && d == td {
				ins = append(ins, p)
			}
		case attendance.DirectionOut:
			outs = append(outs, p)
		}
	}

	// Drop double-punch noise: keep an IN only when it is at least the
	// dedup gap after the last kept IN.
	var kept []attendance.PunchEvent
	for _, in := range ins {
		if len(kept) == 0 || in.Timestamp.Sub(kept[len(kept)-1].Timestamp) >= s.opts.DedupGap {
			kept = append(kept, in)
		}
	}
	if len(kept) > s.opts.MaxShifts {
		kept = kept[:s.opts.MaxShifts]
	}

	shifts := make([]attendance.Shift, 0, len(kept))
	usedOut := make([]bool, len(outs))

	for seq, in := range kept {
		shift := attendance.Shift{
			SequenceNumber: seq + 1,
			InTime:         in.Timestamp,
			InEventID:      in.SourceID,
			Status:         attendance.ShiftIncomplete,
		}

		// Earliest unpaired OUT strictly after the IN, within the pairing
		// window. An OUT pairs with at most one IN.
		for i, out := range outs {
			if usedOut[i] {
				continue
			}
			if !out.Timestamp.After(in.Timestamp) {
				continue
			}
			if out.Timestamp.Sub(in.Timestamp) > s.opts.PairWindow {
				continue
			}

			usedOut[i] = true
			outTime := out.Timestamp
			outID := out.SourceID
			shift.OutTime = &outTime
			shift.OutEventID = &outID
			shift.Status = attendance.ShiftComplete
			shift.DurationMinutes = int(math.Round(outTime.Sub(in.Timestamp).Minutes()))
			shift.WorkingHours = round2(float64(shift.DurationMinutes) / 60)
			break
		}

		shifts = append(shifts, shift)
	}

	return shifts
}

// AggregateDay reduces one day's shifts to totals. Hour totals sum only
// complete shifts and are rounded after summation, not per shift. First/last
// times are read positionally, so the caller must supply shifts in pairing
// order.
func (s *ShiftServiceImpl) AggregateDay(shifts []attendance.Shift) attendance.DailyTotals {
	totals := attendance.DailyTotals{ShiftCount: len(shifts)}
	if len(shifts) == 0 {
		return totals
	}

	var working, overtime, extra float64
	for _, sh := range shifts {
		if sh.Status != attendance.ShiftComplete {
			continue
		}
		working += sh.WorkingHours
		overtime += sh.OvertimeHours
		extra += sh.ExtraHours
	}
	totals.TotalWorkingHours = round2(working)
	totals.TotalOvertimeHours = round2(overtime)
	totals.TotalExtraHours = round2(extra)

	first := shifts[0].InTime
	totals.FirstInTime = &first
	totals.LastOutTime = shifts[len(shifts)-1].OutTime

	return totals
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
