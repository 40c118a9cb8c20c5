package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/service/shift"
)

type ShiftHandler interface {
	Detect(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	opts shift.Options
}

func NewShiftHandler(opts shift.Options) ShiftHandler {
	return &shiftHandlerImpl{opts: opts}
}

// Detect implements ShiftHandler.
func (h *shiftHandlerImpl) Detect(w http.ResponseWriter, r *http.Request) {
	var req attendance.DetectShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode detect shifts request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.HandleError(w, attendance.ErrInvalidTargetDate)
		return
	}

	events, skipped := attendance.NormalizePunches(req.Punches)
	if skipped > 0 {
		slog.Warn("Skipped unrecognized punch events", "date", req.Date, "skipped", skipped)
	}
	if len(req.Punches) > 0 && len(events) == 0 {
		response.HandleError(w, attendance.ErrNoUsablePunches)
		return
	}

	opts := h.opts
	if req.MaxShifts != nil {
		opts.MaxShifts = *req.MaxShifts
	}
	svc := shift.NewShiftService(opts)

	shifts := svc.DetectShifts(events, date)
	totals := svc.AggregateDay(shifts)

	resp := attendance.DetectShiftsResponse{
		Date:           req.Date,
		Shifts:         make([]attendance.ShiftResponse, 0, len(shifts)),
		DailyTotals:    attendance.MapDailyTotalsResponse(totals),
		SkippedPunches: skipped,
	}
	for _, s := range shifts {
		resp.Shifts = append(resp.Shifts, attendance.MapShiftResponse(s))
	}

	response.Success(w, resp)
}
