package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
)

type PayrollHandler interface {
	BasicPay(w http.ResponseWriter, r *http.Request)
	Bonus(w http.ResponseWriter, r *http.Request)
	Run(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService *payrollService.PayrollServiceImpl
	runWorkers     int
}

func NewPayrollHandler(service *payrollService.PayrollServiceImpl, runWorkers int) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: service,
		runWorkers:     runWorkers,
	}
}

// BasicPay implements PayrollHandler.
func (h *payrollHandlerImpl) BasicPay(w http.ResponseWriter, r *http.Request) {
	var req payroll.BasicPayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode basic pay request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.payrollService.ApportionBasicPay(req.BaseSalary, req.TotalDaysInMonth, req.TotalPayableShifts)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, payroll.MapBasicPayResponse(result))
}

// Bonus implements PayrollHandler.
func (h *payrollHandlerImpl) Bonus(w http.ResponseWriter, r *http.Request) {
	var req payroll.BonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode bonus request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result := h.payrollService.ComputeBonus(req.Attendance(), req.Salary, req.TierTable())
	response.Success(w, payroll.MapBonusResponse(result))
}

// Run implements PayrollHandler.
func (h *payrollHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	var req payroll.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode payroll run request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	inputs := make([]payroll.EmployeeRunInput, 0, len(req.Employees))
	for i := range req.Employees {
		inputs = append(inputs, req.Employees[i].ToEntity())
	}

	workers := req.Workers
	if workers == 0 {
		workers = h.runWorkers
	}

	summary := h.payrollService.RunBatch(r.Context(), inputs, workers)
	slog.Info("Payroll run completed",
		"run_id", summary.ID,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)

	response.Success(w, payroll.MapRunResponse(summary))
}
