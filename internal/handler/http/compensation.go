package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	compensationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/compensation"
	"github.com/shopspring/decimal"
)

type CompensationHandler interface {
	Resolve(w http.ResponseWriter, r *http.Request)
}

type compensationHandlerImpl struct {
	compensationService *compensationService.CompensationServiceImpl
}

func NewCompensationHandler(compensationService *compensationService.CompensationServiceImpl) CompensationHandler {
	return &compensationHandlerImpl{
		compensationService: compensationService,
	}
}

// Resolve implements CompensationHandler. It runs the full resolution
// pipeline for one employee: per-master rule resolution, amount
// calculation, then the employee override merge.
func (h *compensationHandlerImpl) Resolve(w http.ResponseWriter, r *http.Request) {
	var req compensation.ResolveLineItemsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode resolve line items request", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	masters := make([]compensation.ItemMaster, 0, len(req.Masters))
	for i := range req.Masters {
		masters = append(masters, req.Masters[i].ToEntity())
	}

	var proration *compensation.ProrationInput
	if req.Proration != nil {
		p := req.Proration.ToEntity()
		proration = &p
	}

	overrides := make([]*compensation.LineItemOverride, 0, len(req.Overrides))
	for _, o := range req.Overrides {
		if o == nil {
			overrides = append(overrides, nil)
			continue
		}
		overrides = append(overrides, o.ToEntity())
	}

	includeMissing := true
	if req.IncludeMissing != nil {
		includeMissing = *req.IncludeMissing
	}

	base := h.compensationService.ResolveLineItems(masters, req.DepartmentID, req.BasicPay, req.GrossSalary, proration)
	items := h.compensationService.MergeOverrides(base, overrides, includeMissing)

	resp := compensation.ResolveLineItemsResponse{
		LineItems:       make([]compensation.LineItemResponse, 0, len(items)),
		TotalAllowances: decimal.Zero,
		TotalDeductions: decimal.Zero,
	}
	for _, item := range items {
		resp.LineItems = append(resp.LineItems, compensation.MapLineItemResponse(item))
		if item.Category == compensation.CategoryDeduction {
			resp.TotalDeductions = resp.TotalDeductions.Add(item.Amount)
		} else {
			resp.TotalAllowances = resp.TotalAllowances.Add(item.Amount)
		}
	}

	response.Success(w, resp)
}
