package payroll

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== BASIC PAY DTOs ==========

type BasicPayRequest struct {
	BaseSalary         *decimal.Decimal `json:"base_salary,omitempty"`
	TotalDaysInMonth   *int             `json:"total_days_in_month,omitempty"`
	TotalPayableShifts float64          `json:"total_payable_shifts"`
}

func (r *BasicPayRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BaseSalary != nil && r.BaseSalary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "base_salary",
			Message: "base_salary must be non-negative",
		})
	}
	if r.TotalPayableShifts < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "total_payable_shifts",
			Message: "total_payable_shifts must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BasicPayResponse struct {
	BaseSalary         decimal.Decimal `json:"base_salary"`
	TotalDaysInMonth   int             `json:"total_days_in_month"`
	PerDayRate         decimal.Decimal `json:"per_day_rate"`
	TotalPayableShifts float64         `json:"total_payable_shifts"`
	PayableAmount      decimal.Decimal `json:"payable_amount"`
	Incentive          decimal.Decimal `json:"incentive"`
}

// MapBasicPayResponse converts an apportionment result to its transport shape.
func MapBasicPayResponse(r BasicPayResult) BasicPayResponse {
	return BasicPayResponse{
		BaseSalary:         r.BaseSalary,
		TotalDaysInMonth:   r.TotalDaysInMonth,
		PerDayRate:         r.PerDayRate,
		TotalPayableShifts: r.TotalPayableShifts,
		PayableAmount:      r.PayableAmount,
		Incentive:          r.Incentive,
	}
}

// ========== BONUS DTOs ==========

type BonusTierRequest struct {
	MinPercentage   float64         `json:"min_percentage"`
	MaxPercentage   float64         `json:"max_percentage"`
	BonusMultiplier decimal.Decimal `json:"bonus_multiplier"`
	FlatAmount      decimal.Decimal `json:"flat_amount"`
}

type BonusRequest struct {
	PresentDays float64            `json:"present_days"`
	ODDays      float64            `json:"od_days"`
	AbsentDays  float64            `json:"absent_days"`
	LeaveDays   float64            `json:"leave_days"`
	Salary      decimal.Decimal    `json:"salary"`
	Tiers       []BonusTierRequest `json:"tiers"`
}

func (r *BonusRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Salary.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "salary",
			Message: "salary must be non-negative",
		})
	}
	for i, tier := range r.Tiers {
		field := fmt.Sprintf("tiers[%d]", i)
		if tier.BonusMultiplier.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".bonus_multiplier",
				Message: "bonus_multiplier must be non-negative",
			})
		}
		if tier.FlatAmount.IsNegative() {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".flat_amount",
				Message: "flat_amount must be non-negative",
			})
		}
		if tier.MinPercentage > tier.MaxPercentage {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".min_percentage",
				Message: "min_percentage must not exceed max_percentage",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (r *BonusRequest) Attendance() MonthAttendance {
	return MonthAttendance{
		PresentDays: r.PresentDays,
		ODDays:      r.ODDays,
		AbsentDays:  r.AbsentDays,
		LeaveDays:   r.LeaveDays,
	}
}

func (r *BonusRequest) TierTable() []BonusTier {
	tiers := make([]BonusTier, 0, len(r.Tiers))
	for _, t := range r.Tiers {
		tiers = append(tiers, BonusTier{
			MinPercentage:   t.MinPercentage,
			MaxPercentage:   t.MaxPercentage,
			BonusMultiplier: t.BonusMultiplier,
			FlatAmount:      t.FlatAmount,
		})
	}
	return tiers
}

type BonusTierResponse struct {
	MinPercentage   float64         `json:"min_percentage"`
	MaxPercentage   float64         `json:"max_percentage"`
	BonusMultiplier decimal.Decimal `json:"bonus_multiplier"`
	FlatAmount      decimal.Decimal `json:"flat_amount"`
}

type BonusResponse struct {
	ID                   string             `json:"id"`
	AttendancePercentage float64            `json:"attendance_percentage"`
	AppliedTier          *BonusTierResponse `json:"applied_tier,omitempty"`
	CalculatedBonus      decimal.Decimal    `json:"calculated_bonus"`
	FinalBonus           decimal.Decimal    `json:"final_bonus"`
	IsManualOverride     bool               `json:"is_manual_override"`
}

// MapBonusResponse converts a bonus result to its transport shape.
func MapBonusResponse(r BonusResult) BonusResponse {
	resp := BonusResponse{
		ID:                   r.ID,
		AttendancePercentage: r.AttendancePercentage,
		CalculatedBonus:      r.CalculatedBonus,
		FinalBonus:           r.FinalBonus,
		IsManualOverride:     r.IsManualOverride,
	}
	if r.AppliedTier != nil {
		resp.AppliedTier = &BonusTierResponse{
			MinPercentage:   r.AppliedTier.MinPercentage,
			MaxPercentage:   r.AppliedTier.MaxPercentage,
			BonusMultiplier: r.AppliedTier.BonusMultiplier,
			FlatAmount:      r.AppliedTier.FlatAmount,
		}
	}
	return resp
}

// ========== BATCH RUN DTOs ==========

type EmployeeRunRequest struct {
	EmployeeID         string                           `json:"employee_id"`
	DepartmentID       string                           `json:"department_id,omitempty"`
	BasicPay           *decimal.Decimal                 `json:"basic_pay,omitempty"`
	GrossSalary        *decimal.Decimal                 `json:"gross_salary,omitempty"`
	TotalDaysInMonth   *int                             `json:"total_days_in_month,omitempty"`
	TotalPayableShifts float64                          `json:"total_payable_shifts"`
	Proration          *compensation.ProrationRequest   `json:"proration,omitempty"`
	Masters            []compensation.ItemMasterRequest `json:"masters,omitempty"`
	Overrides          []*compensation.OverrideRequest  `json:"overrides,omitempty"`
	IncludeMissing     *bool                            `json:"include_missing,omitempty"`
	BonusSalary        *decimal.Decimal                 `json:"bonus_salary,omitempty"`
	Bonus              *BonusRequest                    `json:"bonus,omitempty"`
}

func (r *EmployeeRunRequest) ToEntity() EmployeeRunInput {
	input := EmployeeRunInput{
		EmployeeID:         r.EmployeeID,
		DepartmentID:       r.DepartmentID,
		BasicPay:           r.BasicPay,
		GrossSalary:        r.GrossSalary,
		TotalDaysInMonth:   r.TotalDaysInMonth,
		TotalPayableShifts: r.TotalPayableShifts,
		IncludeMissing:     true,
		BonusSalary:        r.BonusSalary,
	}
	if r.IncludeMissing != nil {
		input.IncludeMissing = *r.IncludeMissing
	}
	if r.Proration != nil {
		p := r.Proration.ToEntity()
		input.Proration = &p
	}
	for i := range r.Masters {
		input.Masters = append(input.Masters, r.Masters[i].ToEntity())
	}
	for _, o := range r.Overrides {
		if o == nil {
			input.Overrides = append(input.Overrides, nil)
			continue
		}
		input.Overrides = append(input.Overrides, o.ToEntity())
	}
	if r.Bonus != nil {
		att := r.Bonus.Attendance()
		input.BonusAttendance = &att
		input.BonusTiers = r.Bonus.TierTable()
		if input.BonusSalary == nil {
			salary := r.Bonus.Salary
			input.BonusSalary = &salary
		}
	}
	return input
}

type RunRequest struct {
	Workers   int                  `json:"workers,omitempty"`
	Employees []EmployeeRunRequest `json:"employees"`
}

func (r *RunRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Employees) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employees",
			Message: "at least one employee is required",
		})
	}
	if r.Workers < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "workers",
			Message: "workers must be non-negative",
		})
	}
	for i, emp := range r.Employees {
		if validator.IsEmpty(emp.EmployeeID) {
			errs = append(errs, validator.ValidationError{
				Field:   fmt.Sprintf("employees[%d].employee_id", i),
				Message: "employee_id is required",
			})
		}
		if emp.Bonus != nil {
			if err := emp.Bonus.Validate(); err != nil {
				var nested validator.ValidationErrors
				if ok := asValidationErrors(err, &nested); ok {
					for _, ne := range nested {
						errs = append(errs, validator.ValidationError{
							Field:   fmt.Sprintf("employees[%d].bonus.%s", i, ne.Field),
							Message: ne.Message,
						})
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	v, ok := err.(validator.ValidationErrors)
	if ok {
		*target = v
	}
	return ok
}

type RunItemResponse struct {
	ID              string                          `json:"id"`
	EmployeeID      string                          `json:"employee_id"`
	LineItems       []compensation.LineItemResponse `json:"line_items,omitempty"`
	TotalAllowances decimal.Decimal                 `json:"total_allowances"`
	TotalDeductions decimal.Decimal                 `json:"total_deductions"`
	BasicPay        *BasicPayResponse               `json:"basic_pay,omitempty"`
	Bonus           *BonusResponse                  `json:"bonus,omitempty"`
	GrossPay        decimal.Decimal                 `json:"gross_pay"`
	NetPay          decimal.Decimal                 `json:"net_pay"`
	Error           *string                         `json:"error,omitempty"`
}

type RunResponse struct {
	ID        string            `json:"id"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Items     []RunItemResponse `json:"items"`
}

// MapRunResponse converts a batch run summary to its transport shape.
func MapRunResponse(s RunSummary) RunResponse {
	resp := RunResponse{
		ID:        s.ID,
		Succeeded: s.Succeeded,
		Failed:    s.Failed,
	}
	for _, item := range s.Items {
		ir := RunItemResponse{
			ID:              item.ID,
			EmployeeID:      item.EmployeeID,
			TotalAllowances: item.TotalAllowances,
			TotalDeductions: item.TotalDeductions,
			GrossPay:        item.GrossPay,
			NetPay:          item.NetPay,
		}
		for _, li := range item.LineItems {
			ir.LineItems = append(ir.LineItems, compensation.MapLineItemResponse(li))
		}
		if item.BasicPay != nil {
			bp := MapBasicPayResponse(*item.BasicPay)
			ir.BasicPay = &bp
		}
		if item.Bonus != nil {
			b := MapBonusResponse(*item.Bonus)
			ir.Bonus = &b
		}
		if item.Err != nil {
			msg := item.Err.Error()
			ir.Error = &msg
		}
		resp.Items = append(resp.Items, ir)
	}
	return resp
}
