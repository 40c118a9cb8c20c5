package compensation

import (
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== RULE DTOs ==========

type RuleRequest struct {
	Kind                 string           `json:"kind"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	Percentage           *decimal.Decimal `json:"percentage,omitempty"`
	PercentageBase       *string          `json:"percentage_base,omitempty"`
	MinAmount            *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount            *decimal.Decimal `json:"max_amount,omitempty"`
	ProratedByAttendance bool             `json:"prorated_by_attendance,omitempty"`
}

// Validate enforces the rule invariant at the ingestion boundary. The
// calculators stay silent on malformed rules; this is where bad
// configuration gets rejected loudly.
func (r *RuleRequest) validate(field string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	switch r.Kind {
	case string(RuleKindFixed):
		if r.Amount == nil {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".amount",
				Message: "amount is required when kind is 'fixed'",
			})
		}
		if r.Percentage != nil {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".percentage",
				Message: "percentage must not be set when kind is 'fixed'",
			})
		}
	case string(RuleKindPercentage):
		if r.Percentage == nil {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".percentage",
				Message: "percentage is required when kind is 'percentage'",
			})
		}
		if r.Amount != nil {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".amount",
				Message: "amount must not be set when kind is 'percentage'",
			})
		}
		if r.PercentageBase == nil || !validator.IsInSlice(*r.PercentageBase, []string{string(PercentageBaseBasic), string(PercentageBaseGross)}) {
			errs = append(errs, validator.ValidationError{
				Field:   field + ".percentage_base",
				Message: "percentage_base must be 'basic' or 'gross'",
			})
		}
	default:
		errs = append(errs, validator.ValidationError{
			Field:   field + ".kind",
			Message: "kind must be 'fixed' or 'percentage'",
		})
	}

	if r.MinAmount != nil && r.MaxAmount != nil && r.MinAmount.GreaterThan(*r.MaxAmount) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".min_amount",
			Message: "min_amount must not exceed max_amount",
		})
	}

	return errs
}

func (r *RuleRequest) ToEntity() Rule {
	rule := Rule{
		Kind:                 RuleKind(r.Kind),
		Amount:               r.Amount,
		Percentage:           r.Percentage,
		MinAmount:            r.MinAmount,
		MaxAmount:            r.MaxAmount,
		ProratedByAttendance: r.ProratedByAttendance,
	}
	if r.PercentageBase != nil {
		rule.PercentageBase = PercentageBase(*r.PercentageBase)
	}
	return rule
}

// ========== MASTER DTOs ==========

type DepartmentRuleRequest struct {
	DepartmentID string      `json:"department_id"`
	Rule         RuleRequest `json:"rule"`
}

type ItemMasterRequest struct {
	Key             string                  `json:"key"`
	Name            string                  `json:"name"`
	Category        string                  `json:"category"`
	IsActive        *bool                   `json:"is_active,omitempty"`
	GlobalRule      RuleRequest             `json:"global_rule"`
	DepartmentRules []DepartmentRuleRequest `json:"department_rules,omitempty"`
}

func (r *ItemMasterRequest) validate(field string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".name",
			Message: "name is required",
		})
	}
	if !validator.IsInSlice(r.Category, []string{string(CategoryAllowance), string(CategoryDeduction)}) {
		errs = append(errs, validator.ValidationError{
			Field:   field + ".category",
			Message: "category must be 'allowance' or 'deduction'",
		})
	}

	errs = append(errs, r.GlobalRule.validate(field+".global_rule")...)

	seen := make(map[string]bool)
	for i, dr := range r.DepartmentRules {
		drField := fmt.Sprintf("%s.department_rules[%d]", field, i)
		if validator.IsEmpty(dr.DepartmentID) {
			errs = append(errs, validator.ValidationError{
				Field:   drField + ".department_id",
				Message: "department_id is required",
			})
		} else if seen[dr.DepartmentID] {
			errs = append(errs, validator.ValidationError{
				Field:   drField + ".department_id",
				Message: "department_id must be unique within department_rules",
			})
		}
		seen[dr.DepartmentID] = true
		errs = append(errs, dr.Rule.validate(drField+".rule")...)
	}

	return errs
}

func (r *ItemMasterRequest) ToEntity() ItemMaster {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}

	master := ItemMaster{
		Key:        r.Key,
		Name:       r.Name,
		Category:   Category(r.Category),
		IsActive:   isActive,
		GlobalRule: r.GlobalRule.ToEntity(),
	}
	for _, dr := range r.DepartmentRules {
		master.DepartmentRules = append(master.DepartmentRules, DepartmentRule{
			DepartmentID: dr.DepartmentID,
			Rule:         dr.Rule.ToEntity(),
		})
	}
	return master
}

// ========== RESOLUTION DTOs ==========

type ProrationRequest struct {
	PresentDays      float64 `json:"present_days"`
	PaidLeaveDays    float64 `json:"paid_leave_days"`
	ODDays           float64 `json:"od_days"`
	TotalDaysInMonth int     `json:"total_days_in_month"`
}

func (r *ProrationRequest) ToEntity() ProrationInput {
	return ProrationInput{
		PresentDays:      r.PresentDays,
		PaidLeaveDays:    r.PaidLeaveDays,
		ODDays:           r.ODDays,
		TotalDaysInMonth: r.TotalDaysInMonth,
	}
}

type OverrideRequest struct {
	MasterKey            string           `json:"master_key,omitempty"`
	Name                 string           `json:"name,omitempty"`
	Category             *string          `json:"category,omitempty"`
	Amount               *decimal.Decimal `json:"amount,omitempty"`
	OverrideAmount       *decimal.Decimal `json:"override_amount,omitempty"`
	Kind                 *string          `json:"kind,omitempty"`
	PercentageBase       *string          `json:"percentage_base,omitempty"`
	ProratedByAttendance *bool            `json:"prorated_by_attendance,omitempty"`
}

func (r *OverrideRequest) ToEntity() *LineItemOverride {
	o := &LineItemOverride{
		MasterKey:            r.MasterKey,
		Name:                 r.Name,
		Amount:               r.Amount,
		OverrideAmount:       r.OverrideAmount,
		ProratedByAttendance: r.ProratedByAttendance,
	}
	if r.Category != nil {
		c := Category(*r.Category)
		o.Category = &c
	}
	if r.Kind != nil {
		k := RuleKind(*r.Kind)
		o.Kind = &k
	}
	if r.PercentageBase != nil {
		b := PercentageBase(*r.PercentageBase)
		o.PercentageBase = &b
	}
	return o
}

type ResolveLineItemsRequest struct {
	DepartmentID   string              `json:"department_id,omitempty"`
	BasicPay       decimal.Decimal     `json:"basic_pay"`
	GrossSalary    *decimal.Decimal    `json:"gross_salary,omitempty"`
	Proration      *ProrationRequest   `json:"proration,omitempty"`
	Masters        []ItemMasterRequest `json:"masters"`
	Overrides      []*OverrideRequest  `json:"overrides,omitempty"`
	IncludeMissing *bool               `json:"include_missing,omitempty"`
}

func (r *ResolveLineItemsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.BasicPay.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "basic_pay",
			Message: "basic_pay must be non-negative",
		})
	}
	for i := range r.Masters {
		errs = append(errs, r.Masters[i].validate(fmt.Sprintf("masters[%d]", i))...)
	}
	if r.Proration != nil && r.Proration.TotalDaysInMonth < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "proration.total_days_in_month",
			Message: "total_days_in_month must be non-negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LineItemResponse struct {
	MasterKey            string          `json:"master_key,omitempty"`
	Name                 string          `json:"name"`
	Category             string          `json:"category,omitempty"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 string          `json:"kind"`
	PercentageBase       string          `json:"percentage_base,omitempty"`
	ProratedByAttendance bool            `json:"prorated_by_attendance"`
	IsEmployeeOverride   bool            `json:"is_employee_override"`
}

type ResolveLineItemsResponse struct {
	LineItems       []LineItemResponse `json:"line_items"`
	TotalAllowances decimal.Decimal    `json:"total_allowances"`
	TotalDeductions decimal.Decimal    `json:"total_deductions"`
}

// MapLineItemResponse converts a resolved line item to its transport shape.
func MapLineItemResponse(item ResolvedLineItem) LineItemResponse {
	return LineItemResponse{
		MasterKey:            item.MasterKey,
		Name:                 item.Name,
		Category:             string(item.Category),
		Amount:               item.Amount,
		Kind:                 string(item.Kind),
		PercentageBase:       string(item.PercentageBase),
		ProratedByAttendance: item.ProratedByAttendance,
		IsEmployeeOverride:   item.IsEmployeeOverride,
	}
}
