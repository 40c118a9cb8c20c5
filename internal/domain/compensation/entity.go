package compensation

import (
	"github.com/shopspring/decimal"
)

// RuleKind enum
type RuleKind string

const (
	RuleKindFixed      RuleKind = "fixed"
	RuleKindPercentage RuleKind = "percentage"
)

// PercentageBase enum
type PercentageBase string

const (
	PercentageBaseBasic PercentageBase = "basic"
	PercentageBaseGross PercentageBase = "gross"
)

// Category enum
type Category string

const (
	CategoryAllowance Category = "allowance"
	CategoryDeduction Category = "deduction"
)

// Rule describes how a single compensation item is valued. Exactly one of
// Amount/Percentage must be set, matching Kind; the write-time DTO layer
// enforces that, the calculators treat a rule violating it as worth zero.
type Rule struct {
	Kind                 RuleKind
	Amount               *decimal.Decimal
	Percentage           *decimal.Decimal
	PercentageBase       PercentageBase
	MinAmount            *decimal.Decimal
	MaxAmount            *decimal.Decimal
	ProratedByAttendance bool
}

// WellFormed reports whether the rule satisfies the exactly-one-of
// amount/percentage invariant and carries a base when percentage-kind.
func (r Rule) WellFormed() bool {
	switch r.Kind {
	case RuleKindFixed:
		return r.Amount != nil && r.Percentage == nil
	case RuleKindPercentage:
		return r.Percentage != nil && r.Amount == nil &&
			(r.PercentageBase == PercentageBaseBasic || r.PercentageBase == PercentageBaseGross)
	}
	return false
}

// DepartmentRule binds a full replacement rule to one department.
type DepartmentRule struct {
	DepartmentID string
	Rule         Rule
}

// ItemMaster - HR-configured master definition of an allowance or deduction.
// Read-only to the engine.
type ItemMaster struct {
	Key             string
	Name            string
	Category        Category
	IsActive        bool
	GlobalRule      Rule
	DepartmentRules []DepartmentRule
}

// ProrationInput carries the month's categorized day counts used to scale
// fixed amounts. The engine trusts the caller; day sums are not validated
// against TotalDaysInMonth.
type ProrationInput struct {
	PresentDays      float64
	PaidLeaveDays    float64
	ODDays           float64
	TotalDaysInMonth int
}

// PaidDays is the proration numerator.
func (p ProrationInput) PaidDays() float64 {
	return p.PresentDays + p.PaidLeaveDays + p.ODDays
}

// ResolvedLineItem is one effective payslip line produced by rule
// resolution, amount calculation and override merging.
type ResolvedLineItem struct {
	MasterKey            string
	Name                 string
	Category             Category
	Amount               decimal.Decimal
	Kind                 RuleKind
	PercentageBase       PercentageBase
	ProratedByAttendance bool
	IsEmployeeOverride   bool
}

// LineItemOverride is an employee-specific partial adjustment. Nil fields
// leave the base item's value in place. OverrideAmount is a legacy alias
// for Amount kept for older payloads.
type LineItemOverride struct {
	MasterKey            string
	Name                 string
	Category             *Category
	Amount               *decimal.Decimal
	OverrideAmount       *decimal.Decimal
	Kind                 *RuleKind
	PercentageBase       *PercentageBase
	ProratedByAttendance *bool
}

// EffectiveAmount resolves the amount/legacy-alias pair.
func (o LineItemOverride) EffectiveAmount() *decimal.Decimal {
	if o.Amount != nil {
		return o.Amount
	}
	return o.OverrideAmount
}
