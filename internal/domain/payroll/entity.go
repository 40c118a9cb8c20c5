package payroll

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

// BasicPayResult - apportionment of a fixed monthly base salary over the
// month's realized payable shifts.
type BasicPayResult struct {
	BaseSalary         decimal.Decimal
	TotalDaysInMonth   int
	PerDayRate         decimal.Decimal
	TotalPayableShifts float64
	PayableAmount      decimal.Decimal
	// Incentive is signed: positive means the employee realized more
	// payable units than the monthly baseline, negative is a shortfall.
	Incentive decimal.Decimal
}

// MonthAttendance - categorized day counts for one month, as supplied by
// the attendance summary provider.
type MonthAttendance struct {
	PresentDays float64
	ODDays      float64
	AbsentDays  float64
	LeaveDays   float64
}

// BonusTier is one percentage-range bucket of the bonus table. Tiers should
// not overlap, but the engine does not enforce that; the first matching
// tier in table order wins.
type BonusTier struct {
	MinPercentage float64
	MaxPercentage float64
	// BonusMultiplier is a fraction of salary (1.0 = full salary).
	BonusMultiplier decimal.Decimal
	FlatAmount      decimal.Decimal
}

// BonusResult - Computed bonus record
type BonusResult struct {
	ID                   string
	AttendancePercentage float64
	AppliedTier          *BonusTier
	CalculatedBonus      decimal.Decimal
	// FinalBonus starts equal to CalculatedBonus; HR may later adjust it
	// without losing the originally calculated figure.
	FinalBonus       decimal.Decimal
	IsManualOverride bool
}

// EmployeeRunInput is everything the engine needs to compute one
// employee's payroll line items for a period. All entities arrive already
// fetched; the engine does no I/O.
type EmployeeRunInput struct {
	EmployeeID         string
	DepartmentID       string
	BasicPay           *decimal.Decimal
	GrossSalary        *decimal.Decimal
	TotalDaysInMonth   *int
	TotalPayableShifts float64
	Proration          *compensation.ProrationInput
	Masters            []compensation.ItemMaster
	Overrides          []*compensation.LineItemOverride
	IncludeMissing     bool
	BonusSalary        *decimal.Decimal
	BonusAttendance    *MonthAttendance
	BonusTiers         []BonusTier
}

// RunItem is the outcome for a single employee within a batch run. Err is
// set instead of aborting the run when that employee's inputs are missing
// or invalid.
type RunItem struct {
	ID              string
	EmployeeID      string
	LineItems       []compensation.ResolvedLineItem
	TotalAllowances decimal.Decimal
	TotalDeductions decimal.Decimal
	BasicPay        *BasicPayResult
	Bonus           *BonusResult
	GrossPay        decimal.Decimal
	NetPay          decimal.Decimal
	Err             error
}

// RunSummary aggregates a batch run.
type RunSummary struct {
	ID        string
	Items     []RunItem
	Succeeded int
	Failed    int
}
