package payroll

import (
	"context"
	"math"
	"sync"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	compensationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/compensation"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const DefaultRunWorkers = 4

type PayrollServiceImpl struct {
	compensationSvc *compensationService.CompensationServiceImpl
}

func NewPayrollService(compensationSvc *compensationService.CompensationServiceImpl) *PayrollServiceImpl {
	return &PayrollServiceImpl{compensationSvc: compensationSvc}
}

// ApportionBasicPay converts a fixed monthly base salary into a per-day
// rate and the amount payable for the month's realized payable shifts.
// Base salary and month days are required inputs: their absence is a caller
// error, not something to paper over with zero.
func (s *PayrollServiceImpl) ApportionBasicPay(
	baseSalary *decimal.Decimal,
	totalDaysInMonth *int,
	totalPayableShifts float64,
) (payroll.BasicPayResult, error) {
	if baseSalary == nil {
		return payroll.BasicPayResult{}, payroll.ErrMissingBaseSalary
	}
	if totalDaysInMonth == nil {
		return payroll.BasicPayResult{}, payroll.ErrMissingMonthDays
	}

	result := payroll.BasicPayResult{
		BaseSalary:         *baseSalary,
		TotalDaysInMonth:   *totalDaysInMonth,
		TotalPayableShifts: totalPayableShifts,
	}

	perDay := decimal.Zero
	if *totalDaysInMonth > 0 {
		perDay = baseSalary.Div(decimal.NewFromInt(int64(*totalDaysInMonth)))
	}

	payable := perDay.Mul(decimal.NewFromFloat(totalPayableShifts))
	result.PerDayRate = perDay.Round(2)
	result.PayableAmount = payable.Round(2)
	result.Incentive = payable.Sub(*baseSalary).Round(2)

	return result, nil
}

// ComputeBonus derives an attendance percentage from the month's day
// counts, matches it against the tier table in order, and values the first
// matching tier. The salary-multiplier term is rounded before the flat
// amount is added; that ordering is load-bearing for existing bonus
// figures. FinalBonus starts equal to the calculated figure so a manual
// adjustment later never loses the original.
func (s *PayrollServiceImpl) ComputeBonus(
	att payroll.MonthAttendance,
	salary decimal.Decimal,
	tiers []payroll.BonusTier,
) payroll.BonusResult {
	numerator := att.PresentDays + att.ODDays
	denominator := numerator + att.AbsentDays + att.LeaveDays

	percentage := 0.0
	if denominator > 0 {
		percentage = math.Round(numerator/denominator*100*100) / 100
	}

	result := payroll.BonusResult{
		ID:                   uuid.NewString(),
		AttendancePercentage: percentage,
		CalculatedBonus:      decimal.Zero,
		FinalBonus:           decimal.Zero,
	}

	for i := range tiers {
		tier := tiers[i]
		if percentage < tier.MinPercentage || percentage > tier.MaxPercentage {
			continue
		}

		bonus := salary.Mul(tier.BonusMultiplier).Round(0).Add(tier.FlatAmount)
		result.AppliedTier = &tier
		result.CalculatedBonus = bonus
		result.FinalBonus = bonus
		break
	}

	return result
}

// RunBatch computes payroll for a batch of employees over a bounded worker
// pool. One employee's failure is recorded on its own item and never aborts
// the run. Results keep the input order.
func (s *PayrollServiceImpl) RunBatch(ctx context.Context, inputs []payroll.EmployeeRunInput, workers int) payroll.RunSummary {
	if workers <= 0 {
		workers = DefaultRunWorkers
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	summary := payroll.RunSummary{
		ID:    uuid.NewString(),
		Items: make([]payroll.RunItem, len(inputs)),
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				summary.Items[idx] = s.runEmployee(inputs[idx])
			}
		}()
	}

	dispatched := len(inputs)
	for idx := range inputs {
		if ctx.Err() != nil {
			dispatched = idx
			break
		}
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	// Anything not dispatched was cancelled.
	for idx := dispatched; idx < len(inputs); idx++ {
		summary.Items[idx] = payroll.RunItem{
			ID:         uuid.NewString(),
			EmployeeID: inputs[idx].EmployeeID,
			Err:        ctx.Err(),
		}
	}

	for _, item := range summary.Items {
		if item.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}

	return summary
}

func (s *PayrollServiceImpl) runEmployee(input payroll.EmployeeRunInput) payroll.RunItem {
	item := payroll.RunItem{
		ID:         uuid.NewString(),
		EmployeeID: input.EmployeeID,
	}

	if input.EmployeeID == "" {
		item.Err = payroll.ErrMissingEmployeeID
		return item
	}

	basicPay, err := s.ApportionBasicPay(input.BasicPay, input.TotalDaysInMonth, input.TotalPayableShifts)
	if err != nil {
		item.Err = err
		return item
	}
	item.BasicPay = &basicPay

	base := s.compensationSvc.ResolveLineItems(
		input.Masters,
		input.DepartmentID,
		*input.BasicPay,
		input.GrossSalary,
		input.Proration,
	)
	item.LineItems = s.compensationSvc.MergeOverrides(base, input.Overrides, input.IncludeMissing)

	totalAllowances := decimal.Zero
	totalDeductions := decimal.Zero
	for _, li := range item.LineItems {
		if li.Category == compensation.CategoryDeduction {
			totalDeductions = totalDeductions.Add(li.Amount)
		} else {
			totalAllowances = totalAllowances.Add(li.Amount)
		}
	}
	item.TotalAllowances = totalAllowances
	item.TotalDeductions = totalDeductions

	bonusAmount := decimal.Zero
	if input.BonusAttendance != nil && input.BonusSalary != nil {
		bonus := s.ComputeBonus(*input.BonusAttendance, *input.BonusSalary, input.BonusTiers)
		item.Bonus = &bonus
		bonusAmount = bonus.FinalBonus
	}

	item.GrossPay = basicPay.PayableAmount.Add(totalAllowances).Add(bonusAmount).Round(2)
	item.NetPay = item.GrossPay.Sub(totalDeductions).Round(2)

	return item
}
