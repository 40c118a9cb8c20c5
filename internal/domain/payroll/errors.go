package payroll

import "errors"

var (
	ErrMissingBaseSalary = errors.New("employee has no base salary configured")
	ErrMissingMonthDays  = errors.New("attendance summary has no total days in month")
	ErrMissingEmployeeID = errors.New("employee id is required")
)
