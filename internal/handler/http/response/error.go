package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidTargetDate):
		BadRequest(w, "Target date must be a valid calendar date", nil)
	case errors.Is(err, attendance.ErrNoUsablePunches):
		BadRequest(w, "No usable punch events after normalization", nil)

	// Payroll domain errors
	case errors.Is(err, payroll.ErrMissingBaseSalary):
		BadRequest(w, "Employee has no base salary configured", nil)
	case errors.Is(err, payroll.ErrMissingMonthDays):
		BadRequest(w, "Attendance summary has no total days in month", nil)
	case errors.Is(err, payroll.ErrMissingEmployeeID):
		BadRequest(w, "Employee id is required", nil)

	// Compensation domain errors
	case errors.Is(err, compensation.ErrItemMasterNotFound):
		NotFound(w, "Compensation item master not found")
	case errors.Is(err, compensation.ErrMalformedRule):
		BadRequest(w, "Compensation rule must set exactly one of amount or percentage", nil)

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
