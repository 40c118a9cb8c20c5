package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	appHTTP "github.com/cmlabs-hris/payroll-engine-go/internal/handler/http"
	compensationService "github.com/cmlabs-hris/payroll-engine-go/internal/service/compensation"
	payrollService "github.com/cmlabs-hris/payroll-engine-go/internal/service/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/service/shift"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	shiftOpts := shift.Options{
		MaxShifts:  cfg.Engine.MaxShifts,
		DedupGap:   time.Duration(cfg.Engine.DedupGapMinutes) * time.Minute,
		PairWindow: time.Duration(cfg.Engine.PairWindowHours) * time.Hour,
	}
	compensationSvc := compensationService.NewCompensationService(nil)
	payrollSvc := payrollService.NewPayrollService(compensationSvc)

	shiftHandler := appHTTP.NewShiftHandler(shiftOpts)
	compensationHandler := appHTTP.NewCompensationHandler(compensationSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc, cfg.Engine.RunWorkers)

	router := appHTTP.NewRouter(
		cfg.App.Env,
		shiftHandler,
		compensationHandler,
		payrollHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
