package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDecPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCompensationHandler_Resolve_Success(t *testing.T) {
	handler := newTestCompensationHandler()

	req := compensation.ResolveLineItemsRequest{
		BasicPay: decimal.RequireFromString("26000"),
		Proration: &compensation.ProrationRequest{
			PresentDays:      20,
			PaidLeaveDays:    2,
			ODDays:           3,
			TotalDaysInMonth: 30,
		},
		Masters: []compensation.ItemMasterRequest{
			{
				Key:      "transport",
				Name:     "Transport Allowance",
				Category: "allowance",
				GlobalRule: compensation.RuleRequest{
					Kind:                 "fixed",
					Amount:               testDecPtr("3000"),
					ProratedByAttendance: true,
				},
			},
			{
				Key:      "pf",
				Name:     "Provident Fund",
				Category: "deduction",
				GlobalRule: compensation.RuleRequest{
					Kind:                 "fixed",
					Amount:               testDecPtr("600"),
					ProratedByAttendance: true,
				},
			},
		},
	}

	w, env := postJSON(t, handler.Resolve, "/api/v1/compensation/resolve", req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.True(t, env.Success)

	var resp compensation.ResolveLineItemsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.LineItems, 2)
	assert.True(t, resp.LineItems[0].Amount.Equal(decimal.RequireFromString("2500")),
		"got %s", resp.LineItems[0].Amount)
	assert.True(t, resp.LineItems[1].Amount.Equal(decimal.RequireFromString("500")),
		"got %s", resp.LineItems[1].Amount)
	assert.True(t, resp.TotalAllowances.Equal(decimal.RequireFromString("2500")))
	assert.True(t, resp.TotalDeductions.Equal(decimal.RequireFromString("500")))
}

func TestCompensationHandler_Resolve_OverrideApplied(t *testing.T) {
	handler := newTestCompensationHandler()

	req := compensation.ResolveLineItemsRequest{
		BasicPay: decimal.RequireFromString("26000"),
		Masters: []compensation.ItemMasterRequest{
			{
				Key:      "transport",
				Name:     "Transport Allowance",
				Category: "allowance",
				GlobalRule: compensation.RuleRequest{
					Kind:   "fixed",
					Amount: testDecPtr("3000"),
				},
			},
		},
		Overrides: []*compensation.OverrideRequest{
			{MasterKey: "transport", Amount: testDecPtr("3500")},
		},
	}

	w, env := postJSON(t, handler.Resolve, "/api/v1/compensation/resolve", req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp compensation.ResolveLineItemsResponse
	require.NoError(t, json.Unmarshal(env.Data, &resp))
	require.Len(t, resp.LineItems, 1)
	assert.True(t, resp.LineItems[0].Amount.Equal(decimal.RequireFromString("3500")))
	assert.True(t, resp.LineItems[0].IsEmployeeOverride)
}

func TestCompensationHandler_Resolve_ValidationError(t *testing.T) {
	handler := newTestCompensationHandler()

	req := compensation.ResolveLineItemsRequest{
		BasicPay: decimal.RequireFromString("-1"),
		Masters: []compensation.ItemMasterRequest{
			{
				Key:        "transport",
				Name:       "Transport Allowance",
				Category:   "allowance",
				GlobalRule: compensation.RuleRequest{Kind: "fixed"},
			},
		},
	}

	w, env := postJSON(t, handler.Resolve, "/api/v1/compensation/resolve", req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "basic_pay")
	assert.Contains(t, env.Error.Details, "masters[0].global_rule.amount")
}

func TestCompensationHandler_Resolve_InvalidJSON(t *testing.T) {
	handler := newTestCompensationHandler()

	w := postRaw(handler.Resolve, "/api/v1/compensation/resolve", "invalid json")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
