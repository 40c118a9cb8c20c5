package compensation

import (
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func fixedRule(amount string, prorated bool) compensation.Rule {
	return compensation.Rule{
		Kind:                 compensation.RuleKindFixed,
		Amount:               decPtr(amount),
		ProratedByAttendance: prorated,
	}
}

func percentageRule(pct string, base compensation.PercentageBase) compensation.Rule {
	return compensation.Rule{
		Kind:           compensation.RuleKindPercentage,
		Percentage:     decPtr(pct),
		PercentageBase: base,
	}
}

// ========== RULE RESOLUTION ==========

func TestResolveRule_NilOrInactiveMaster(t *testing.T) {
	svc := NewCompensationService(nil)

	assert.Nil(t, svc.ResolveRule(nil, "dept-1"))

	master := &compensation.ItemMaster{
		Name:       "Transport Allowance",
		Category:   compensation.CategoryAllowance,
		IsActive:   false,
		GlobalRule: fixedRule("3000", false),
	}
	assert.Nil(t, svc.ResolveRule(master, "dept-1"))
}

func TestResolveRule_DepartmentOverrideWinsEntirely(t *testing.T) {
	svc := NewCompensationService(nil)
	master := &compensation.ItemMaster{
		Name:     "Transport Allowance",
		Category: compensation.CategoryAllowance,
		IsActive: true,
		GlobalRule: compensation.Rule{
			Kind:                 compensation.RuleKindFixed,
			Amount:               decPtr("3000"),
			MinAmount:            decPtr("1000"),
			ProratedByAttendance: true,
		},
		DepartmentRules: []compensation.DepartmentRule{
			{DepartmentID: "dept-1", Rule: fixedRule("5000", false)},
		},
	}

	rule := svc.ResolveRule(master, "dept-1")
	require.NotNil(t, rule)
	assert.True(t, rule.Amount.Equal(dec("5000")))
	// No field-level merge: the global rule's min and proration flag do not
	// leak into the department rule.
	assert.Nil(t, rule.MinAmount)
	assert.False(t, rule.ProratedByAttendance)
}

func TestResolveRule_FallsBackToGlobal(t *testing.T) {
	svc := NewCompensationService(nil)
	master := &compensation.ItemMaster{
		Name:       "Transport Allowance",
		Category:   compensation.CategoryAllowance,
		IsActive:   true,
		GlobalRule: fixedRule("3000", false),
		DepartmentRules: []compensation.DepartmentRule{
			{DepartmentID: "dept-1", Rule: fixedRule("5000", false)},
		},
	}

	rule := svc.ResolveRule(master, "dept-2")
	require.NotNil(t, rule)
	assert.True(t, rule.Amount.Equal(dec("3000")))

	rule = svc.ResolveRule(master, "")
	require.NotNil(t, rule)
	assert.True(t, rule.Amount.Equal(dec("3000")))
}

// ========== AMOUNT CALCULATION ==========

func attendanceOf(present, paidLeave, od float64, monthDays int) *compensation.ProrationInput {
	return &compensation.ProrationInput{
		PresentDays:      present,
		PaidLeaveDays:    paidLeave,
		ODDays:           od,
		TotalDaysInMonth: monthDays,
	}
}

func TestCalculateAmount_FixedProrated(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)

	// 25 paid days out of 30
	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(20, 3, 2, 30))
	assert.True(t, got.Equal(dec("2500")), "got %s", got)
}

func TestCalculateAmount_DeductionSameFormula(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("600", true)

	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(20, 3, 2, 30))
	assert.True(t, got.Equal(dec("500")), "got %s", got)
}

func TestCalculateAmount_FullAttendanceFullAmount(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)

	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(30, 0, 0, 30))
	assert.True(t, got.Equal(dec("3000")), "got %s", got)
}

func TestCalculateAmount_ProrationLinearity(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)

	full := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(20, 0, 0, 30))
	half := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 30))
	assert.True(t, half.Mul(decimal.NewFromInt(2)).Equal(full), "full=%s half=%s", full, half)
}

func TestCalculateAmount_ProrationWithoutInputReturnsUnprorated(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)

	got := svc.CalculateAmount(&rule, dec("20000"), nil, nil)
	assert.True(t, got.Equal(dec("3000")), "got %s", got)
}

func TestCalculateAmount_ZeroMonthDaysSkipsProration(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)

	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 0))
	assert.True(t, got.Equal(dec("3000")), "got %s", got)
}

func TestCalculateAmount_MinClamp(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)
	rule.MinAmount = decPtr("2000")

	// 10/30 attendance prorates 3000 down to 1000, clamp raises to 2000
	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 30))
	assert.True(t, got.Equal(dec("2000")), "got %s", got)
}

func TestCalculateAmount_MaxClamp(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)
	rule.MaxAmount = decPtr("2500")

	got := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(30, 0, 0, 30))
	assert.True(t, got.Equal(dec("2500")), "got %s", got)
}

func TestCalculateAmount_ClampIdempotent(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := fixedRule("3000", true)
	rule.MinAmount = decPtr("2000")
	rule.MaxAmount = decPtr("2600")

	first := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 30))
	clampedAgain := compensation.Rule{
		Kind:      compensation.RuleKindFixed,
		Amount:    &first,
		MinAmount: rule.MinAmount,
		MaxAmount: rule.MaxAmount,
	}
	second := svc.CalculateAmount(&clampedAgain, dec("20000"), nil, nil)
	assert.True(t, first.Equal(second), "first=%s second=%s", first, second)
}

func TestCalculateAmount_PercentageOfBasic(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := percentageRule("10", compensation.PercentageBaseBasic)

	got := svc.CalculateAmount(&rule, dec("20000"), decPtr("50000"), nil)
	assert.True(t, got.Equal(dec("2000")), "got %s", got)
}

func TestCalculateAmount_PercentageOfGross(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := percentageRule("10", compensation.PercentageBaseGross)

	got := svc.CalculateAmount(&rule, dec("20000"), decPtr("50000"), nil)
	assert.True(t, got.Equal(dec("5000")), "got %s", got)

	// Gross base without a supplied gross salary falls back to basic.
	got = svc.CalculateAmount(&rule, dec("20000"), nil, nil)
	assert.True(t, got.Equal(dec("2000")), "got %s", got)
}

func TestCalculateAmount_PercentageImmuneToProration(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := percentageRule("10", compensation.PercentageBaseBasic)
	rule.ProratedByAttendance = true

	with := svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 30))
	without := svc.CalculateAmount(&rule, dec("20000"), nil, nil)
	assert.True(t, with.Equal(without), "with=%s without=%s", with, without)
}

func TestCalculateAmount_RoundsHalfUp(t *testing.T) {
	svc := NewCompensationService(nil)
	rule := percentageRule("33.3335", compensation.PercentageBaseBasic)

	got := svc.CalculateAmount(&rule, dec("1000"), nil, nil)
	assert.True(t, got.Equal(dec("333.34")), "got %s", got)
}

func TestCalculateAmount_MalformedRuleIsZero(t *testing.T) {
	svc := NewCompensationService(nil)

	assert.True(t, svc.CalculateAmount(nil, dec("20000"), nil, nil).IsZero())

	bothSet := compensation.Rule{
		Kind:       compensation.RuleKindFixed,
		Amount:     decPtr("3000"),
		Percentage: decPtr("10"),
	}
	assert.True(t, svc.CalculateAmount(&bothSet, dec("20000"), nil, nil).IsZero())

	neitherSet := compensation.Rule{Kind: compensation.RuleKindPercentage}
	assert.True(t, svc.CalculateAmount(&neitherSet, dec("20000"), nil, nil).IsZero())

	noBase := compensation.Rule{
		Kind:       compensation.RuleKindPercentage,
		Percentage: decPtr("10"),
	}
	assert.True(t, svc.CalculateAmount(&noBase, dec("20000"), nil, nil).IsZero())
}

func TestCalculateAmount_TraceEvents(t *testing.T) {
	var stages []string
	svc := NewCompensationService(func(e TraceEvent) {
		stages = append(stages, e.Stage)
	})

	rule := fixedRule("3000", true)
	rule.MinAmount = decPtr("2000")
	svc.CalculateAmount(&rule, dec("20000"), nil, attendanceOf(10, 0, 0, 30))

	assert.Equal(t, []string{TraceProrationApplied, TraceClampApplied}, stages)
}

// ========== OVERRIDE MERGE ==========

func baseItems() []compensation.ResolvedLineItem {
	return []compensation.ResolvedLineItem{
		{
			MasterKey: "transport",
			Name:      "Transport Allowance",
			Category:  compensation.CategoryAllowance,
			Amount:    dec("3000"),
			Kind:      compensation.RuleKindFixed,
		},
		{
			MasterKey: "pf",
			Name:      "Provident Fund",
			Category:  compensation.CategoryDeduction,
			Amount:    dec("600"),
			Kind:      compensation.RuleKindFixed,
		},
	}
}

func TestMergeOverrides_MatchByKey(t *testing.T) {
	svc := NewCompensationService(nil)
	overrides := []*compensation.LineItemOverride{
		{MasterKey: "transport", Amount: decPtr("3500")},
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	require.Len(t, result, 2)
	assert.True(t, result[0].Amount.Equal(dec("3500")))
	assert.True(t, result[0].IsEmployeeOverride)
	assert.False(t, result[1].IsEmployeeOverride)
}

func TestMergeOverrides_MatchByNameCaseInsensitive(t *testing.T) {
	svc := NewCompensationService(nil)
	overrides := []*compensation.LineItemOverride{
		{Name: "TRANSPORT allowance", Amount: decPtr("3500")},
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	require.Len(t, result, 2)
	assert.Equal(t, "transport", result[0].MasterKey)
	assert.True(t, result[0].Amount.Equal(dec("3500")))
	assert.True(t, result[0].IsEmployeeOverride)
}

func TestMergeOverrides_LegacyOverrideAmountAlias(t *testing.T) {
	svc := NewCompensationService(nil)
	overrides := []*compensation.LineItemOverride{
		{MasterKey: "pf", OverrideAmount: decPtr("750")},
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	require.Len(t, result, 2)
	assert.True(t, result[1].Amount.Equal(dec("750")))
}

func TestMergeOverrides_UnmatchedOverrideBecomesStandalone(t *testing.T) {
	svc := NewCompensationService(nil)
	cat := compensation.CategoryDeduction
	overrides := []*compensation.LineItemOverride{
		{Name: "Canteen Charge", Amount: decPtr("200"), Category: &cat},
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	require.Len(t, result, 3)
	standalone := result[2]
	assert.Equal(t, "Canteen Charge", standalone.Name)
	assert.True(t, standalone.Amount.Equal(dec("200")))
	assert.Equal(t, compensation.CategoryDeduction, standalone.Category)
	assert.True(t, standalone.IsEmployeeOverride)
}

func TestMergeOverrides_ExcludeMissingBase(t *testing.T) {
	svc := NewCompensationService(nil)
	overrides := []*compensation.LineItemOverride{
		{MasterKey: "transport", Amount: decPtr("3500")},
	}

	result := svc.MergeOverrides(baseItems(), overrides, false)
	require.Len(t, result, 1)
	assert.Equal(t, "transport", result[0].MasterKey)
}

func TestMergeOverrides_NilEntriesSkipped(t *testing.T) {
	svc := NewCompensationService(nil)
	overrides := []*compensation.LineItemOverride{
		nil,
		{MasterKey: "transport", Amount: decPtr("3500")},
		nil,
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	assert.Len(t, result, 2)
}

func TestMergeOverrides_NilOverrideList(t *testing.T) {
	svc := NewCompensationService(nil)

	result := svc.MergeOverrides(baseItems(), nil, true)
	require.Len(t, result, 2)
	for _, item := range result {
		assert.False(t, item.IsEmployeeOverride)
	}

	assert.Empty(t, svc.MergeOverrides(baseItems(), nil, false))
}

func TestMergeOverrides_NoDuplicates(t *testing.T) {
	svc := NewCompensationService(nil)
	// Same base item addressed by key and by name: must appear once.
	overrides := []*compensation.LineItemOverride{
		{MasterKey: "transport", Amount: decPtr("3500")},
		{Name: "Transport Allowance", Amount: decPtr("4000")},
	}

	base := baseItems()
	result := svc.MergeOverrides(base, overrides, true)
	assert.LessOrEqual(t, len(result), len(base)+len(overrides))

	seen := make(map[string]bool)
	for _, item := range result {
		key := item.MasterKey
		if key == "" {
			key = item.Name
		}
		assert.False(t, seen[key], "duplicate item %q", key)
		seen[key] = true
	}

	// The later override wins on the shared target.
	assert.True(t, result[0].Amount.Equal(dec("4000")))
}

func TestMergeOverrides_RepeatedStandaloneMergesOnce(t *testing.T) {
	svc := NewCompensationService(nil)
	cat := compensation.CategoryDeduction
	// Two unmatched overrides for the same item: one standalone, later wins.
	overrides := []*compensation.LineItemOverride{
		{Name: "Canteen Charge", Amount: decPtr("200"), Category: &cat},
		{Name: "CANTEEN charge", Amount: decPtr("250")},
	}

	result := svc.MergeOverrides(baseItems(), overrides, true)
	require.Len(t, result, 3)
	standalone := result[2]
	assert.Equal(t, "Canteen Charge", standalone.Name)
	assert.True(t, standalone.Amount.Equal(dec("250")))
	assert.Equal(t, compensation.CategoryDeduction, standalone.Category)
	assert.True(t, standalone.IsEmployeeOverride)
}

// ========== RESOLVE LINE ITEMS ==========

func TestResolveLineItems(t *testing.T) {
	svc := NewCompensationService(nil)
	masters := []compensation.ItemMaster{
		{
			Key:        "transport",
			Name:       "Transport Allowance",
			Category:   compensation.CategoryAllowance,
			IsActive:   true,
			GlobalRule: fixedRule("3000", true),
		},
		{
			Key:        "hra",
			Name:       "House Rent Allowance",
			Category:   compensation.CategoryAllowance,
			IsActive:   true,
			GlobalRule: percentageRule("20", compensation.PercentageBaseBasic),
		},
		{
			Key:        "inactive",
			Name:       "Old Allowance",
			Category:   compensation.CategoryAllowance,
			IsActive:   false,
			GlobalRule: fixedRule("999", false),
		},
	}

	items := svc.ResolveLineItems(masters, "", dec("20000"), nil, attendanceOf(20, 3, 2, 30))
	require.Len(t, items, 2)
	assert.True(t, items[0].Amount.Equal(dec("2500")), "got %s", items[0].Amount)
	assert.True(t, items[1].Amount.Equal(dec("4000")), "got %s", items[1].Amount)
}
