package compensation

import (
	"strings"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/compensation"
	"github.com/shopspring/decimal"
)

// TraceEvent is a structured calculation decision. The engine stays pure:
// instead of logging from inside the formulas, decisions are handed to an
// injected observer.
type TraceEvent struct {
	Stage  string
	Item   string
	Detail string
	Amount decimal.Decimal
}

const (
	TraceRuleResolved     = "rule_resolved"
	TraceProrationApplied = "proration_applied"
	TraceClampApplied     = "clamp_applied"
	TraceMalformedRule    = "malformed_rule"
)

type TraceFunc func(event TraceEvent)

type CompensationServiceImpl struct {
	trace TraceFunc
}

// NewCompensationService builds the calculation service. trace may be nil.
func NewCompensationService(trace TraceFunc) *CompensationServiceImpl {
	return &CompensationServiceImpl{trace: trace}
}

func (s *CompensationServiceImpl) emit(event TraceEvent) {
	if s.trace != nil {
		s.trace(event)
	}
}

// ResolveRule picks the single effective rule for an item: the department's
// entry when one exists, else the global rule. The override wins entirely;
// there is no field-level merge between the two. Inactive or absent masters
// resolve to nil.
func (s *CompensationServiceImpl) ResolveRule(master *compensation.ItemMaster, departmentID string) *compensation.Rule {
	if master == nil || !master.IsActive {
		return nil
	}

	if departmentID != "" {
		for i := range master.DepartmentRules {
			if master.DepartmentRules[i].DepartmentID == departmentID {
				rule := master.DepartmentRules[i].Rule
				s.emit(TraceEvent{Stage: TraceRuleResolved, Item: master.Name, Detail: "department:" + departmentID})
				return &rule
			}
		}
	}

	rule := master.GlobalRule
	s.emit(TraceEvent{Stage: TraceRuleResolved, Item: master.Name, Detail: "global"})
	return &rule
}

// CalculateAmount turns a resolved rule into a monetary amount.
//
// Fixed rules optionally prorate by paid days over the month; when proration
// is flagged but no attendance input was supplied, the unprorated amount
// stands (best effort, not a hard requirement). Percentage rules never
// prorate, whatever the flag says. Min/max clamping runs after the formula,
// and the result is rounded to 2 decimals. A nil or malformed rule is worth
// zero.
func (s *CompensationServiceImpl) CalculateAmount(
	rule *compensation.Rule,
	basicPay decimal.Decimal,
	grossSalary *decimal.Decimal,
	proration *compensation.ProrationInput,
) decimal.Decimal {
	if rule == nil {
		return decimal.Zero
	}
	if !rule.WellFormed() {
		s.emit(TraceEvent{Stage: TraceMalformedRule, Detail: string(rule.Kind)})
		return decimal.Zero
	}

	var amount decimal.Decimal

	switch rule.Kind {
	case compensation.RuleKindFixed:
		amount = *rule.Amount
		if rule.ProratedByAttendance && proration != nil && proration.TotalDaysInMonth > 0 {
			paidDays := decimal.NewFromFloat(proration.PaidDays())
			monthDays := decimal.NewFromInt(int64(proration.TotalDaysInMonth))
			amount = amount.Div(monthDays).Mul(paidDays)
			s.emit(TraceEvent{Stage: TraceProrationApplied, Detail: paidDays.String() + "/" + monthDays.String(), Amount: amount})
		}

	case compensation.RuleKindPercentage:
		base := basicPay
		if rule.PercentageBase == compensation.PercentageBaseGross && grossSalary != nil {
			base = *grossSalary
		}
		amount = base.Mul(*rule.Percentage).Div(decimal.NewFromInt(100))
	}

	if rule.MinAmount != nil && amount.LessThan(*rule.MinAmount) {
		amount = *rule.MinAmount
		s.emit(TraceEvent{Stage: TraceClampApplied, Detail: "min", Amount: amount})
	}
	if rule.MaxAmount != nil && amount.GreaterThan(*rule.MaxAmount) {
		amount = *rule.MaxAmount
		s.emit(TraceEvent{Stage: TraceClampApplied, Detail: "max", Amount: amount})
	}

	return amount.Round(2)
}

// ResolveLineItems resolves and values every active master for one
// employee, producing the organization-wide base list the override merge
// starts from. Masters that resolve to no rule contribute nothing.
func (s *CompensationServiceImpl) ResolveLineItems(
	masters []compensation.ItemMaster,
	departmentID string,
	basicPay decimal.Decimal,
	grossSalary *decimal.Decimal,
	proration *compensation.ProrationInput,
) []compensation.ResolvedLineItem {
	items := make([]compensation.ResolvedLineItem, 0, len(masters))

	for i := range masters {
		master := &masters[i]
		rule := s.ResolveRule(master, departmentID)
		if rule == nil {
			continue
		}

		items = append(items, compensation.ResolvedLineItem{
			MasterKey:            master.Key,
			Name:                 master.Name,
			Category:             master.Category,
			Amount:               s.CalculateAmount(rule, basicPay, grossSalary, proration),
			Kind:                 rule.Kind,
			PercentageBase:       rule.PercentageBase,
			ProratedByAttendance: rule.ProratedByAttendance,
		})
	}

	return items
}

// MergeOverrides combines the organization-wide base list with
// employee-specific overrides into one effective working set. An override
// matches a base item first by exact master key, else by case-insensitive
// name. Matched items take the override's fields and are flagged; unmatched
// overrides become standalone flagged items, and a later override matching
// an earlier standalone re-merges onto it; unmatched base items are kept
// only when includeMissing. No item appears twice.
func (s *CompensationServiceImpl) MergeOverrides(
	base []compensation.ResolvedLineItem,
	overrides []*compensation.LineItemOverride,
	includeMissing bool,
) []compensation.ResolvedLineItem {
	merged := make([]compensation.ResolvedLineItem, len(base))
	copy(merged, base)

	matched := make([]bool, len(base))
	var standalone []compensation.ResolvedLineItem

	for _, o := range overrides {
		if o == nil {
			continue
		}

		idx := matchBaseItem(base, o)
		if idx < 0 {
			if si := matchBaseItem(standalone, o); si >= 0 {
				applyOverride(&standalone[si], o)
			} else {
				standalone = append(standalone, overrideToLineItem(o))
			}
			continue
		}

		applyOverride(&merged[idx], o)
		matched[idx] = true
	}

	result := make([]compensation.ResolvedLineItem, 0, len(base)+len(standalone))
	for i := range merged {
		if matched[i] || includeMissing {
			result = append(result, merged[i])
		}
	}
	result = append(result, standalone...)

	return result
}

func matchBaseItem(base []compensation.ResolvedLineItem, o *compensation.LineItemOverride) int {
	if o.MasterKey != "" {
		for i := range base {
			if base[i].MasterKey == o.MasterKey {
				return i
			}
		}
	}
	if o.Name != "" {
		for i := range base {
			if strings.EqualFold(base[i].Name, o.Name) {
				return i
			}
		}
	}
	return -1
}

func applyOverride(item *compensation.ResolvedLineItem, o *compensation.LineItemOverride) {
	if amount := o.EffectiveAmount(); amount != nil {
		item.Amount = *amount
	}
	if o.Kind != nil {
		item.Kind = *o.Kind
	}
	if o.PercentageBase != nil {
		item.PercentageBase = *o.PercentageBase
	}
	if o.ProratedByAttendance != nil {
		item.ProratedByAttendance = *o.ProratedByAttendance
	}
	if o.Category != nil {
		item.Category = *o.Category
	}
	item.IsEmployeeOverride = true
}

func overrideToLineItem(o *compensation.LineItemOverride) compensation.ResolvedLineItem {
	item := compensation.ResolvedLineItem{
		MasterKey:          o.MasterKey,
		Name:               o.Name,
		Category:           compensation.CategoryAllowance,
		Kind:               compensation.RuleKindFixed,
		IsEmployeeOverride: true,
	}
	if amount := o.EffectiveAmount(); amount != nil {
		item.Amount = *amount
	}
	if o.Category != nil {
		item.Category = *o.Category
	}
	if o.Kind != nil {
		item.Kind = *o.Kind
	}
	if o.PercentageBase != nil {
		item.PercentageBase = *o.PercentageBase
	}
	if o.ProratedByAttendance != nil {
		item.ProratedByAttendance = *o.ProratedByAttendance
	}
	return item
}
