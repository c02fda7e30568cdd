package finance

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Uncategorized labels expenses without a macro or sub-macro.
const Uncategorized = "Uncategorized"

// BudgetLine is a planned amount for a macro (and optionally a sub-macro) category.
type BudgetLine struct {
	ID        string  `json:"id,omitempty"`
	ProjectID string  `json:"project_id,omitempty"`
	Macro     string  `json:"macro"`
	SubMacro  string  `json:"sub_macro,omitempty"`
	Planned   float64 `json:"planned"`
}

// BudgetAmounts is the planned/spent comparison of one rollup node.
type BudgetAmounts struct {
	Planned     float64 `json:"planned"`
	Spent       float64 `json:"spent"`
	Remaining   float64 `json:"remaining"`
	PercentUsed float64 `json:"percent_used"` // Spent/Planned, 0 without a plan
}

// BudgetSubCategory is a sub-macro row of a category.
type BudgetSubCategory struct {
	SubMacro string `json:"sub_macro"`
	BudgetAmounts
}

// BudgetCategory is a macro row with its sub-macro breakdown.
type BudgetCategory struct {
	Macro         string              `json:"macro"`
	SubCategories []BudgetSubCategory `json:"sub_categories"`
	BudgetAmounts
}

// BudgetReport is the expense rollup of one project against its plan.
type BudgetReport struct {
	Categories []BudgetCategory `json:"categories"`
	Total      BudgetAmounts    `json:"total"`
}

type rollupNode struct {
	planned decimal.Decimal
	spent   decimal.Decimal
}

func (n rollupNode) amounts() BudgetAmounts {
	a := BudgetAmounts{
		Planned:   n.planned.InexactFloat64(),
		Spent:     n.spent.InexactFloat64(),
		Remaining: n.planned.Sub(n.spent).InexactFloat64(),
	}
	if n.planned.IsPositive() {
		a.PercentUsed = n.spent.Div(n.planned).InexactFloat64()
	}
	return a
}

func categoryKey(label string) string {
	if label == "" {
		return Uncategorized
	}
	return label
}

// RollupBudget groups expenses by macro and sub-macro and compares them with the plan.
// Sums are exact decimals; categories and sub-categories are sorted by name.
func RollupBudget(expenses []Expense, planned []BudgetLine) BudgetReport {
	macros := map[string]*rollupNode{}
	subs := map[string]map[string]*rollupNode{}
	var total rollupNode

	node := func(macro, sub string) (*rollupNode, *rollupNode) {
		m, ok := macros[macro]
		if !ok {
			m = &rollupNode{}
			macros[macro] = m
			subs[macro] = map[string]*rollupNode{}
		}
		if sub == "" {
			return m, nil
		}
		s, ok := subs[macro][sub]
		if !ok {
			s = &rollupNode{}
			subs[macro][sub] = s
		}
		return m, s
	}

	for _, line := range planned {
		v := decimal.NewFromFloat(line.Planned)
		m, s := node(categoryKey(line.Macro), line.SubMacro)
		m.planned = m.planned.Add(v)
		if s != nil {
			s.planned = s.planned.Add(v)
		}
		total.planned = total.planned.Add(v)
	}

	for _, e := range expenses {
		v := decimal.NewFromFloat(e.Value)
		sub := e.SubMacro
		if e.Macro == "" {
			sub = ""
		}
		m, s := node(categoryKey(e.Macro), sub)
		m.spent = m.spent.Add(v)
		if s != nil {
			s.spent = s.spent.Add(v)
		}
		total.spent = total.spent.Add(v)
	}

	report := BudgetReport{Total: total.amounts(), Categories: make([]BudgetCategory, 0, len(macros))}
	for name, m := range macros {
		cat := BudgetCategory{Macro: name, BudgetAmounts: m.amounts(), SubCategories: []BudgetSubCategory{}}
		for subName, s := range subs[name] {
			cat.SubCategories = append(cat.SubCategories, BudgetSubCategory{SubMacro: subName, BudgetAmounts: s.amounts()})
		}
		sort.Slice(cat.SubCategories, func(i, j int) bool {
			return cat.SubCategories[i].SubMacro < cat.SubCategories[j].SubMacro
		})
		report.Categories = append(report.Categories, cat)
	}
	sort.Slice(report.Categories, func(i, j int) bool {
		return report.Categories[i].Macro < report.Categories[j].Macro
	})
	return report
}
