package finance

// UnitReport is one row of the per-unit metrics table.
type UnitReport struct {
	Unit       Unit              `json:"unit"`
	CostBasis  float64           `json:"cost_basis"`
	Qualifying bool              `json:"qualifying"`
	Metrics    *FinancialMetrics `json:"metrics,omitempty"`
}

// ProjectMetrics bundles everything a project view needs.
type ProjectMetrics struct {
	Stage            string           `json:"stage"`
	TotalArea        float64          `json:"total_area"`
	TotalExpenses    float64          `json:"total_expenses"`
	ProportionalCost bool             `json:"proportional_cost"`
	Summary          PortfolioSummary `json:"summary"`
	Units            []UnitReport     `json:"units"`
}

// UnitBreakdown lists every unit of the project with its cost basis and, for qualifying
// sales, its metrics.
func UnitBreakdown(project Project, inflation, daysPerMonth float64) []UnitReport {
	alloc := NewCostAllocator(project)
	start := FirstExpenseDate(project.Expenses)

	rows := make([]UnitReport, 0, len(project.Units))
	for _, u := range project.Units {
		m, ok := unitMetrics(alloc, start, u, inflation, daysPerMonth)
		row := UnitReport{Unit: u, CostBasis: m.CostBasis, Qualifying: ok && m.CostBasis > 0}
		if ok {
			metrics := m
			row.Metrics = &metrics
		}
		rows = append(rows, row)
	}
	return rows
}

// Analyze computes the full metrics view of a project.
func Analyze(project Project, inflation, daysPerMonth float64) ProjectMetrics {
	alloc := NewCostAllocator(project)
	return ProjectMetrics{
		Stage:            StageName(project.Progress),
		TotalArea:        TotalArea(project.Units),
		TotalExpenses:    TotalExpenses(project.Expenses),
		ProportionalCost: alloc.Proportional(),
		Summary:          AggregateWithMonthLength(project.Units, project, inflation, daysPerMonth),
		Units:            UnitBreakdown(project, inflation, daysPerMonth),
	}
}
