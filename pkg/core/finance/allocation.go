package finance

// TotalArea sums the floor area of all units.
func TotalArea(units []Unit) float64 {
	total := 0.0
	for _, u := range units {
		total += u.Area
	}
	return total
}

// TotalExpenses sums the ledger values.
func TotalExpenses(expenses []Expense) float64 {
	total := 0.0
	for _, e := range expenses {
		total += e.Value
	}
	return total
}

// CostAllocator resolves cost bases for the units of one project.
// Build it once per project so aggregations do not re-sum area and spend per unit.
type CostAllocator struct {
	proportional bool
	totalArea    float64
	totalSpend   float64
}

// NewCostAllocator inspects the project's completion state, floor area and ledger.
// Area-proportional allocation is enabled only for a completed project with positive
// total area and positive total spend.
func NewCostAllocator(project Project) CostAllocator {
	a := CostAllocator{
		totalArea:  TotalArea(project.Units),
		totalSpend: TotalExpenses(project.Expenses),
	}
	a.proportional = project.Progress == CompletedProgress && a.totalArea > 0 && a.totalSpend > 0
	return a
}

// Proportional reports whether actual spend is being redistributed by area.
func (a CostAllocator) Proportional() bool { return a.proportional }

// CostBasis returns the unit's share of actual spend when the project is complete,
// otherwise its nominal cost.
func (a CostAllocator) CostBasis(unit Unit) float64 {
	if !a.proportional {
		return unit.Cost
	}
	return unit.Area / a.totalArea * a.totalSpend
}

// ResolveCostBasis is the single-unit form of CostAllocator.CostBasis.
func ResolveCostBasis(unit Unit, project Project) float64 {
	return NewCostAllocator(project).CostBasis(unit)
}
