package finance

import "time"

// DefaultDaysPerMonth is the month-length convention used to turn days into months.
const DefaultDaysPerMonth = 30.4

// ComputeMetrics derives the return profile of one sale.
//
//	NominalTotalROI   = profit / costBasis            (0 when costBasis <= 0)
//	NominalMonthlyROI = NominalTotalROI / months      (0 when months <= 0)
//	RealMonthlyROI    = NominalMonthlyROI - inflation
//
// Monthly figures are linear, not compounded, and inflation is a flat subtraction.
func ComputeMetrics(profit, costBasis, holdingMonths, monthlyInflationRate float64) FinancialMetrics {
	m := FinancialMetrics{
		Profit:        profit,
		CostBasis:     costBasis,
		HoldingMonths: holdingMonths,
		InflationRate: monthlyInflationRate,
	}
	if costBasis > 0 {
		m.NominalTotalROI = profit / costBasis
	}
	if holdingMonths > 0 {
		m.NominalMonthlyROI = m.NominalTotalROI / holdingMonths
	}
	m.RealMonthlyROI = m.NominalMonthlyROI - monthlyInflationRate
	return m
}

// HoldingMonths converts the calendar-day span start→end into months.
// A missing date or a non-positive month length yields 0.
func HoldingMonths(start, end time.Time, daysPerMonth float64) float64 {
	if start.IsZero() || end.IsZero() || daysPerMonth <= 0 {
		return 0
	}
	return float64(daysBetween(start, end)) / daysPerMonth
}

// FirstExpenseDate returns the earliest dated expense, or the zero time.
func FirstExpenseDate(expenses []Expense) time.Time {
	var first time.Time
	for _, e := range expenses {
		if e.Date.IsZero() {
			continue
		}
		if first.IsZero() || e.Date.Before(first) {
			first = e.Date.Time
		}
	}
	return first
}

// UnitMetrics computes the metrics of one unit within its project. The bool is false when
// the unit is not a qualifying sale (not Sold, or no positive sale value); the metrics are
// then zero apart from the cost basis.
func UnitMetrics(unit Unit, project Project, inflation, daysPerMonth float64) (FinancialMetrics, bool) {
	return unitMetrics(NewCostAllocator(project), FirstExpenseDate(project.Expenses), unit, inflation, daysPerMonth)
}

func unitMetrics(alloc CostAllocator, start time.Time, unit Unit, inflation, daysPerMonth float64) (FinancialMetrics, bool) {
	basis := alloc.CostBasis(unit)
	if !unit.QualifiesAsSale() {
		return FinancialMetrics{CostBasis: basis, InflationRate: inflation}, false
	}
	months := HoldingMonths(start, unit.SaleDate.OrZero(), daysPerMonth)
	return ComputeMetrics(*unit.SaleValue-basis, basis, months, inflation), true
}
