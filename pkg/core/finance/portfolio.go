package finance

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// accumulator carries the running sums of an aggregation.
type accumulator struct {
	sumROI     float64
	sumMonthly float64
	sumReal    float64
	qualifying int
	sold       int
	available  int
	realized   float64
	potential  float64
	profit     float64
	costBasis  float64
}

func (a *accumulator) addUnits(units []Unit, project Project, inflation, daysPerMonth float64) {
	alloc := NewCostAllocator(project)
	start := FirstExpenseDate(project.Expenses)

	for _, u := range units {
		switch u.Status {
		case StatusSold:
			a.sold++
			if u.SaleValue != nil {
				a.realized += *u.SaleValue
			}
		case StatusAvailable:
			a.available++
			if u.EstimatedSaleValue != nil {
				a.potential += *u.EstimatedSaleValue
			}
			continue
		default:
			continue
		}

		m, ok := unitMetrics(alloc, start, u, inflation, daysPerMonth)
		if !ok || m.CostBasis <= 0 {
			continue
		}
		a.qualifying++
		a.sumROI += m.NominalTotalROI
		a.sumMonthly += m.NominalMonthlyROI
		a.sumReal += m.RealMonthlyROI
		a.profit += m.Profit
		a.costBasis += m.CostBasis
	}
}

func (a *accumulator) merge(b accumulator) {
	a.sumROI += b.sumROI
	a.sumMonthly += b.sumMonthly
	a.sumReal += b.sumReal
	a.qualifying += b.qualifying
	a.sold += b.sold
	a.available += b.available
	a.realized += b.realized
	a.potential += b.potential
	a.profit += b.profit
	a.costBasis += b.costBasis
}

func (a accumulator) summary() PortfolioSummary {
	s := PortfolioSummary{
		SoldCount:        a.sold,
		AvailableCount:   a.available,
		RealizedRevenue:  a.realized,
		PotentialRevenue: a.potential,
		QualifyingCount:  a.qualifying,
		TotalProfit:      a.profit,
		TotalCostBasis:   a.costBasis,
	}
	if a.qualifying > 0 {
		n := float64(a.qualifying)
		s.AvgROI = a.sumROI / n
		s.AvgMonthlyROI = a.sumMonthly / n
		s.AvgRealMonthlyROI = a.sumReal / n
	}
	return s
}

// Aggregate summarizes units of a project using the default month length.
// Cost bases are resolved against project (its full unit set and ledger), so units may be a
// subset of project.Units.
func Aggregate(units []Unit, project Project, inflation float64) PortfolioSummary {
	return AggregateWithMonthLength(units, project, inflation, DefaultDaysPerMonth)
}

// AggregateWithMonthLength is Aggregate with an explicit days-per-month convention.
func AggregateWithMonthLength(units []Unit, project Project, inflation, daysPerMonth float64) PortfolioSummary {
	var acc accumulator
	acc.addUnits(units, project, inflation, daysPerMonth)
	return acc.summary()
}

// AggregateProjects repeats the per-project accumulation over every project and averages
// across all qualifying sold units. Projects are not weighted by size.
func AggregateProjects(projects []Project, inflation, daysPerMonth float64) PortfolioSummary {
	var acc accumulator
	for _, p := range projects {
		acc.addUnits(p.Units, p, inflation, daysPerMonth)
	}
	return acc.summary()
}

// AggregateProjectsParallel computes the same result as AggregateProjects with one goroutine
// per project. Each project only reads its own units and expenses.
func AggregateProjectsParallel(ctx context.Context, projects []Project, inflation, daysPerMonth float64) (PortfolioSummary, error) {
	partials := make([]accumulator, len(projects))
	g, ctx := errgroup.WithContext(ctx)
	for i := range projects {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			partials[i].addUnits(projects[i].Units, projects[i], inflation, daysPerMonth)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PortfolioSummary{}, err
	}

	var acc accumulator
	for _, p := range partials {
		acc.merge(p)
	}
	return acc.summary(), nil
}
