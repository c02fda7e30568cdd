// Package finance provides deterministic financial calculations for construction projects:
// cost-basis allocation, per-unit ROI and portfolio aggregation.
// Every function is pure. Degenerate divisions yield 0 instead of NaN, Inf or an error.
package finance

// UnitStatus is the sales status of a unit.
type UnitStatus string

const (
	StatusAvailable UnitStatus = "Available"
	StatusSold      UnitStatus = "Sold"
)

// Valid reports whether s is one of the known statuses.
func (s UnitStatus) Valid() bool {
	return s == StatusAvailable || s == StatusSold
}

// CompletedProgress is the progress value of a fully built project.
const CompletedProgress = 100

// Unit is a sellable unit (apartment, house, commercial room) of a project.
type Unit struct {
	ID                 string     `json:"id,omitempty"`
	ProjectID          string     `json:"project_id,omitempty"`
	Identifier         string     `json:"identifier"`
	Area               float64    `json:"area"` // m²
	Cost               float64    `json:"cost"` // nominal (estimated) build cost
	Status             UnitStatus `json:"status"`
	EstimatedSaleValue *float64   `json:"valorEstimadoVenda,omitempty"`
	SaleValue          *float64   `json:"saleValue,omitempty"`
	SaleDate           *Date      `json:"saleDate,omitempty"`
}

// IsSold reports whether the unit is marked sold.
func (u Unit) IsSold() bool { return u.Status == StatusSold }

// QualifiesAsSale reports whether the unit counts as a realized sale:
// status Sold with a positive sale value.
func (u Unit) QualifiesAsSale() bool {
	return u.Status == StatusSold && u.SaleValue != nil && *u.SaleValue > 0
}

// Expense is an entry of the project's expense ledger.
type Expense struct {
	ID          string  `json:"id,omitempty"`
	ProjectID   string  `json:"project_id,omitempty"`
	Description string  `json:"description"`
	Value       float64 `json:"value"`
	Date        Date    `json:"date"`
	UserID      string  `json:"user_id,omitempty"`
	Macro       string  `json:"macro,omitempty"`
	SubMacro    string  `json:"sub_macro,omitempty"`
}

// Project is the aggregate root holding units and expenses.
type Project struct {
	ID           string    `json:"id,omitempty"`
	Name         string    `json:"name,omitempty"`
	OwnerID      string    `json:"owner_id,omitempty"`
	Progress     int       `json:"progress"`
	StartDate    *Date     `json:"start_date,omitempty"`
	DeliveryDate *Date     `json:"delivery_date,omitempty"`
	Units        []Unit    `json:"units"`
	Expenses     []Expense `json:"expenses"`
}

// FinancialMetrics is the derived, never persisted, return profile of one sale.
type FinancialMetrics struct {
	Profit            float64 `json:"profit"`
	CostBasis         float64 `json:"cost_basis"`
	HoldingMonths     float64 `json:"holding_months"`
	NominalTotalROI   float64 `json:"nominal_total_roi"`
	NominalMonthlyROI float64 `json:"nominal_monthly_roi"`
	RealMonthlyROI    float64 `json:"real_monthly_roi"`
	InflationRate     float64 `json:"inflation_rate"`
}

// PortfolioSummary aggregates unit metrics for one project or many.
type PortfolioSummary struct {
	AvgROI            float64 `json:"avg_roi"`
	AvgMonthlyROI     float64 `json:"avg_monthly_roi"`
	AvgRealMonthlyROI float64 `json:"avg_real_monthly_roi"`
	SoldCount         int     `json:"sold_count"`
	AvailableCount    int     `json:"available_count"`
	RealizedRevenue   float64 `json:"realized_revenue"`
	PotentialRevenue  float64 `json:"potential_revenue"`

	// QualifyingCount is the denominator of the averages.
	QualifyingCount int     `json:"qualifying_count"`
	TotalProfit     float64 `json:"total_profit"`
	TotalCostBasis  float64 `json:"total_cost_basis"`
}
