package projects

import "obra_tracker/pkg/core/finance"

type CreateProjectRequest struct {
	Name         string        `json:"name" validate:"required,max=200"`
	Progress     int           `json:"progress" validate:"progress_step"`
	StartDate    *finance.Date `json:"start_date,omitempty"`
	DeliveryDate *finance.Date `json:"delivery_date,omitempty"`
}

// UpdateProjectRequest changes only the fields present in the body.
type UpdateProjectRequest struct {
	Name         *string       `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Progress     *int          `json:"progress,omitempty" validate:"omitempty,progress_step"`
	StartDate    *finance.Date `json:"start_date,omitempty"`
	DeliveryDate *finance.Date `json:"delivery_date,omitempty"`
}

type ProgressRequest struct {
	Progress *int `json:"progress" validate:"required,progress_step"`
}

// ProjectView is a project with its stage name and sales summary.
type ProjectView struct {
	finance.Project
	Stage   string                   `json:"stage"`
	Summary finance.PortfolioSummary `json:"summary"`
}

type UnitRequest struct {
	Identifier         string   `json:"identifier" validate:"required,max=60"`
	Area               float64  `json:"area" validate:"gt=0"`
	Cost               float64  `json:"cost" validate:"gt=0"`
	EstimatedSaleValue *float64 `json:"valorEstimadoVenda,omitempty" validate:"omitempty,gt=0"`
}

// UpdateUnitRequest revises a unit. Sales go through the sell endpoint.
type UpdateUnitRequest struct {
	Identifier         *string  `json:"identifier,omitempty" validate:"omitempty,min=1,max=60"`
	Area               *float64 `json:"area,omitempty" validate:"omitempty,gt=0"`
	Cost               *float64 `json:"cost,omitempty" validate:"omitempty,gt=0"`
	EstimatedSaleValue *float64 `json:"valorEstimadoVenda,omitempty" validate:"omitempty,gt=0"`
}

type SellUnitRequest struct {
	SaleValue float64       `json:"saleValue" validate:"gt=0"`
	SaleDate  *finance.Date `json:"saleDate,omitempty"`
}

type ExpenseRequest struct {
	Description string        `json:"description" validate:"required,max=500"`
	Value       float64       `json:"value" validate:"gt=0"`
	Date        *finance.Date `json:"date,omitempty"`
	Macro       string        `json:"macro,omitempty" validate:"max=100"`
	SubMacro    string        `json:"sub_macro,omitempty" validate:"max=100"`
}

type BudgetLineRequest struct {
	Macro    string  `json:"macro" validate:"required,max=100"`
	SubMacro string  `json:"sub_macro,omitempty" validate:"max=100"`
	Planned  float64 `json:"planned" validate:"gte=0"`
}

type BudgetRequest struct {
	Lines []BudgetLineRequest `json:"lines" validate:"max=500,dive"`
}

// BudgetResponse pairs the planned lines with the rollup against actual spend.
type BudgetResponse struct {
	Lines  []finance.BudgetLine `json:"lines"`
	Report finance.BudgetReport `json:"report"`
}

type DiaryRequest struct {
	Date *finance.Date `json:"date,omitempty"`
	Body string        `json:"body" validate:"required,max=20000"`
}

// DocumentRequest registers a file the client already uploaded to storage.
type DocumentRequest struct {
	Name        string `json:"name" validate:"required,max=255"`
	StoragePath string `json:"storage_path" validate:"required,max=1024"`
	ContentType string `json:"content_type,omitempty" validate:"max=255"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

// MetricsResponse is the metrics view with the parameters it was computed with.
type MetricsResponse struct {
	InflationRate float64                `json:"inflation_rate"`
	DaysPerMonth  float64                `json:"days_per_month"`
	Metrics       finance.ProjectMetrics `json:"metrics"`
}
