package report

import (
	"fmt"
	"io"

	"obra_tracker/pkg/core/finance"

	"github.com/xuri/excelize/v2"
)

const (
	PortfolioSheet = "Portfolio"
	UnitsSheet     = "Units"
)

var (
	portfolioHeaders = []string{"Project", "Stage", "Progress", "Units", "Sold", "Available",
		"Total expenses", "Realized revenue", "Potential revenue", "Avg ROI", "Avg monthly ROI", "Avg real monthly ROI"}
	unitHeaders = []string{"Project", "Unit", "Area", "Status", "Cost basis", "Sale value", "Sale date",
		"Profit", "Holding months", "ROI", "Monthly ROI", "Real monthly ROI"}
)

// WriteXLSX writes a workbook with one Portfolio row per project and one Units row per unit.
func WriteXLSX(w io.Writer, projects []finance.Project, inflation, daysPerMonth float64) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(PortfolioSheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(UnitsSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyFmt := "#,##0.00"
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return fmt.Errorf("failed to create money style: %w", err)
	}
	pctStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
	if err != nil {
		return fmt.Errorf("failed to create percent style: %w", err)
	}

	if err := writeHeader(f, PortfolioSheet, portfolioHeaders, headerStyle); err != nil {
		return err
	}
	if err := writeHeader(f, UnitsSheet, unitHeaders, headerStyle); err != nil {
		return err
	}

	unitRow := 2
	for i, p := range projects {
		m := finance.Analyze(p, inflation, daysPerMonth)
		s := m.Summary
		row := i + 2
		values := []interface{}{p.Name, m.Stage, p.Progress, len(p.Units), s.SoldCount, s.AvailableCount,
			m.TotalExpenses, s.RealizedRevenue, s.PotentialRevenue, s.AvgROI, s.AvgMonthlyROI, s.AvgRealMonthlyROI}
		if err := writeRow(f, PortfolioSheet, row, values); err != nil {
			return err
		}
		if err := styleRange(f, PortfolioSheet, 7, 9, row, moneyStyle); err != nil {
			return err
		}
		if err := styleRange(f, PortfolioSheet, 10, 12, row, pctStyle); err != nil {
			return err
		}

		for _, u := range m.Units {
			values := []interface{}{p.Name, u.Unit.Identifier, u.Unit.Area, string(u.Unit.Status), u.CostBasis, nil, nil,
				nil, nil, nil, nil, nil}
			if u.Unit.SaleValue != nil {
				values[5] = *u.Unit.SaleValue
			}
			if u.Unit.SaleDate != nil {
				values[6] = u.Unit.SaleDate.String()
			}
			if u.Metrics != nil {
				values[7] = u.Metrics.Profit
				values[8] = u.Metrics.HoldingMonths
				values[9] = u.Metrics.NominalTotalROI
				values[10] = u.Metrics.NominalMonthlyROI
				values[11] = u.Metrics.RealMonthlyROI
			}
			if err := writeRow(f, UnitsSheet, unitRow, values); err != nil {
				return err
			}
			if err := styleRange(f, UnitsSheet, 5, 6, unitRow, moneyStyle); err != nil {
				return err
			}
			if err := styleRange(f, UnitsSheet, 8, 8, unitRow, moneyStyle); err != nil {
				return err
			}
			if err := styleRange(f, UnitsSheet, 10, 12, unitRow, pctStyle); err != nil {
				return err
			}
			unitRow++
		}
	}

	for _, sheet := range []string{PortfolioSheet, UnitsSheet} {
		if err := f.SetColWidth(sheet, "A", "B", 24); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
		if err := f.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("failed to freeze panes: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return fmt.Errorf("failed to set header style: %w", err)
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to set cell %s: %w", cell, err)
		}
	}
	return nil
}

// styleRange styles columns fromCol..toCol (1-based) of one row.
func styleRange(f *excelize.File, sheet string, fromCol, toCol, row, style int) error {
	start, err := excelize.CoordinatesToCellName(fromCol, row)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(toCol, row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, style)
}
