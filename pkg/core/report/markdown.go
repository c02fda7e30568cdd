// Package report renders project reports as Markdown/HTML and exports portfolios to XLSX.
package report

import (
	"fmt"
	"strings"
	"time"

	"obra_tracker/pkg/core/finance"
	"obra_tracker/pkg/core/utils"

	"github.com/shopspring/decimal"
)

// BRL formats v as Brazilian currency: "R$ 1.234.567,89".
func BRL(v float64) string {
	s := decimal.NewFromFloat(v).Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	sign := ""
	if v < 0 && s != "0.00" {
		sign = "-"
	}
	return sign + "R$ " + b.String() + "," + frac
}

// Percent formats a ratio (0.0312) as "3,12%".
func Percent(ratio float64) string {
	return strings.Replace(decimal.NewFromFloat(ratio*100).StringFixed(2), ".", ",", 1) + "%"
}

// BuildMarkdown writes the project report: overview, sales summary, per-unit table and budget.
func BuildMarkdown(project finance.Project, metrics finance.ProjectMetrics, budget finance.BudgetReport, generatedAt time.Time) string {
	var b strings.Builder
	s := metrics.Summary

	fmt.Fprintf(&b, "# %s\n\n", escape(project.Name))
	fmt.Fprintf(&b, "_Generated on %s_\n\n", generatedAt.Format(finance.DateLayout))

	b.WriteString("## Overview\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Stage | %s (%d%%) |\n", metrics.Stage, project.Progress)
	if project.DeliveryDate != nil {
		fmt.Fprintf(&b, "| Delivery | %s |\n", project.DeliveryDate)
	}
	fmt.Fprintf(&b, "| Units | %d (%d sold, %d available) |\n", len(project.Units), s.SoldCount, s.AvailableCount)
	fmt.Fprintf(&b, "| Total area | %s m² |\n", strings.Replace(decimal.NewFromFloat(metrics.TotalArea).StringFixed(2), ".", ",", 1))
	fmt.Fprintf(&b, "| Total expenses | %s |\n", BRL(metrics.TotalExpenses))
	costMode := "estimated per unit"
	if metrics.ProportionalCost {
		costMode = "actual spend allocated by area"
	}
	fmt.Fprintf(&b, "| Cost basis | %s |\n\n", costMode)

	b.WriteString("## Sales\n\n")
	b.WriteString("| | |\n|---|---|\n")
	fmt.Fprintf(&b, "| Realized revenue | %s |\n", BRL(s.RealizedRevenue))
	fmt.Fprintf(&b, "| Potential revenue | %s |\n", BRL(s.PotentialRevenue))
	fmt.Fprintf(&b, "| Average ROI | %s |\n", Percent(s.AvgROI))
	fmt.Fprintf(&b, "| Average monthly ROI | %s |\n", Percent(s.AvgMonthlyROI))
	fmt.Fprintf(&b, "| Average real monthly ROI | %s |\n\n", Percent(s.AvgRealMonthlyROI))

	if len(metrics.Units) > 0 {
		b.WriteString("## Units\n\n")
		b.WriteString("| Unit | Area (m²) | Status | Cost basis | Sale | Profit | ROI | Monthly ROI |\n")
		b.WriteString("|---|---:|---|---:|---:|---:|---:|---:|\n")
		for _, row := range metrics.Units {
			sale, profit, roi, monthly := "", "", "", ""
			if row.Unit.SaleValue != nil {
				sale = BRL(*row.Unit.SaleValue)
			} else if row.Unit.EstimatedSaleValue != nil {
				sale = "~" + BRL(*row.Unit.EstimatedSaleValue)
			}
			if row.Metrics != nil {
				profit = BRL(row.Metrics.Profit)
				roi = Percent(row.Metrics.NominalTotalROI)
				monthly = Percent(row.Metrics.NominalMonthlyROI)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s |\n",
				escape(row.Unit.Identifier), decimal.NewFromFloat(row.Unit.Area).StringFixed(2), row.Unit.Status,
				BRL(row.CostBasis), sale, profit, roi, monthly)
		}
		b.WriteString("\n")
	}

	if len(budget.Categories) > 0 {
		b.WriteString("## Budget\n\n")
		b.WriteString("| Category | Planned | Spent | Remaining | Used |\n")
		b.WriteString("|---|---:|---:|---:|---:|\n")
		for _, c := range budget.Categories {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n", escape(c.Macro),
				BRL(c.Planned), BRL(c.Spent), BRL(c.Remaining), Percent(c.PercentUsed))
		}
		fmt.Fprintf(&b, "| **Total** | %s | %s | %s | %s |\n", BRL(budget.Total.Planned),
			BRL(budget.Total.Spent), BRL(budget.Total.Remaining), Percent(budget.Total.PercentUsed))
	}
	return b.String()
}

// RenderHTML wraps the rendered Markdown in a minimal standalone page.
func RenderHTML(title, markdown string) (string, error) {
	body, err := utils.RenderMarkdown(markdown)
	if err != nil {
		return "", err
	}
	return `<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>` + htmlEscaper.Replace(title) + `</title>
<style>body{font-family:sans-serif;max-width:960px;margin:2em auto}table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:4px 8px}</style>
</head><body>
` + body + `</body></html>
`, nil
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// escape keeps user text from breaking table rows.
func escape(s string) string {
	return strings.NewReplacer("|", `\|`, "\n", " ").Replace(s)
}
