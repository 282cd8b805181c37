package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/sales_analyzer/analysis"
	"github.com/pivolan/sales_analyzer/dataset"
	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/stats"
)

var columnTypes = map[string]string{
	"date":     "date",
	"category": "category",
	"region":   "category",
	"sales":    "float64",
	"units":    "int",
}

// WriteAnalysis prints the exploration, cleaning and grouped statistics of the dataset.
func WriteAnalysis(w io.Writer, ds *models.Dataset, clean *dataset.CleanReport, res *analysis.Result) error {
	var tables []section

	info := newTable()
	info.AppendHeader(table.Row{"Column", "Non-Null", "Missing", "Type"})
	for _, c := range clean.Before {
		info.AppendRow(table.Row{c.Column, ds.Len() - c.Nulls, c.Nulls, columnTypes[c.Column]})
	}
	first, last, _ := ds.DateRange()
	info.AppendSeparator()
	info.AppendRow(table.Row{"records", ds.Len(), "", first.Format(dateLayout) + " .. " + last.Format(dateLayout)})
	tables = append(tables, section{"Dataset Info", info})

	after := newTable()
	after.AppendHeader(table.Row{"Column", "Missing"})
	for _, c := range clean.After {
		after.AppendRow(table.Row{c.Column, c.Nulls})
	}
	after.AppendSeparator()
	after.AppendRow(table.Row{"imputed", fmt.Sprintf("%d (median %.2f)", clean.Imputed, clean.Median)})
	tables = append(tables, section{"Missing values after cleaning", after})

	describe, err := describeTable(ds)
	if err != nil {
		return err
	}
	tables = append(tables,
		section{"Basic statistics for numerical columns", describe},
		section{"Average sales by product category", groupTable("Product", res.ByCategory)},
		section{"Average sales by region", groupTable("Region", res.ByRegion)},
		section{"Monthly sales totals", monthlyTable(res.Monthly)},
	)

	if _, err := fmt.Fprintln(w, "=== Data Exploration and Cleaning ==="); err != nil {
		return err
	}
	for i, sec := range tables {
		if i == 2 {
			if _, err := fmt.Fprintln(w, "\n=== Basic Statistical Analysis ==="); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "\n%s:\n%s\n", sec.title, sec.table.Render()); err != nil {
			return err
		}
	}
	return nil
}

// section is a table printed under its own heading line.
type section struct {
	title string
	table table.Writer
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleDefault)
	return t
}

func describeTable(ds *models.Dataset) (table.Writer, error) {
	sales, err := stats.Describe("Sales", ds.SalesValues())
	if err != nil {
		return nil, fmt.Errorf("describe sales: %w", err)
	}
	units, err := stats.Describe("Units", ds.UnitValues())
	if err != nil {
		return nil, fmt.Errorf("describe units: %w", err)
	}

	t := newTable()
	t.AppendHeader(table.Row{"", sales.Column, units.Column})
	t.AppendRows([]table.Row{
		{"count", sales.Count, units.Count},
		{"mean", twoDecimals(sales.Mean), twoDecimals(units.Mean)},
		{"std", sales.Std.String(), units.Std.String()},
		{"min", twoDecimals(sales.Min), twoDecimals(units.Min)},
		{"25%", twoDecimals(sales.Q25), twoDecimals(units.Q25)},
		{"50%", twoDecimals(sales.Q50), twoDecimals(units.Q50)},
		{"75%", twoDecimals(sales.Q75), twoDecimals(units.Q75)},
		{"max", twoDecimals(sales.Max), twoDecimals(units.Max)},
	})
	return t, nil
}

func groupTable(keyName string, agg models.Aggregate) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{keyName, "mean", "count", "std"})
	for _, g := range agg.Groups {
		t.AppendRow(table.Row{g.Key, g.Mean.String(), g.Count, g.StdDev.String()})
	}
	return t
}

func monthlyTable(monthly []models.MonthlyTotal) table.Writer {
	t := newTable()
	t.AppendHeader(table.Row{"Month", "Sales"})
	for _, m := range monthly {
		t.AppendRow(table.Row{m.Month, twoDecimals(m.Sum)})
	}
	return t
}

func twoDecimals(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
