package report

import (
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/pivolan/sales_analyzer/domain/models"
)

const dateLayout = "2006-01-02"

var printer = message.NewPrinter(language.English)

// Currency formats an amount as dollars with thousands separators and two decimals.
func Currency(amount float64) string {
	return printer.Sprintf("$%.2f", amount)
}

// WriteFindings prints the key findings in their fixed section order.
func WriteFindings(w io.Writer, s *models.Summary) error {
	_, err := printer.Fprintf(w, `
=== Key Findings from the Sales Analysis ===

1. Data Quality:
- Total records analyzed: %d
- Time period covered: %s to %s

2. Sales Performance:
- Average daily sales: %s
- Highest daily sales: %s
- Lowest daily sales: %s
- Total sales for the period: %s

3. Product Performance:
- Best performing product category: %s
- Average sales for %s: %s

4. Regional Performance:
- Best performing region: %s
- Average sales for %s: %s

5. Seasonal Patterns:
- Highest sales month: %s
- Sales in %s: %s
`,
		s.RecordCount,
		s.StartDate.Format(dateLayout), s.EndDate.Format(dateLayout),
		Currency(s.MeanSales),
		Currency(s.MaxSales),
		Currency(s.MinSales),
		Currency(s.TotalSales),
		s.BestCategory.Key,
		s.BestCategory.Key, Currency(s.BestCategory.Value),
		s.BestRegion.Key,
		s.BestRegion.Key, Currency(s.BestRegion.Value),
		s.BestMonth.Key,
		s.BestMonth.Key, Currency(s.BestMonth.Value),
	)
	return err
}
