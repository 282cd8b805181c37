package dataset

import (
	"fmt"
	"log"

	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/stats"
)

type CleanReport struct {
	Before  []models.ColumnNulls
	After   []models.ColumnNulls
	Median  float64
	Imputed int
}

// Clean replaces every missing sales amount with the median of the amounts present
// before imputation. The dataset is left untouched when no amount is present.
func Clean(ds *models.Dataset) (*CleanReport, error) {
	report := &CleanReport{Before: ds.NullCounts()}

	median, err := stats.Median(ds.SalesValues())
	if err != nil {
		return nil, fmt.Errorf("median of sales: %w", err)
	}
	report.Median = median

	for i := range ds.Records {
		if ds.Records[i].Sales == nil {
			v := median
			ds.Records[i].Sales = &v
			report.Imputed++
		}
	}
	report.After = ds.NullCounts()

	log.Printf("cleaner: imputed %d missing sales values with median %.2f", report.Imputed, median)
	return report, nil
}
