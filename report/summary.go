// Package report turns the aggregated dataset into headline facts, console tables and
// chart series.
package report

import (
	"fmt"

	"github.com/pivolan/sales_analyzer/analysis"
	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/stats"
)

// Summarize computes the headline facts of a cleaned and aggregated dataset.
func Summarize(ds *models.Dataset, res *analysis.Result) (*models.Summary, error) {
	sales := ds.SalesValues()
	mean, err := stats.Mean(sales)
	if err != nil {
		return nil, fmt.Errorf("mean of sales: %w", err)
	}
	min, max, err := stats.MinMax(sales)
	if err != nil {
		return nil, fmt.Errorf("range of sales: %w", err)
	}
	first, last, _ := ds.DateRange()

	summary := &models.Summary{
		RecordCount: ds.Len(),
		StartDate:   first,
		EndDate:     last,
		MeanSales:   mean,
		MinSales:    min,
		MaxSales:    max,
		TotalSales:  stats.Sum(sales),
	}

	if summary.BestCategory, err = bestGroup(res.ByCategory); err != nil {
		return nil, err
	}
	if summary.BestRegion, err = bestGroup(res.ByRegion); err != nil {
		return nil, err
	}
	if summary.BestMonth, err = bestMonth(res.Monthly); err != nil {
		return nil, err
	}
	return summary, nil
}

// bestGroup picks the group with the highest mean. The first group in order wins a tie
// and groups without a mean never win.
func bestGroup(agg models.Aggregate) (models.Best, error) {
	var best models.Best
	found := false
	for _, g := range agg.Groups {
		if !g.Mean.Valid {
			continue
		}
		if !found || g.Mean.Value > best.Value {
			best = models.Best{Key: g.Key, Value: g.Mean.Value}
			found = true
		}
	}
	if !found {
		return best, fmt.Errorf("best %s: %w", agg.Dimension, stats.ErrEmptyData)
	}
	return best, nil
}

func bestMonth(monthly []models.MonthlyTotal) (models.Best, error) {
	if len(monthly) == 0 {
		return models.Best{}, fmt.Errorf("best month: %w", stats.ErrEmptyData)
	}
	best := models.Best{Key: monthly[0].Month, Value: monthly[0].Sum}
	for _, m := range monthly[1:] {
		if m.Sum > best.Value {
			best = models.Best{Key: m.Month, Value: m.Sum}
		}
	}
	return best, nil
}
