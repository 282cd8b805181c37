package analysis

import (
	"errors"
	"fmt"
	"log"

	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/stats"
)

var ErrUncleanedData = errors.New("record has no sales amount; clean the dataset first")

const (
	DimensionCategory = "category"
	DimensionRegion   = "region"
	DimensionMonth    = "month"
)

type Result struct {
	ByCategory models.Aggregate
	ByRegion   models.Aggregate
	Monthly    []models.MonthlyTotal
}

// groupAccumulator collects per-key running statistics while remembering the order in
// which keys were first seen.
type groupAccumulator struct {
	order []string
	accs  map[string]*stats.Accumulator
	sums  map[string]float64
}

func newGroupAccumulator() *groupAccumulator {
	return &groupAccumulator{
		accs: make(map[string]*stats.Accumulator),
		sums: make(map[string]float64),
	}
}

func (g *groupAccumulator) add(key string, v float64) {
	acc, ok := g.accs[key]
	if !ok {
		acc = &stats.Accumulator{}
		g.accs[key] = acc
		g.order = append(g.order, key)
	}
	acc.Add(v)
	g.sums[key] += v
}

// aggregate finalizes the groups in first-seen order, then appends labels of the closed
// set that never appeared.
func (g *groupAccumulator) aggregate(dimension string, labels []string) models.Aggregate {
	result := models.Aggregate{Dimension: dimension}
	for _, key := range g.order {
		acc := g.accs[key]
		result.Groups = append(result.Groups, models.GroupStat{
			Key:    key,
			Count:  acc.Count(),
			Mean:   rounded(acc.Mean()),
			StdDev: rounded(acc.StdDev()),
		})
	}
	for _, label := range labels {
		if _, ok := g.accs[label]; ok {
			continue
		}
		result.Groups = append(result.Groups, models.GroupStat{
			Key:    label,
			Mean:   models.NoData,
			StdDev: models.NoData,
		})
	}
	return result
}

func (g *groupAccumulator) totals() []models.MonthlyTotal {
	totals := make([]models.MonthlyTotal, 0, len(g.order))
	for _, key := range g.order {
		totals = append(totals, models.MonthlyTotal{
			Month: key,
			Count: g.accs[key].Count(),
			Sum:   stats.RoundToTwo(g.sums[key]),
		})
	}
	return totals
}

func rounded(m models.Metric) models.Metric {
	if !m.Valid {
		return m
	}
	return models.Some(stats.RoundToTwo(m.Value))
}

// Aggregate groups the cleaned dataset by category, region and calendar month in a
// single pass. It fills Record.Month as the derived time bucket.
func Aggregate(ds *models.Dataset) (*Result, error) {
	byCategory := newGroupAccumulator()
	byRegion := newGroupAccumulator()
	byMonth := newGroupAccumulator()

	for i, rec := range ds.Records {
		if rec.Sales == nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.Date.Format("2006-01-02"), ErrUncleanedData)
		}
	}

	for i := range ds.Records {
		rec := &ds.Records[i]
		rec.Month = rec.Date.Format(models.MonthLayout)

		sales := *rec.Sales
		byCategory.add(string(rec.Category), sales)
		byRegion.add(string(rec.Region), sales)
		byMonth.add(rec.Month, sales)
	}

	res := &Result{
		ByCategory: byCategory.aggregate(DimensionCategory, models.CategoryLabels()),
		ByRegion:   byRegion.aggregate(DimensionRegion, models.RegionLabels()),
		Monthly:    byMonth.totals(),
	}
	log.Printf("aggregator: %d records into %d categories, %d regions, %d months",
		ds.Len(), len(byCategory.order), len(byRegion.order), len(res.Monthly))
	return res, nil
}

