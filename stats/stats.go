// Package stats holds the numeric helpers shared by the cleaner, the aggregator and
// the reporter.
package stats

import (
	"errors"
	"math"
	"sort"

	"github.com/pivolan/sales_analyzer/domain/models"
)

// ErrEmptyData is returned when a statistic is requested over zero values.
var ErrEmptyData = errors.New("empty data: statistic requested over zero non-null values")

func Sum(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum
}

func Mean(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyData
	}
	return Sum(values) / float64(len(values)), nil
}

func Median(values []float64) (float64, error) {
	if len(values) == 0 {
		return 0, ErrEmptyData
	}
	sorted := sortedCopy(values)
	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2, nil
	}
	return sorted[len(sorted)/2], nil
}

// StdDev is the sample standard deviation (n-1 denominator). It needs at least two values.
func StdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, ErrEmptyData
	}
	var acc Accumulator
	for _, v := range values {
		acc.Add(v)
	}
	return acc.StdDev().Value, nil
}

func MinMax(values []float64) (min, max float64, err error) {
	if len(values) == 0 {
		return 0, 0, ErrEmptyData
	}
	min, max = values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max, nil
}

// Quantile interpolates linearly between the closest ranks of an already sorted slice.
func Quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	pos := p * float64(len(sorted)-1)
	floor := math.Floor(pos)
	ceil := math.Ceil(pos)

	if floor == ceil {
		return sorted[int(pos)]
	}

	lower := sorted[int(floor)]
	upper := sorted[int(ceil)]
	fraction := pos - floor

	return lower + fraction*(upper-lower)
}

// RoundToTwo rounds half away from zero to two decimal places.
func RoundToTwo(num float64) float64 {
	return math.Round(num*100) / 100
}

// Accumulator keeps a running count, mean and sum of squared deviations (Welford).
type Accumulator struct {
	count int
	mean  float64
	m2    float64
}

func (a *Accumulator) Add(v float64) {
	a.count++
	delta := v - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (v - a.mean)
}

func (a *Accumulator) Count() int {
	return a.count
}

func (a *Accumulator) Mean() models.Metric {
	if a.count == 0 {
		return models.NoData
	}
	return models.Some(a.mean)
}

func (a *Accumulator) StdDev() models.Metric {
	if a.count < 2 {
		return models.NoData
	}
	return models.Some(math.Sqrt(a.m2 / float64(a.count-1)))
}

// Describe computes the count, mean, spread and quartiles of a column.
func Describe(column string, values []float64) (*models.Describe, error) {
	if len(values) == 0 {
		return nil, ErrEmptyData
	}
	sorted := sortedCopy(values)
	var acc Accumulator
	for _, v := range values {
		acc.Add(v)
	}
	return &models.Describe{
		Column: column,
		Count:  len(values),
		Mean:   acc.Mean().Value,
		Std:    acc.StdDev(),
		Min:    sorted[0],
		Q25:    Quantile(sorted, 0.25),
		Q50:    Quantile(sorted, 0.5),
		Q75:    Quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}, nil
}

// Histogram splits [min, max] into equal-width bins; the last bin is closed on the right.
func Histogram(values []float64, bins int) ([]models.HistogramData, error) {
	if len(values) == 0 {
		return nil, ErrEmptyData
	}
	if bins < 1 {
		bins = 1
	}
	min, max, _ := MinMax(values)
	width := (max - min) / float64(bins)
	if width == 0 {
		return []models.HistogramData{{RangeStart: min, RangeEnd: max, Count: len(values)}}, nil
	}

	result := make([]models.HistogramData, bins)
	for i := range result {
		result[i].RangeStart = min + float64(i)*width
		result[i].RangeEnd = min + float64(i+1)*width
	}
	result[bins-1].RangeEnd = max

	for _, v := range values {
		idx := int((v - min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		result[idx].Count++
	}
	return result, nil
}

// FiveNumber returns the box-plot summary. Whiskers stop at the most extreme values
// within 1.5 IQR of the quartiles; values beyond them are outliers.
func FiveNumber(values []float64) (*models.BoxSummary, error) {
	if len(values) == 0 {
		return nil, ErrEmptyData
	}
	sorted := sortedCopy(values)
	q1 := Quantile(sorted, 0.25)
	q3 := Quantile(sorted, 0.75)
	iqr := q3 - q1
	lowerBound := q1 - 1.5*iqr
	upperBound := q3 + 1.5*iqr

	box := &models.BoxSummary{
		Q1:       q1,
		Median:   Quantile(sorted, 0.5),
		Q3:       q3,
		Min:      q1,
		Max:      q3,
		Outliers: make([]float64, 0),
	}
	for _, v := range sorted {
		if v < lowerBound || v > upperBound {
			box.Outliers = append(box.Outliers, v)
			continue
		}
		if v < box.Min {
			box.Min = v
		}
		if v > box.Max {
			box.Max = v
		}
	}
	return box, nil
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}
