package models

import (
	"strconv"
	"time"

	"github.com/pivolan/go_utils"
)

type Category string
type Region string

const (
	Electronics Category = "Electronics"
	Clothing    Category = "Clothing"
	Books       Category = "Books"
	Food        Category = "Food"
)

const (
	North Region = "North"
	South Region = "South"
	East  Region = "East"
	West  Region = "West"
)

// Categories and Regions are the closed label sets in declared order.
var (
	Categories = []Category{Electronics, Clothing, Books, Food}
	Regions    = []Region{North, South, East, West}
)

// MonthLayout formats the monthly time bucket, e.g. 2023-01.
const MonthLayout = "2006-01"

func CategoryLabels() []string {
	labels := make([]string, len(Categories))
	for i, c := range Categories {
		labels[i] = string(c)
	}
	return labels
}

func RegionLabels() []string {
	labels := make([]string, len(Regions))
	for i, r := range Regions {
		labels[i] = string(r)
	}
	return labels
}

func IsKnownCategory(c Category) bool {
	return go_utils.InArray(string(c), CategoryLabels())
}

func IsKnownRegion(r Region) bool {
	return go_utils.InArray(string(r), RegionLabels())
}

type Record struct {
	Date     time.Time
	Category Category
	Region   Region
	Sales    *float64 // nil when the amount is missing
	Units    int
	Month    string
}

type Dataset struct {
	Records []Record
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

// SalesValues returns the non-null sales amounts in record order.
func (d *Dataset) SalesValues() []float64 {
	values := make([]float64, 0, len(d.Records))
	for _, r := range d.Records {
		if r.Sales != nil {
			values = append(values, *r.Sales)
		}
	}
	return values
}

func (d *Dataset) UnitValues() []float64 {
	values := make([]float64, len(d.Records))
	for i, r := range d.Records {
		values[i] = float64(r.Units)
	}
	return values
}

type ColumnNulls struct {
	Column string
	Nulls  int
}

// NullCounts reports missing values per column in column order.
func (d *Dataset) NullCounts() []ColumnNulls {
	var date, category, region, sales int
	for _, r := range d.Records {
		if r.Date.IsZero() {
			date++
		}
		if r.Category == "" {
			category++
		}
		if r.Region == "" {
			region++
		}
		if r.Sales == nil {
			sales++
		}
	}
	return []ColumnNulls{
		{Column: "date", Nulls: date},
		{Column: "category", Nulls: category},
		{Column: "region", Nulls: region},
		{Column: "sales", Nulls: sales},
		{Column: "units", Nulls: 0},
	}
}

// DateRange returns the earliest and latest record dates; ok is false for an empty dataset.
func (d *Dataset) DateRange() (first, last time.Time, ok bool) {
	for i, r := range d.Records {
		if i == 0 || r.Date.Before(first) {
			first = r.Date
		}
		if i == 0 || r.Date.After(last) {
			last = r.Date
		}
	}
	return first, last, len(d.Records) > 0
}

// Metric is a statistic that may be undefined. The zero value is NoData.
type Metric struct {
	Value float64
	Valid bool
}

var NoData = Metric{}

func Some(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

func (m Metric) String() string {
	if !m.Valid {
		return "no data"
	}
	return strconv.FormatFloat(m.Value, 'f', 2, 64)
}

type GroupStat struct {
	Key    string
	Count  int
	Mean   Metric
	StdDev Metric
}

type Aggregate struct {
	Dimension string
	Groups    []GroupStat
}

func (a Aggregate) Get(key string) (GroupStat, bool) {
	for _, g := range a.Groups {
		if g.Key == key {
			return g, true
		}
	}
	return GroupStat{}, false
}

func (a Aggregate) TotalCount() int {
	total := 0
	for _, g := range a.Groups {
		total += g.Count
	}
	return total
}

func (a Aggregate) Keys() []string {
	keys := make([]string, len(a.Groups))
	for i, g := range a.Groups {
		keys[i] = g.Key
	}
	return keys
}

// Means returns the keys and means of the groups that have a mean, in group order.
func (a Aggregate) Means() ([]string, []float64) {
	var keys []string
	var means []float64
	for _, g := range a.Groups {
		if g.Mean.Valid {
			keys = append(keys, g.Key)
			means = append(means, g.Mean.Value)
		}
	}
	return keys, means
}

type MonthlyTotal struct {
	Month string
	Count int
	Sum   float64
}

type HistogramData struct {
	RangeStart float64
	RangeEnd   float64
	Count      int
}

type BoxSummary struct {
	Min      float64
	Q1       float64
	Median   float64
	Q3       float64
	Max      float64
	Outliers []float64
}

type Describe struct {
	Column string
	Count  int
	Mean   float64
	Std    Metric
	Min    float64
	Q25    float64
	Q50    float64
	Q75    float64
	Max    float64
}

type Best struct {
	Key   string
	Value float64
}

type Summary struct {
	RecordCount  int
	StartDate    time.Time
	EndDate      time.Time
	MeanSales    float64
	MinSales     float64
	MaxSales     float64
	TotalSales   float64
	BestCategory Best
	BestRegion   Best
	BestMonth    Best
}

type Run struct {
	ID         string
	Seed       int64
	CreatedAt  time.Time
	Summary    Summary
	ByCategory Aggregate
	ByRegion   Aggregate
	Monthly    []MonthlyTotal
}
