package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivolan/sales_analyzer/analysis"
	"github.com/pivolan/sales_analyzer/dataset"
	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/plot"
	"github.com/pivolan/sales_analyzer/stats"
)

type row struct {
	date     string
	category models.Category
	region   models.Region
	sales    float64
}

func buildDataset(t *testing.T, rows ...row) *models.Dataset {
	t.Helper()
	ds := &models.Dataset{}
	for _, r := range rows {
		date, err := time.Parse("2006-01-02", r.date)
		require.NoError(t, err)
		sales := r.sales
		ds.Records = append(ds.Records, models.Record{Date: date, Category: r.category, Region: r.region, Sales: &sales, Units: 10})
	}
	return ds
}

func aggregated(t *testing.T, ds *models.Dataset) *analysis.Result {
	t.Helper()
	res, err := analysis.Aggregate(ds)
	require.NoError(t, err)
	return res
}

func sampleDataset(t *testing.T) *models.Dataset {
	return buildDataset(t,
		row{"2023-01-30", models.Food, models.West, 100},
		row{"2023-01-31", models.Books, models.East, 300},
		row{"2023-02-01", models.Food, models.West, 200},
		row{"2023-02-02", models.Books, models.North, 150},
	)
}

func TestSummarize(t *testing.T) {
	ds := sampleDataset(t)
	summary, err := Summarize(ds, aggregated(t, ds))
	require.NoError(t, err)

	assert.Equal(t, 4, summary.RecordCount)
	assert.Equal(t, "2023-01-30", summary.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2023-02-02", summary.EndDate.Format("2006-01-02"))
	assert.InDelta(t, 187.5, summary.MeanSales, 1e-9)
	assert.Equal(t, 100.0, summary.MinSales)
	assert.Equal(t, 300.0, summary.MaxSales)
	assert.Equal(t, 750.0, summary.TotalSales)
	assert.Equal(t, models.Best{Key: "Books", Value: 225}, summary.BestCategory)
	assert.Equal(t, models.Best{Key: "East", Value: 300}, summary.BestRegion)
	assert.Equal(t, models.Best{Key: "2023-01", Value: 400}, summary.BestMonth)
}

func TestSummarizeTieGoesToFirstSeen(t *testing.T) {
	ds := buildDataset(t,
		row{"2023-03-01", models.Food, models.South, 500},
		row{"2023-03-02", models.Electronics, models.North, 500},
		row{"2023-04-01", models.Clothing, models.South, 500},
		row{"2023-04-02", models.Clothing, models.North, 500},
	)
	summary, err := Summarize(ds, aggregated(t, ds))
	require.NoError(t, err)

	assert.Equal(t, "Food", summary.BestCategory.Key)
	assert.Equal(t, "South", summary.BestRegion.Key)
	assert.Equal(t, "2023-03", summary.BestMonth.Key)
}

func TestBestGroupSkipsNoData(t *testing.T) {
	agg := models.Aggregate{Dimension: "category", Groups: []models.GroupStat{
		{Key: "Books", Count: 0, Mean: models.NoData},
		{Key: "Food", Count: 1, Mean: models.Some(-5)},
	}}
	best, err := bestGroup(agg)
	require.NoError(t, err)
	assert.Equal(t, "Food", best.Key)

	_, err = bestGroup(models.Aggregate{Dimension: "region", Groups: []models.GroupStat{{Key: "East"}}})
	assert.ErrorIs(t, err, stats.ErrEmptyData)
}

func TestSummarizeEmptyDataset(t *testing.T) {
	ds := &models.Dataset{}
	_, err := Summarize(ds, aggregated(t, ds))
	assert.ErrorIs(t, err, stats.ErrEmptyData)
}

func TestRenderOrder(t *testing.T) {
	ds := sampleDataset(t)
	rec := &plot.Recorder{}
	require.NoError(t, Reporter{Sink: rec}.Render(ds, aggregated(t, ds)))

	assert.Equal(t, []plot.Kind{plot.KindLine, plot.KindBar, plot.KindHistogram, plot.KindBoxPlot}, rec.Kinds())
	labels := make([]string, len(rec.Calls))
	for i, c := range rec.Calls {
		labels[i] = c.Label
	}
	assert.Equal(t, []string{ChartMonthlyTrend, ChartCategoryMeans, ChartDistribution, ChartRegionBoxPlot}, labels)

	line := rec.Calls[0].Series
	assert.Equal(t, []string{"2023-01", "2023-02"}, line.Labels)
	assert.Equal(t, []float64{400, 350}, line.Values)

	bar := rec.Calls[1].Series
	assert.Equal(t, []string{"Food", "Books"}, bar.Labels)
	assert.Equal(t, []float64{150, 225}, bar.Values)

	bins := rec.Calls[2].Bins
	require.Len(t, bins, HistogramBins)
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	assert.Equal(t, 4, total)

	groups := rec.Calls[3].Groups
	require.Len(t, groups, 3)
	assert.Equal(t, "West", groups[0].Label)
	assert.Equal(t, []float64{100, 200}, groups[0].Values)
	assert.Equal(t, "East", groups[1].Label)
	assert.Equal(t, "North", groups[2].Label)
}

func TestRenderStopsAtFirstFailure(t *testing.T) {
	ds := sampleDataset(t)
	cause := errors.New("no space left on device")
	rec := &plot.Recorder{FailOn: plot.KindHistogram, Err: cause}

	err := Reporter{Sink: rec}.Render(ds, aggregated(t, ds))
	var renderErr *plot.RenderError
	require.ErrorAs(t, err, &renderErr)
	assert.Equal(t, ChartDistribution, renderErr.Chart)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, []plot.Kind{plot.KindLine, plot.KindBar}, rec.Kinds())
}

func TestCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{999.999, "$1,000.00"},
		{1234.5, "$1,234.50"},
		{365123.456, "$365,123.46"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Currency(tt.amount))
	}
}

func TestWriteFindings(t *testing.T) {
	summary := &models.Summary{
		RecordCount:  1365,
		StartDate:    time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		MeanSales:    1003.4567,
		MinSales:     412.1,
		MaxSales:     1650,
		TotalSales:   366261.69,
		BestCategory: models.Best{Key: "Books", Value: 1034.12},
		BestRegion:   models.Best{Key: "West", Value: 1021.9},
		BestMonth:    models.Best{Key: "2023-07", Value: 32450.5},
	}
	var out bytes.Buffer
	require.NoError(t, WriteFindings(&out, summary))
	text := out.String()

	sections := []string{"1. Data Quality:", "2. Sales Performance:", "3. Product Performance:", "4. Regional Performance:", "5. Seasonal Patterns:"}
	last := -1
	for _, s := range sections {
		idx := strings.Index(text, s)
		require.NotEqual(t, -1, idx, s)
		assert.Greater(t, idx, last, s)
		last = idx
	}

	assert.Contains(t, text, "- Total records analyzed: 1,365")
	assert.Contains(t, text, "- Time period covered: 2023-01-01 to 2023-12-31")
	assert.Contains(t, text, "- Average daily sales: $1,003.46")
	assert.Contains(t, text, "- Total sales for the period: $366,261.69")
	assert.Contains(t, text, "- Average sales for Books: $1,034.12")
	assert.Contains(t, text, "- Best performing region: West")
	assert.Contains(t, text, "- Sales in 2023-07: $32,450.50")
}

func TestWriteAnalysis(t *testing.T) {
	ds := buildDataset(t,
		row{"2023-01-01", models.Food, models.West, 100},
		row{"2023-01-02", models.Food, models.West, 300},
	)
	ds.Records = append(ds.Records, models.Record{Date: time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), Category: models.Books, Region: models.East, Units: 12})

	clean, err := dataset.Clean(ds)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, WriteAnalysis(&out, ds, clean, aggregated(t, ds)))
	text := out.String()

	assert.Contains(t, text, "=== Data Exploration and Cleaning ===")
	assert.Contains(t, text, "=== Basic Statistical Analysis ===")
	assert.Less(t, strings.Index(text, "Cleaning ==="), strings.Index(text, "Analysis ==="))
	assert.Contains(t, text, "1 (median 200.00)")
	assert.Contains(t, text, "Average sales by product category")
	assert.Contains(t, text, "no data")
	assert.Contains(t, text, "600.00")

	for _, heading := range []string{
		"Dataset Info",
		"Missing values after cleaning",
		"Basic statistics for numerical columns",
		"Average sales by product category",
		"Average sales by region",
		"Monthly sales totals",
	} {
		assert.Contains(t, text, "\n"+heading+":\n")
	}
	assert.Less(t, strings.Index(text, "Analysis ==="), strings.Index(text, "Basic statistics for numerical columns:"))
}
