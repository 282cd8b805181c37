package report

import (
	"log"

	"github.com/pivolan/sales_analyzer/analysis"
	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/plot"
	"github.com/pivolan/sales_analyzer/stats"
)

const (
	ChartMonthlyTrend  = "Monthly Sales Trend"
	ChartCategoryMeans = "Average Sales by Product Category"
	ChartDistribution  = "Distribution of Daily Sales"
	ChartRegionBoxPlot = "Sales Distribution by Region"

	HistogramBins = 30
)

type Reporter struct {
	Sink plot.ChartSink
}

// Render hands the four report charts to the sink in a fixed order. The first sink
// failure stops rendering and comes back as a *plot.RenderError.
func (r Reporter) Render(ds *models.Dataset, res *analysis.Result) error {
	months := make([]string, len(res.Monthly))
	sums := make([]float64, len(res.Monthly))
	for i, m := range res.Monthly {
		months[i] = m.Month
		sums[i] = m.Sum
	}
	if err := r.Sink.Line(ChartMonthlyTrend, plot.Series{Name: "Sales", Labels: months, Values: sums}); err != nil {
		return &plot.RenderError{Chart: ChartMonthlyTrend, Err: err}
	}

	keys, means := res.ByCategory.Means()
	if err := r.Sink.Bar(ChartCategoryMeans, plot.Series{Name: "Sales", Labels: keys, Values: means}); err != nil {
		return &plot.RenderError{Chart: ChartCategoryMeans, Err: err}
	}

	bins, err := stats.Histogram(ds.SalesValues(), HistogramBins)
	if err != nil {
		return err
	}
	if err := r.Sink.Histogram(ChartDistribution, bins); err != nil {
		return &plot.RenderError{Chart: ChartDistribution, Err: err}
	}

	if err := r.Sink.BoxPlot(ChartRegionBoxPlot, salesByRegion(ds)); err != nil {
		return &plot.RenderError{Chart: ChartRegionBoxPlot, Err: err}
	}

	log.Printf("reporter: 4 charts rendered")
	return nil
}

// salesByRegion collects the raw sales amounts of each region in first-seen order.
func salesByRegion(ds *models.Dataset) []plot.BoxGroup {
	var groups []plot.BoxGroup
	index := make(map[models.Region]int)
	for _, rec := range ds.Records {
		if rec.Sales == nil {
			continue
		}
		i, ok := index[rec.Region]
		if !ok {
			i = len(groups)
			index[rec.Region] = i
			groups = append(groups, plot.BoxGroup{Label: string(rec.Region)})
		}
		groups[i].Values = append(groups[i].Values, *rec.Sales)
	}
	return groups
}
