package plot

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pivolan/sales_analyzer/domain/models"
)

// HTMLSink collects interactive echarts charts and writes them as one page on Flush.
type HTMLSink struct {
	Path  string
	Title string

	charts []components.Charter
}

func NewHTMLSink(path string) *HTMLSink {
	return &HTMLSink{Path: path, Title: "Sales Analysis"}
}

func (s *HTMLSink) Line(label string, series Series) error {
	if err := checkSeries(series); err != nil {
		return err
	}
	items := make([]opts.LineData, series.Len())
	for i, v := range series.Values {
		items[i] = opts.LineData{Value: v}
	}
	line := charts.NewLine()
	line.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: label}))
	line.SetXAxis(series.Labels).AddSeries(series.Name, items)
	s.charts = append(s.charts, line)
	return nil
}

func (s *HTMLSink) Bar(label string, series Series) error {
	if err := checkSeries(series); err != nil {
		return err
	}
	items := make([]opts.BarData, series.Len())
	for i, v := range series.Values {
		items[i] = opts.BarData{Value: v}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: label}))
	bar.SetXAxis(series.Labels).AddSeries(series.Name, items)
	s.charts = append(s.charts, bar)
	return nil
}

func (s *HTMLSink) Histogram(label string, bins []models.HistogramData) error {
	if len(bins) == 0 {
		return fmt.Errorf("histogram %q has no bins", label)
	}
	labels := make([]string, len(bins))
	items := make([]opts.BarData, len(bins))
	for i, b := range bins {
		labels[i] = fmt.Sprintf("%.f-%.f", b.RangeStart, b.RangeEnd)
		items[i] = opts.BarData{Value: b.Count}
	}
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: label}))
	bar.SetXAxis(labels).AddSeries("Frequency", items)
	s.charts = append(s.charts, bar)
	return nil
}

func (s *HTMLSink) BoxPlot(label string, groups []BoxGroup) error {
	labels, boxes, err := summarizeGroups(groups)
	if err != nil {
		return err
	}
	items := make([]opts.BoxPlotData, len(boxes))
	for i, b := range boxes {
		items[i] = opts.BoxPlotData{Name: labels[i], Value: []float64{b.Min, b.Q1, b.Median, b.Q3, b.Max}}
	}
	box := charts.NewBoxPlot()
	box.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: label}))
	box.SetXAxis(labels).AddSeries("Sales", items)
	s.charts = append(s.charts, box)
	return nil
}

func (s *HTMLSink) Flush() error {
	if len(s.charts) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0755); err != nil {
		return err
	}
	f, err := os.Create(s.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	page := components.NewPage()
	page.PageTitle = s.Title
	page.AddCharts(s.charts...)
	if err := page.Render(f); err != nil {
		return fmt.Errorf("error rendering html page: %w", err)
	}
	log.Printf("plot: %d charts written to %s", len(s.charts), s.Path)
	s.charts = nil
	return nil
}
