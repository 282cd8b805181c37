package plot

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pivolan/sales_analyzer/domain/models"
)

const barWidth = 40

// TableSink prints each chart as a go-pretty table, with a text bar per row where it makes sense.
type TableSink struct {
	Out   io.Writer
	Style table.Style
}

func NewTableSink(out io.Writer) *TableSink {
	return &TableSink{Out: out, Style: table.StyleLight}
}

func (s *TableSink) Line(label string, series Series) error {
	return s.seriesTable(label, series)
}

func (s *TableSink) Bar(label string, series Series) error {
	return s.seriesTable(label, series)
}

func (s *TableSink) seriesTable(label string, series Series) error {
	if err := checkSeries(series); err != nil {
		return err
	}
	_, hi := minMax(series.Values)
	t := s.newTable()
	t.AppendHeader(table.Row{"Label", series.Name, ""})
	for i, v := range series.Values {
		t.AppendRow(table.Row{series.Labels[i], fmt.Sprintf("%.2f", v), textBar(v, hi)})
	}
	return s.render(label, t)
}

func (s *TableSink) Histogram(label string, bins []models.HistogramData) error {
	if len(bins) == 0 {
		return fmt.Errorf("histogram %q has no bins", label)
	}
	hi := 0.0
	for _, b := range bins {
		hi = math.Max(hi, float64(b.Count))
	}
	t := s.newTable()
	t.AppendHeader(table.Row{"Range", "Count", ""})
	for _, b := range bins {
		t.AppendRow(table.Row{fmt.Sprintf("%.2f - %.2f", b.RangeStart, b.RangeEnd), b.Count, textBar(float64(b.Count), hi)})
	}
	return s.render(label, t)
}

func (s *TableSink) BoxPlot(label string, groups []BoxGroup) error {
	labels, boxes, err := summarizeGroups(groups)
	if err != nil {
		return err
	}
	t := s.newTable()
	t.AppendHeader(table.Row{"Group", "Min", "Q1", "Median", "Q3", "Max", "Outliers"})
	for i, b := range boxes {
		t.AppendRow(table.Row{
			labels[i],
			fmt.Sprintf("%.2f", b.Min),
			fmt.Sprintf("%.2f", b.Q1),
			fmt.Sprintf("%.2f", b.Median),
			fmt.Sprintf("%.2f", b.Q3),
			fmt.Sprintf("%.2f", b.Max),
			len(b.Outliers),
		})
	}
	return s.render(label, t)
}

func (s *TableSink) newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(s.Style)
	return t
}

func (s *TableSink) render(label string, t table.Writer) error {
	_, err := fmt.Fprintf(s.Out, "\n%s:\n%s\n", label, t.Render())
	return err
}

func textBar(v, max float64) string {
	if max <= 0 || v <= 0 {
		return ""
	}
	return strings.Repeat("█", int(math.Round(v/max*barWidth)))
}
