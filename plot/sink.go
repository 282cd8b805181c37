package plot

import (
	"errors"
	"fmt"

	"github.com/pivolan/sales_analyzer/domain/models"
)

type Kind string

const (
	KindLine      Kind = "line"
	KindBar       Kind = "bar"
	KindHistogram Kind = "histogram"
	KindBoxPlot   Kind = "boxplot"
)

// Series is an ordered labeled numeric series.
type Series struct {
	Name   string
	Labels []string
	Values []float64
}

func (s Series) Len() int {
	return len(s.Values)
}

// BoxGroup holds the raw values of one box-plot group.
type BoxGroup struct {
	Label  string
	Values []float64
}

// ChartSink draws the four chart kinds the report produces. Implementations decide
// what drawing means: a PNG file, an HTML page, a terminal table or nothing at all.
type ChartSink interface {
	Line(label string, series Series) error
	Bar(label string, series Series) error
	Histogram(label string, bins []models.HistogramData) error
	BoxPlot(label string, groups []BoxGroup) error
}

// Flusher is implemented by sinks that buffer charts and write them out at the end.
type Flusher interface {
	Flush() error
}

// RenderError reports a failure of a chart sink.
type RenderError struct {
	Chart string
	Err   error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("rendering %q: %v", e.Chart, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// RenderedChart is one chart image produced by a sink.
type RenderedChart struct {
	Kind  Kind
	Label string
	Path  string
	PNG   []byte
}

var errSeriesLength = errors.New("labels and values differ in length")

func checkSeries(series Series) error {
	if len(series.Labels) != len(series.Values) {
		return fmt.Errorf("%w: %d labels, %d values", errSeriesLength, len(series.Labels), len(series.Values))
	}
	if len(series.Values) == 0 {
		return errors.New("empty series")
	}
	return nil
}

type NopSink struct{}

func (NopSink) Line(string, Series) error                      { return nil }
func (NopSink) Bar(string, Series) error                       { return nil }
func (NopSink) Histogram(string, []models.HistogramData) error { return nil }
func (NopSink) BoxPlot(string, []BoxGroup) error               { return nil }

// MultiSink hands every chart to each sink in turn and stops at the first error.
type MultiSink []ChartSink

func (m MultiSink) Line(label string, series Series) error {
	for _, s := range m {
		if err := s.Line(label, series); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Bar(label string, series Series) error {
	for _, s := range m {
		if err := s.Bar(label, series); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Histogram(label string, bins []models.HistogramData) error {
	for _, s := range m {
		if err := s.Histogram(label, bins); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) BoxPlot(label string, groups []BoxGroup) error {
	for _, s := range m {
		if err := s.BoxPlot(label, groups); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiSink) Flush() error {
	for _, s := range m {
		if f, ok := s.(Flusher); ok {
			if err := f.Flush(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Charts collects the images of every PNG sink in the fan-out.
func (m MultiSink) Charts() []RenderedChart {
	var charts []RenderedChart
	for _, s := range m {
		if p, ok := s.(*PNGSink); ok {
			charts = append(charts, p.Charts()...)
		}
	}
	return charts
}

// Call is one chart handed to a Recorder.
type Call struct {
	Kind   Kind
	Label  string
	Series Series
	Bins   []models.HistogramData
	Groups []BoxGroup
}

// Recorder keeps every chart it is handed. Setting FailOn makes that kind fail.
type Recorder struct {
	Calls  []Call
	FailOn Kind
	Err    error
}

func (r *Recorder) record(c Call) error {
	if r.FailOn != "" && r.FailOn == c.Kind {
		if r.Err != nil {
			return r.Err
		}
		return fmt.Errorf("%s chart failed", c.Kind)
	}
	r.Calls = append(r.Calls, c)
	return nil
}

func (r *Recorder) Line(label string, series Series) error {
	return r.record(Call{Kind: KindLine, Label: label, Series: series})
}

func (r *Recorder) Bar(label string, series Series) error {
	return r.record(Call{Kind: KindBar, Label: label, Series: series})
}

func (r *Recorder) Histogram(label string, bins []models.HistogramData) error {
	return r.record(Call{Kind: KindHistogram, Label: label, Bins: bins})
}

func (r *Recorder) BoxPlot(label string, groups []BoxGroup) error {
	return r.record(Call{Kind: KindBoxPlot, Label: label, Groups: groups})
}

func (r *Recorder) Kinds() []Kind {
	kinds := make([]Kind, len(r.Calls))
	for i, c := range r.Calls {
		kinds[i] = c.Kind
	}
	return kinds
}
