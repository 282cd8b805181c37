package plot

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"github.com/pivolan/sales_analyzer/domain/models"
	"github.com/pivolan/sales_analyzer/stats"
)

// PNGSink renders every chart with go-chart and writes it to Dir as <prefix>_<kind>_<label>.png.
// Dir may be empty to keep the images in memory only.
type PNGSink struct {
	Dir    string
	Prefix string
	NameY  string

	rendered []RenderedChart
}

func NewPNGSink(dir, prefix string) *PNGSink {
	return &PNGSink{Dir: dir, Prefix: prefix, NameY: "Sales"}
}

func (s *PNGSink) Line(label string, series Series) error {
	graph, err := DrawLine(label, "Total "+s.NameY, series)
	if err != nil {
		return err
	}
	return s.save(KindLine, label, graph)
}

func (s *PNGSink) Bar(label string, series Series) error {
	if err := checkSeries(series); err != nil {
		return err
	}
	graph, err := DrawPlotBar(NewDataXStringsForGraph(series.Labels, series.Values, "Average "+s.NameY, label))
	if err != nil {
		return err
	}
	return s.save(KindBar, label, graph)
}

func (s *PNGSink) Histogram(label string, bins []models.HistogramData) error {
	graph, err := DrawPlotBar(NewDataRangeXValuesForGraph(bins, "Frequency", label))
	if err != nil {
		return err
	}
	return s.save(KindHistogram, label, graph)
}

func (s *PNGSink) BoxPlot(label string, groups []BoxGroup) error {
	labels, boxes, err := summarizeGroups(groups)
	if err != nil {
		return err
	}
	graph, err := DrawBoxPlot(label, s.NameY, labels, boxes)
	if err != nil {
		return err
	}
	return s.save(KindBoxPlot, label, graph)
}

// Charts returns the images rendered so far, in rendering order.
func (s *PNGSink) Charts() []RenderedChart {
	return s.rendered
}

func (s *PNGSink) save(kind Kind, label string, graph []byte) error {
	chart := RenderedChart{Kind: kind, Label: label, PNG: graph}
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return err
		}
		chart.Path = filepath.Join(s.Dir, FileName(s.Prefix, string(kind), label)+".png")
		if err := os.WriteFile(chart.Path, graph, 0644); err != nil {
			return err
		}
		log.Printf("plot: %s chart written to %s", kind, chart.Path)
	}
	s.rendered = append(s.rendered, chart)
	return nil
}

func summarizeGroups(groups []BoxGroup) ([]string, []models.BoxSummary, error) {
	labels := make([]string, 0, len(groups))
	boxes := make([]models.BoxSummary, 0, len(groups))
	for _, g := range groups {
		if len(g.Values) == 0 {
			continue
		}
		box, err := stats.FiveNumber(g.Values)
		if err != nil {
			return nil, nil, fmt.Errorf("group %s: %w", g.Label, err)
		}
		labels = append(labels, g.Label)
		boxes = append(boxes, *box)
	}
	if len(boxes) == 0 {
		return nil, nil, fmt.Errorf("box plot: %w", stats.ErrEmptyData)
	}
	return labels, boxes, nil
}

var nonAlphanumeric = regexp.MustCompile("[^a-zA-Z0-9]+")

// FileName joins the parts into a lowercase ASCII slug usable as a file name.
func FileName(parts ...string) string {
	var cleaned []string
	for _, p := range parts {
		p = nonAlphanumeric.ReplaceAllString(unidecode.Unidecode(p), "_")
		p = strings.Trim(p, "_")
		if p != "" {
			cleaned = append(cleaned, strings.ToLower(p))
		}
	}
	return strings.Join(cleaned, "_")
}
