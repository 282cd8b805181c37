package plot

import (
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/sales_analyzer/domain/models"
)

// dataRangeXValuesForGraph is a histogram: one bar per [start, end) bin.
type dataRangeXValuesForGraph struct {
	xStart, xEnd []float64
	yValues      []float64
	nameYAxis    string
	nameGraph    string
}

func NewDataRangeXValuesForGraph(bins []models.HistogramData, nameYAxis, nameGraph string) dataRangeXValuesForGraph {
	d := dataRangeXValuesForGraph{
		xStart:    make([]float64, len(bins)),
		xEnd:      make([]float64, len(bins)),
		yValues:   make([]float64, len(bins)),
		nameYAxis: nameYAxis,
		nameGraph: nameGraph,
	}
	for i, b := range bins {
		d.xStart[i] = b.RangeStart
		d.xEnd[i] = b.RangeEnd
		d.yValues[i] = float64(b.Count)
	}
	return d
}

func (d dataRangeXValuesForGraph) GetNameGraph() string {
	return d.nameGraph
}
func (d dataRangeXValuesForGraph) getNameYAxis() string {
	return d.nameYAxis
}
func (d dataRangeXValuesForGraph) getYValues() []float64 {
	return d.yValues
}
func (d dataRangeXValuesForGraph) getXValues() ([]float64, []float64) {
	return d.xStart, d.xEnd
}

func (d dataRangeXValuesForGraph) calculateChartDimensions(minBarWidth float64) (width, height int) {
	if len(d.yValues) == 0 {
		return 0, 0
	}
	return calculateChartDimensions(len(d.xStart), minBarWidth)
}

func (d dataRangeXValuesForGraph) generateBarValues() []chart.Value {
	var bars []chart.Value
	yValues := d.getYValues()
	xStart, xEnd := d.getXValues()
	for i := range xStart {
		bars = append(bars, chart.Value{
			Value: yValues[i],
			Label: fmt.Sprintf("%.f-%.f", xStart[i], xEnd[i]),
			Style: chart.Style{
				FillColor: drawing.ColorLime.WithAlpha(100),
			},
		})
	}
	return bars
}
