package plot

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/pivolan/sales_analyzer/domain/models"
)

type pngRenderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func renderPNG(graph pngRenderable) ([]byte, error) {
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

// DrawLine draws a labeled series as a line with one dot per point.
func DrawLine(name, nameY string, series Series) ([]byte, error) {
	if err := checkSeries(series); err != nil {
		return nil, err
	}
	xValues := make([]float64, series.Len())
	for i := range xValues {
		xValues[i] = float64(i)
	}
	lo, hi := minMax(series.Values)

	graph := chart.Chart{
		Title: name,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 40,
			},
			FillColor: drawing.ColorWhite,
		},
		Width:  2048,
		Height: 1024,
		XAxis: chart.XAxis{
			Name:  "Month",
			Style: chart.Style{TextRotationDegrees: 45},
			Ticks: categoryTicks(series.Labels),
		},
		YAxis: chart.YAxis{
			Name:  nameY,
			Range: paddedRange(lo, hi),
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.0f", vf)
				}
				return ""
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    series.Name,
				XValues: xValues,
				YValues: series.Values,
				Style: chart.Style{
					StrokeColor: drawing.ColorBlue,
					StrokeWidth: 2,
					DotColor:    drawing.ColorBlue,
					DotWidth:    5,
				},
			},
		},
	}
	graph.Background.StrokeWidth = 1
	graph.Background.StrokeColor = drawing.ColorFromHex("efefef")

	return renderPNG(graph)
}

// DrawBoxPlot draws one box per group: the box spans Q1..Q3, a line marks the median,
// whiskers reach Min and Max and outliers are drawn as dots.
func DrawBoxPlot(name, nameY string, labels []string, boxes []models.BoxSummary) ([]byte, error) {
	if len(labels) != len(boxes) || len(boxes) == 0 {
		return nil, fmt.Errorf("box plot needs one label per group, got %d labels for %d groups", len(labels), len(boxes))
	}
	const half = 0.3
	boxStyle := chart.Style{StrokeColor: drawing.ColorBlue, StrokeWidth: 2}
	lineStyle := chart.Style{StrokeColor: drawing.ColorBlack, StrokeWidth: 2}
	outlierStyle := chart.Style{StrokeWidth: chart.Disabled, DotColor: drawing.ColorRed, DotWidth: 4}

	var series []chart.Series
	lo, hi := boxes[0].Min, boxes[0].Max
	for i, b := range boxes {
		x := float64(i)
		series = append(series,
			chart.ContinuousSeries{
				XValues: []float64{x - half, x + half, x + half, x - half, x - half},
				YValues: []float64{b.Q1, b.Q1, b.Q3, b.Q3, b.Q1},
				Style:   boxStyle,
			},
			chart.ContinuousSeries{XValues: []float64{x - half, x + half}, YValues: []float64{b.Median, b.Median}, Style: lineStyle},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Min, b.Q1}, Style: lineStyle},
			chart.ContinuousSeries{XValues: []float64{x, x}, YValues: []float64{b.Q3, b.Max}, Style: lineStyle},
			chart.ContinuousSeries{XValues: []float64{x - half/2, x + half/2}, YValues: []float64{b.Min, b.Min}, Style: lineStyle},
			chart.ContinuousSeries{XValues: []float64{x - half/2, x + half/2}, YValues: []float64{b.Max, b.Max}, Style: lineStyle},
		)
		if len(b.Outliers) > 0 {
			xs := make([]float64, len(b.Outliers))
			for j := range xs {
				xs[j] = x
			}
			series = append(series, chart.ContinuousSeries{XValues: xs, YValues: b.Outliers, Style: outlierStyle})
		}
		lo = math.Min(lo, b.Min)
		hi = math.Max(hi, b.Max)
		for _, o := range b.Outliers {
			lo = math.Min(lo, o)
			hi = math.Max(hi, o)
		}
	}

	graph := chart.Chart{
		Title: name,
		Background: chart.Style{
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 40},
			FillColor: drawing.ColorWhite,
		},
		Width:  1024,
		Height: 768,
		XAxis: chart.XAxis{
			Name:  "Region",
			Ticks: categoryTicks(labels),
		},
		YAxis: chart.YAxis{
			Name:  nameY,
			Range: paddedRange(lo, hi),
			ValueFormatter: func(v interface{}) string {
				if vf, isFloat := v.(float64); isFloat {
					return fmt.Sprintf("%.0f", vf)
				}
				return ""
			},
		},
		Series: series,
	}
	return renderPNG(graph)
}

// categoryTicks labels one tick per category at 0..n-1 and pads the axis by half
// a step on both sides. go-chart takes the x-range from the ticks, so a lone
// category would otherwise leave it with zero width.
func categoryTicks(labels []string) []chart.Tick {
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: -0.5})
	for i, label := range labels {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	return append(ticks, chart.Tick{Value: float64(len(labels)) - 0.5})
}

func calculateGridStep(maxValue float64) float64 {
	if maxValue <= 0 {
		return 0
	}
	if maxValue < 1e-10 {
		return 1e-10
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}

	finalStep := step * magnitude

	// round large steps to "nice" numbers
	if finalStep >= 1000 {
		return math.Round(finalStep/100) * 100
	}
	if finalStep >= 100 {
		return math.Round(finalStep/10) * 10
	}

	return finalStep
}

func generateGrid(max float64) []chart.Tick {
	var ticks []chart.Tick
	gridStep := calculateGridStep(max)
	if gridStep <= 0 {
		return nil
	}
	for i := 0.0; i <= max; i += gridStep {
		ticks = append(ticks, chart.Tick{
			Value: i,
			Label: fmt.Sprintf("%.1f", i),
		})
	}
	return ticks
}

func calculateChartDimensions(bars int, minBarWidth float64) (width, height int) {
	if bars <= 0 || minBarWidth <= 0 {
		return 0, 0
	}
	x := 1.1
	if bars < 2 {
		x = 10.0
	} else if bars < 10 {
		x = 3.0
	}

	const (
		paddingY     = 100
		spacingRatio = 0.2
		aspectRatio  = 9.0 / 16.0
	)

	barSpacing := minBarWidth * spacingRatio
	totalWidth := (minBarWidth+barSpacing)*float64(bars) + paddingY
	width = int(totalWidth*x) + paddingY
	height = int(float64(width) * aspectRatio)
	return width, height
}

func DrawPlotBar(data dataForGraph) ([]byte, error) {
	barValues := data.generateBarValues()
	if len(barValues) == 0 {
		return nil, fmt.Errorf("%s: nothing to draw", data.GetNameGraph())
	}
	paddingX := customizePaddingXBottom(barValues)
	width, height := data.calculateChartDimensions(100)
	maxY := findMaxValue(data.getYValues())
	if maxY <= 0 {
		maxY = 1
	}

	bar := chart.BarChart{}
	bar.Title = data.GetNameGraph()
	bar.Background = chart.Style{
		StrokeColor: chart.ColorBlack,
		Padding: chart.Box{
			Bottom: paddingX,
			Top:    50,
		},
	}
	bar.Height = height + 50
	bar.Width = width + paddingX + 50
	bar.BarWidth = 60
	bar.Bars = barValues
	bar.YAxis = chart.YAxis{
		Name: data.getNameYAxis(),
		Range: &chart.ContinuousRange{
			Min: 0.0,
			Max: maxY * 1.1,
		},
		Style: chart.Style{
			StrokeWidth: 2,
			StrokeColor: chart.ColorBlack,
			FontSize:    17,
		},
		Ticks: generateGrid(maxY * 1.1),
		GridMajorStyle: chart.Style{
			StrokeColor:     chart.ColorBlack,
			StrokeWidth:     1,
			DotWidth:        1,
			StrokeDashArray: []float64{5.0, 5.0},
		},
	}
	bar.XAxis = chart.Style{
		StrokeWidth:         2,
		StrokeColor:         chart.ColorBlack,
		TextRotationDegrees: 88,
		FontSize:            17,
	}

	return renderPNG(bar)
}

func findMaxValue(y []float64) float64 {
	if len(y) == 0 {
		return 0
	}
	max := y[0]
	for _, v := range y {
		if v > max {
			max = v
		}
	}
	return max
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange keeps a 5% margin and never returns a zero-width range.
func paddedRange(lo, hi float64) *chart.ContinuousRange {
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = math.Max(math.Abs(hi)*0.05, 1)
	}
	return &chart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func customizePaddingXBottom(values []chart.Value) int {
	count := 0
	for _, v := range values {
		if len(v.Label) > count {
			count = len(v.Label)
		}
	}
	return count * 8
}
