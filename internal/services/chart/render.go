// Package chart renders price charts with indicator overlays as PNG.
package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/hklens/hklens/internal/models"
)

// RenderPriceChart renders a PNG line chart of the close price with the
// 20/50 day averages and the Bollinger rails. Indicator rows without
// enough trailing history are simply absent from their overlay series.
func RenderPriceChart(series *models.IndicatorSeries) ([]byte, error) {
	if series == nil || len(series.Bars) < 2 {
		return nil, fmt.Errorf("need at least 2 bars to render a chart")
	}

	times := make([]time.Time, len(series.Bars))
	closes := make([]float64, len(series.Bars))
	for i, bar := range series.Bars {
		times[i] = bar.Time
		closes[i] = bar.Close
	}

	closeSeries := chart.TimeSeries{
		Name: "Close",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.0,
		},
		XValues: times,
		YValues: closes,
	}

	graphSeries := []chart.Series{closeSeries}
	graphSeries = appendOverlay(graphSeries, "SMA 20", "f59e0b", 1.5, nil, times, series.Columns.SMA20)
	graphSeries = appendOverlay(graphSeries, "SMA 50", "8b5cf6", 1.5, nil, times, series.Columns.SMA50)
	graphSeries = appendOverlay(graphSeries, "BB High", "9ca3af", 1.0, []float64{5.0, 3.0}, times, series.Columns.BBHigh)
	graphSeries = appendOverlay(graphSeries, "BB Low", "9ca3af", 1.0, []float64{5.0, 3.0}, times, series.Columns.BBLow)

	graph := chart.Chart{
		Title:  series.Symbol,
		Width:  900,
		Height: 420,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 02")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.2f", f)
				}
				return ""
			},
		},
		Series: graphSeries,
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// appendOverlay adds an indicator series restricted to its defined rows.
// Overlays with fewer than 2 defined points are skipped.
func appendOverlay(out []chart.Series, name, hexColor string, width float64, dashes []float64, times []time.Time, column []models.NullFloat) []chart.Series {
	xs := make([]time.Time, 0, len(column))
	ys := make([]float64, 0, len(column))
	for i, cell := range column {
		if !cell.Valid {
			continue
		}
		xs = append(xs, times[i])
		ys = append(ys, cell.Float64)
	}
	if len(xs) < 2 {
		return out
	}

	return append(out, chart.TimeSeries{
		Name: name,
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex(hexColor),
			StrokeWidth:     width,
			StrokeDashArray: dashes,
		},
		XValues: xs,
		YValues: ys,
	})
}
