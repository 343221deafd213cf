// Package chart renders price-range histograms as images.
package chart

import (
	"fmt"
	"io"
	"math"

	"github.com/wcharczuk/go-chart/v2"

	"saledash/internal/domain/transaction"
)

const (
	defaultWidth  = 1024
	defaultHeight = 480
)

// RenderBarChart writes a PNG bar chart of the histogram to w.
func RenderBarChart(w io.Writer, title string, ranges []transaction.PriceRangeCount) error {
	if len(ranges) == 0 {
		return fmt.Errorf("render bar chart: no price ranges")
	}

	bars := make([]chart.Value, 0, len(ranges))
	var highest int64
	for _, r := range ranges {
		bars = append(bars, chart.Value{
			Label: r.Range,
			Value: float64(r.Count),
		})
		if r.Count > highest {
			highest = r.Count
		}
	}

	barChart := chart.BarChart{
		Title: title,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    40,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:      defaultWidth,
		Height:     defaultHeight,
		BarWidth:   60,
		BarSpacing: 30,
		Bars:       bars,
	}

	// A month with no sales would otherwise produce a zero-height range.
	barChart.YAxis.Range = &chart.ContinuousRange{Min: 0, Max: math.Max(1, float64(highest))}
	barChart.YAxis.ValueFormatter = func(v interface{}) string {
		if vf, ok := v.(float64); ok {
			return fmt.Sprintf("%.0f", vf)
		}
		return ""
	}

	if err := barChart.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}
