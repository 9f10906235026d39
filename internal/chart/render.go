package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// fillAlpha is FillOpacity on the 0-255 scale.
var fillAlpha = uint8(math.Round(FillOpacity * 255))

// ErrNoPoints is returned by RenderPNG when no series carries data.
var ErrNoPoints = errors.New("chart: no data points")

// TerminalColor returns the stroke color for hue h as a "#rrggbb" string
// usable by lipgloss.
func TerminalColor(h int) string {
	return colorful.Hsl(float64(h), Saturation/100.0, Lightness/100.0).Hex()
}

func drawingColor(h int, alpha uint8) drawing.Color {
	hex := strings.TrimPrefix(TerminalColor(h), "#")
	return drawing.ColorFromHex(hex).WithAlpha(alpha)
}

// RenderPNG draws the spec as a PNG line chart of the given size.
func RenderPNG(s *Spec, width, height int) ([]byte, error) {
	if s == nil || len(s.Data.Labels) == 0 {
		return nil, ErrNoPoints
	}

	labels := s.Data.Labels
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	var series []gochart.Series
	for _, ds := range s.Data.Datasets {
		n := min(len(ds.Data), len(labels))
		if n == 0 {
			continue
		}
		xs := make([]float64, n)
		ys := make([]float64, n)
		for i := 0; i < n; i++ {
			xs[i] = float64(i)
			ys[i] = ds.Data[i]
			lo = math.Min(lo, ys[i])
			hi = math.Max(hi, ys[i])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: drawingColor(ds.Hue, 255),
				StrokeWidth: float64(ds.BorderWidth),
				FillColor:   drawingColor(ds.Hue, fillAlpha),
				DotColor:    drawingColor(ds.Hue, 255),
				DotWidth:    float64(ds.PointRadius),
			},
		})
	}
	if len(series) == 0 {
		return nil, ErrNoPoints
	}
	if lo == hi {
		lo, hi = lo-1, hi+1
	}

	tickStyle := gochart.Style{FontColor: drawing.ColorFromHex(strings.TrimPrefix(TickColor, "#"))}
	graph := gochart.Chart{
		Width:      width,
		Height:     height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: gochart.XAxis{
			Style: tickStyle,
			Range: &gochart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
			Ticks: ticks,
		},
		YAxis: gochart.YAxis{
			Style: tickStyle,
			Range: &gochart.ContinuousRange{Min: lo, Max: hi},
		},
		Series: series,
	}
	graph.Elements = []gochart.Renderable{gochart.LegendThin(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(gochart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart: render png: %w", err)
	}
	return buf.Bytes(), nil
}
