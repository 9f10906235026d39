package tui

import (
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"

	"github.com/estatelens/estatelens/internal/chart"
)

const maxBarWidth = 8

// barGeometry fits n bars into width. It returns the bar width, the gap and
// how many trailing bars fit.
func barGeometry(width, n int) (barW, gap, shown int) {
	if n <= 0 || width <= 0 {
		return 0, 0, 0
	}
	shown = n
	if shown > width {
		shown = width
	}
	gap = 1
	barW = (width - (shown-1)*gap) / shown
	if barW < 1 {
		barW, gap = 1, 0
	}
	if barW > maxBarWidth {
		barW = maxBarWidth
	}
	return barW, gap, shown
}

// baseline mirrors a y axis that does not start at zero: bars are drawn
// relative to a floor just below the smallest value.
func baseline(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo <= 0 || hi == lo {
		return 0
	}
	return lo - (hi-lo)*0.1
}

// renderChartPanel draws one bar strip per series over the shared labels,
// with a legend on top and the labels underneath. A nil spec renders nothing.
func renderChartPanel(spec *chart.Spec, width, height int, st Styles) string {
	if spec == nil || width < 4 || height < 4 {
		return ""
	}
	series := spec.Data.Datasets
	labels := spec.Data.Labels

	barW, gap, shown := barGeometry(width, len(labels))
	start := len(labels) - shown
	chartW := shown*barW + (shown-1)*gap

	lines := []string{renderLegend(spec, st)}
	if len(series) == 0 {
		lines = append(lines, renderAxisLabels(labels[start:], barW, gap, st))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}
	stripH := max(1, (height-2)/len(series))

	for _, s := range series {
		values := make([]float64, shown)
		for i := range values {
			if idx := start + i; idx < len(s.Data) {
				values[i] = s.Data[idx]
			}
		}
		floor := baseline(values)
		style := seriesStyle(s.Hue)

		bc := barchart.New(chartW, stripH,
			barchart.WithBarGap(gap),
			barchart.WithBarWidth(barW),
			barchart.WithNoAxis(),
		)
		for i, v := range values {
			bc.Push(barchart.BarData{
				Label:  labels[start+i],
				Values: []barchart.BarValue{{Name: s.Label, Value: max(0, v-floor), Style: style}},
			})
		}
		bc.Draw()
		lines = append(lines, bc.View())
	}
	lines = append(lines, renderAxisLabels(labels[start:], barW, gap, st))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// renderLegend lists each series with its color swatch.
func renderLegend(spec *chart.Spec, st Styles) string {
	parts := make([]string, 0, len(spec.Data.Datasets))
	for _, s := range spec.Data.Datasets {
		parts = append(parts, seriesStyle(s.Hue).Render("  ")+" "+st.Label.Render(s.Label))
	}
	return strings.Join(parts, "   ")
}

// renderAxisLabels centers each label under its bar, truncated to fit.
func renderAxisLabels(labels []string, barW, gap int, st Styles) string {
	cells := make([]string, len(labels))
	for i, l := range labels {
		r := []rune(l)
		if len(r) > barW {
			r = r[:barW]
		}
		cells[i] = lipgloss.PlaceHorizontal(barW, lipgloss.Center, string(r))
	}
	return st.Muted.Render(strings.Join(cells, strings.Repeat(" ", gap)))
}
