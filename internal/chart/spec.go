// Package chart turns a backend chart payload into a renderable line chart
// specification with deterministic per-series styling.
package chart

import (
	"fmt"

	"github.com/estatelens/estatelens/internal/model"
)

// Presentation constants shared by every synthesized chart.
const (
	HueStep     = 60
	Saturation  = 70
	Lightness   = 45
	FillOpacity = 0.15

	BorderWidth = 2
	Tension     = 0.4
	PointRadius = 3
	TickColor   = "#4B5563"
)

// Spec is a Chart.js-shaped line chart description.
type Spec struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

type Data struct {
	Labels   []string `json:"labels"`
	Datasets []Series `json:"datasets"`
}

// Series is one styled dataset.
type Series struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BorderColor     string    `json:"borderColor"`
	BackgroundColor string    `json:"backgroundColor"`
	BorderWidth     int       `json:"borderWidth"`
	Tension         float64   `json:"tension"`
	Fill            bool      `json:"fill"`
	PointRadius     int       `json:"pointRadius"`

	Hue int `json:"-"`
}

type Options struct {
	Responsive  bool        `json:"responsive"`
	Plugins     Plugins     `json:"plugins"`
	Interaction Interaction `json:"interaction"`
	Scales      Scales      `json:"scales"`
}

type Plugins struct {
	Legend  Legend  `json:"legend"`
	Tooltip Tooltip `json:"tooltip"`
}

type Legend struct {
	Position string       `json:"position"`
	Labels   LegendLabels `json:"labels"`
}

type LegendLabels struct {
	UsePointStyle bool `json:"usePointStyle"`
}

type Tooltip struct {
	Mode      string `json:"mode"`
	Intersect bool   `json:"intersect"`
}

type Interaction struct {
	Mode      string `json:"mode"`
	Axis      string `json:"axis"`
	Intersect bool   `json:"intersect"`
}

type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

type Axis struct {
	BeginAtZero *bool `json:"beginAtZero,omitempty"`
	Ticks       Ticks `json:"ticks"`
}

type Ticks struct {
	Color string `json:"color"`
}

// Hue returns the hue in degrees assigned to the series at index i.
// Six distinct hues repeat from the seventh series on.
func Hue(i int) int {
	h := (i * HueStep) % 360
	if h < 0 {
		h += 360
	}
	return h
}

// Stroke is the opaque line color for hue h.
func Stroke(h int) string {
	return fmt.Sprintf("hsl(%d, %d%%, %d%%)", h, Saturation, Lightness)
}

// Fill is the translucent area color for hue h.
func Fill(h int) string {
	return fmt.Sprintf("hsla(%d, %d%%, %d%%, %g)", h, Saturation, Lightness, FillOpacity)
}

// Synthesize builds the chart spec for p. It reports false when there is
// nothing to render: a nil payload or one without labels.
func Synthesize(p *model.ChartPayload) (*Spec, bool) {
	if p == nil || len(p.Labels) == 0 {
		return nil, false
	}

	series := make([]Series, len(p.Datasets))
	for i, ds := range p.Datasets {
		h := Hue(i)
		series[i] = Series{
			Label:           ds.Label,
			Data:            append([]float64(nil), ds.Data...),
			BorderColor:     Stroke(h),
			BackgroundColor: Fill(h),
			BorderWidth:     BorderWidth,
			Tension:         Tension,
			Fill:            true,
			PointRadius:     PointRadius,
			Hue:             h,
		}
	}

	beginAtZero := false
	return &Spec{
		Type: "line",
		Data: Data{
			Labels:   append([]string(nil), p.Labels...),
			Datasets: series,
		},
		Options: Options{
			Responsive: true,
			Plugins: Plugins{
				Legend:  Legend{Position: "top", Labels: LegendLabels{UsePointStyle: true}},
				Tooltip: Tooltip{Mode: "index", Intersect: false},
			},
			Interaction: Interaction{Mode: "nearest", Axis: "x", Intersect: false},
			Scales: Scales{
				X: Axis{Ticks: Ticks{Color: TickColor}},
				Y: Axis{BeginAtZero: &beginAtZero, Ticks: Ticks{Color: TickColor}},
			},
		},
	}, true
}
