package chart

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/estatelens/estatelens/internal/model"
)

func payload(labels []string, n int) *model.ChartPayload {
	p := &model.ChartPayload{Labels: labels}
	for i := 0; i < n; i++ {
		data := make([]float64, len(labels))
		for j := range data {
			data[j] = float64(i*10 + j)
		}
		p.Datasets = append(p.Datasets, model.Dataset{Label: string(rune('A' + i)), Data: data})
	}
	return p
}

func TestSynthesize_HueAssignment(t *testing.T) {
	spec, ok := Synthesize(payload([]string{"2020", "2021"}, 7))
	require.True(t, ok)
	require.Len(t, spec.Data.Datasets, 7)

	want := []int{0, 60, 120, 180, 240, 300, 0}
	for i, s := range spec.Data.Datasets {
		require.Equal(t, want[i], s.Hue, "series %d", i)
		require.Equal(t, Stroke(want[i]), s.BorderColor)
		require.Equal(t, Fill(want[i]), s.BackgroundColor)
	}
	require.Equal(t, "hsl(120, 70%, 45%)", spec.Data.Datasets[2].BorderColor)
	require.Equal(t, "hsla(120, 70%, 45%, 0.15)", spec.Data.Datasets[2].BackgroundColor)
}

func TestSynthesize_NoChartGuard(t *testing.T) {
	cases := map[string]*model.ChartPayload{
		"nil payload":    nil,
		"nil labels":     {Datasets: []model.Dataset{{Label: "x", Data: []float64{1}}}},
		"empty labels":   {Labels: []string{}, Datasets: []model.Dataset{{Label: "x", Data: []float64{1}}}},
		"no datasets":    {Labels: nil},
		"empty datasets": {Labels: []string{}, Datasets: []model.Dataset{}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			spec, ok := Synthesize(p)
			require.False(t, ok)
			require.Nil(t, spec)
		})
	}
}

func TestSynthesize_PassesThroughAndIsIdempotent(t *testing.T) {
	p := payload([]string{"2019", "2020", "2021"}, 2)

	a, ok := Synthesize(p)
	require.True(t, ok)
	b, _ := Synthesize(p)
	require.Equal(t, a, b)

	require.Equal(t, p.Labels, a.Data.Labels)
	require.Equal(t, p.Datasets[1].Label, a.Data.Datasets[1].Label)
	require.Equal(t, p.Datasets[1].Data, a.Data.Datasets[1].Data)

	// the spec owns its slices
	a.Data.Datasets[0].Data[0] = -1
	a.Data.Labels[0] = "changed"
	require.Equal(t, 0.0, p.Datasets[0].Data[0])
	require.Equal(t, "2019", p.Labels[0])
}

func TestSynthesize_PresentationConstants(t *testing.T) {
	spec, ok := Synthesize(payload([]string{"2020"}, 1))
	require.True(t, ok)

	raw, err := json.Marshal(spec)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	require.Equal(t, "line", got["type"])
	opts := got["options"].(map[string]any)
	require.Equal(t, true, opts["responsive"])

	plugins := opts["plugins"].(map[string]any)
	require.Equal(t, map[string]any{"position": "top", "labels": map[string]any{"usePointStyle": true}}, plugins["legend"])
	require.Equal(t, map[string]any{"mode": "index", "intersect": false}, plugins["tooltip"])
	require.Equal(t, map[string]any{"mode": "nearest", "axis": "x", "intersect": false}, opts["interaction"])

	y := opts["scales"].(map[string]any)["y"].(map[string]any)
	require.Equal(t, false, y["beginAtZero"])
	require.Equal(t, TickColor, y["ticks"].(map[string]any)["color"])

	ds := got["data"].(map[string]any)["datasets"].([]any)[0].(map[string]any)
	require.Equal(t, 2.0, ds["borderWidth"])
	require.Equal(t, 0.4, ds["tension"])
	require.Equal(t, true, ds["fill"])
	require.Equal(t, 3.0, ds["pointRadius"])
	require.NotContains(t, ds, "Hue")
}

func TestTerminalColor(t *testing.T) {
	require.Equal(t, "#c32222", TerminalColor(0))
	require.NotEqual(t, TerminalColor(0), TerminalColor(60))
	require.Equal(t, TerminalColor(0), TerminalColor(Hue(6)))
}

func TestRenderPNG(t *testing.T) {
	spec, ok := Synthesize(payload([]string{"2019", "2020", "2021"}, 2))
	require.True(t, ok)

	img, err := RenderPNG(spec, 640, 360)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))

	_, err = RenderPNG(nil, 640, 360)
	require.ErrorIs(t, err, ErrNoPoints)

	empty, _ := Synthesize(&model.ChartPayload{Labels: []string{"2020"}})
	_, err = RenderPNG(empty, 640, 360)
	require.ErrorIs(t, err, ErrNoPoints)
}

func TestRenderPNG_FillAlphaAndLabelsOnly(t *testing.T) {
	require.Equal(t, uint8(38), fillAlpha)
	require.Equal(t, fillAlpha, drawingColor(120, fillAlpha).A)

	spec, ok := Synthesize(&model.ChartPayload{Labels: []string{"2019", "2020"}})
	require.True(t, ok)
	require.Empty(t, spec.Data.Datasets)
	_, err := RenderPNG(spec, 640, 360)
	require.ErrorIs(t, err, ErrNoPoints)
}
