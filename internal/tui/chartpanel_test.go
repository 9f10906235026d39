package tui

import (
	"strings"
	"testing"

	"github.com/estatelens/estatelens/internal/chart"
	"github.com/estatelens/estatelens/internal/model"
	"github.com/estatelens/estatelens/internal/theme"
)

func TestBarGeometry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		width, n              int
		wantW, wantG, wantNum int
	}{
		{10, 3, 2, 1, 3},
		{5, 10, 1, 0, 5},
		{100, 2, maxBarWidth, 1, 2},
		{10, 0, 0, 0, 0},
	}
	for _, tt := range tests {
		w, g, n := barGeometry(tt.width, tt.n)
		if w != tt.wantW || g != tt.wantG || n != tt.wantNum {
			t.Errorf("barGeometry(%d, %d) = (%d, %d, %d), want (%d, %d, %d)",
				tt.width, tt.n, w, g, n, tt.wantW, tt.wantG, tt.wantNum)
		}
	}
}

func TestBaseline(t *testing.T) {
	t.Parallel()

	if got := baseline([]float64{100, 120}); got != 98 {
		t.Errorf("baseline = %v, want 98", got)
	}
	for _, vals := range [][]float64{{0, 5}, {3, 3}, nil, {-2, 4}} {
		if got := baseline(vals); got != 0 {
			t.Errorf("baseline(%v) = %v, want 0", vals, got)
		}
	}
}

func TestRenderChartPanel(t *testing.T) {
	t.Parallel()

	st := NewStyles(theme.Default.Light)
	if got := renderChartPanel(nil, 60, 12, st); got != "" {
		t.Fatalf("nil spec rendered %q", got)
	}

	spec, ok := chart.Synthesize(&model.ChartPayload{
		Labels: []string{"2020", "2021", "2022"},
		Datasets: []model.Dataset{
			{Label: "Wakad", Data: []float64{100, 110, 125}},
			{Label: "Baner", Data: []float64{90, 95}},
		},
	})
	if !ok {
		t.Fatal("Synthesize rejected payload")
	}

	out := renderChartPanel(spec, 60, 12, st)
	for _, want := range []string{"Wakad", "Baner", "2020", "2022"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q:\n%s", want, out)
		}
	}
}

func TestRenderChartPanel_LabelsWithoutDatasets(t *testing.T) {
	t.Parallel()

	st := NewStyles(theme.Default.Light)
	spec, ok := chart.Synthesize(&model.ChartPayload{Labels: []string{"2020", "2021"}})
	if !ok {
		t.Fatal("Synthesize rejected labels-only payload")
	}

	out := renderChartPanel(spec, 60, 12, st)
	for _, want := range []string{"2020", "2021"} {
		if !strings.Contains(out, want) {
			t.Errorf("panel missing %q:\n%s", want, out)
		}
	}
}
