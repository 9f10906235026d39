package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats for WriteText.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
)

// WriteText prints sections for a terminal or a pipe.
func WriteText(w io.Writer, s Sections, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, s)
	case FormatTable, FormatMarkdown, "":
	default:
		return fmt.Errorf("render: unknown format %q", format)
	}

	if s.Empty() {
		_, err := fmt.Fprintln(w, EmptyState)
		return err
	}
	if s.Summary != "" {
		fmt.Fprintf(w, "Summary\n%s\n\n", s.Summary)
	}
	if s.Chart != nil {
		fmt.Fprintln(w, "Chart")
		writeChartTable(w, s, format)
		fmt.Fprintln(w)
	}
	if len(s.Table) > 0 {
		fmt.Fprintln(w, "Data Table")
		writeRowsTable(w, s, format)
	}
	return nil
}

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderAs(t table.Writer, format string) {
	if format == FormatMarkdown {
		t.RenderMarkdown()
		return
	}
	t.Render()
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

func writeRowsTable(w io.Writer, s Sections, format string) {
	t := newWriter(w)
	t.AppendHeader(toRow(s.DisplayHeaders()))
	for _, cells := range s.Cells() {
		t.AppendRow(toRow(cells))
	}
	renderAs(t, format)
}

// writeChartTable lays the chart out as one column per series.
func writeChartTable(w io.Writer, s Sections, format string) {
	t := newWriter(w)
	header := table.Row{""}
	for _, ds := range s.Chart.Data.Datasets {
		header = append(header, ds.Label)
	}
	t.AppendHeader(header)
	for i, label := range s.Chart.Data.Labels {
		row := table.Row{label}
		for _, ds := range s.Chart.Data.Datasets {
			if i < len(ds.Data) {
				row = append(row, formatFloat(ds.Data[i]))
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	renderAs(t, format)
}

func formatFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

func writeJSON(w io.Writer, s Sections) error {
	out := struct {
		Summary string      `json:"summary"`
		Chart   interface{} `json:"chart"`
		Table   interface{} `json:"table"`
	}{Summary: s.Summary}
	if s.Chart != nil {
		out.Chart = s.Chart
	}
	if len(s.Table) > 0 {
		out.Table = s.Table
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
