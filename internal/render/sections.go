// Package render turns a result snapshot into displayable sections and text.
package render

import (
	"strings"

	"github.com/estatelens/estatelens/internal/chart"
	"github.com/estatelens/estatelens/internal/model"
)

// Display texts shared by every front end.
const (
	EmptyState    = "Upload dataset & ask a query to view analysis."
	BusyUpload    = "Uploading..."
	BusyQuery     = "Processing..."
	AreasLabel    = "Areas: "
	AreasPreviewN = 5
)

// Sections is the renderable form of one QueryResult. A nil Chart or empty
// Table means that section is skipped.
type Sections struct {
	Summary string
	Chart   *chart.Spec
	Table   model.RowSet
	Headers []string
}

// Build splits res into independent sections. It never fails: a section
// that cannot be rendered is simply left out.
func Build(res *model.QueryResult) Sections {
	if res == nil {
		return Sections{}
	}
	s := Sections{Summary: res.Summary}
	if spec, ok := chart.Synthesize(res.Chart); ok {
		s.Chart = spec
	}
	if res.HasTable() {
		s.Table = res.Table
		s.Headers = res.Table.Headers()
	}
	return s
}

// Empty reports whether there is nothing at all to show.
func (s Sections) Empty() bool {
	return s.Summary == "" && s.Chart == nil && len(s.Table) == 0
}

// DisplayHeaders returns the table headers upper-cased for display.
func (s Sections) DisplayHeaders() []string {
	out := make([]string, len(s.Headers))
	for i, h := range s.Headers {
		out[i] = strings.ToUpper(h)
	}
	return out
}

// Cells returns the table as display strings in header order.
func (s Sections) Cells() [][]string {
	out := make([][]string, len(s.Table))
	for i, r := range s.Table {
		row := make([]string, len(s.Headers))
		for j, h := range s.Headers {
			row[j] = r.String(h)
		}
		out[i] = row
	}
	return out
}

// AreasPreview renders the first few categories followed by an ellipsis.
func AreasPreview(areas []string) string {
	n := min(len(areas), AreasPreviewN)
	return AreasLabel + strings.Join(areas[:n], ", ") + "..."
}
