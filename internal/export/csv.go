package export

import (
	"strings"

	"github.com/estatelens/estatelens/internal/model"
)

// EncodeCSV renders rows as CSV with every field quoted and embedded quotes
// doubled. The header line comes first; lines are joined with "\n" and there
// is no trailing newline.
func EncodeCSV(rows model.RowSet) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers, err := checkRows(rows)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeCSVLine(&b, headers)
	cells := make([]string, len(headers))
	for _, r := range rows {
		for i, h := range headers {
			cells[i] = r.String(h)
		}
		b.WriteByte('\n')
		writeCSVLine(&b, cells)
	}
	return []byte(b.String()), nil
}

func writeCSVLine(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(c, `"`, `""`))
		b.WriteByte('"')
	}
}
