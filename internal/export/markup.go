package export

import (
	"strings"

	"github.com/estatelens/estatelens/internal/model"
)

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, `""`,
)

// EncodeMarkup renders rows as an HTML table. Cell text has quotes doubled
// and &, <, > escaped.
func EncodeMarkup(rows model.RowSet) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers, err := checkRows(rows)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("<table>\n<thead>\n<tr>")
	for _, h := range headers {
		b.WriteString("<th>")
		markupEscaper.WriteString(&b, h)
		b.WriteString("</th>")
	}
	b.WriteString("</tr>\n</thead>\n<tbody>\n")
	for _, r := range rows {
		b.WriteString("<tr>")
		for _, h := range headers {
			b.WriteString("<td>")
			markupEscaper.WriteString(&b, r.String(h))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
	return []byte(b.String()), nil
}
