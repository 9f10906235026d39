// Package export encodes result tables into downloadable files.
//
// Encoders are pure: they turn a RowSet into bytes. Delivering those bytes
// (writing a file, answering an HTTP download) is the job of an Emitter.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/estatelens/estatelens/internal/model"
)

// Fixed download names and content types.
const (
	CSVFileName      = "table_data.csv"
	WorkbookFileName = "table_data.xlsx"
	MarkupFileName   = "table_data.html"

	CSVContentType         = "text/csv;charset=utf-8;"
	SpreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MarkupContentType      = "text/html;charset=utf-8"
)

// Workbook formats accepted by Options.XLSXFormat.
const (
	FormatWorkbook = "workbook"
	FormatMarkup   = "markup"
)

// Format names accepted by Build.
const (
	KindCSV    = "csv"
	KindXLSX   = "xlsx"
	KindMarkup = "html"
)

// ErrHeterogeneousRows is returned when a record's key set differs from the
// first record's.
var ErrHeterogeneousRows = errors.New("export: heterogeneous row set")

// ErrUnknownFormat is returned by Build for an unsupported kind.
var ErrUnknownFormat = errors.New("export: unknown format")

// File is one encoded download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Options tunes how the spreadsheet download is produced.
type Options struct {
	// XLSXFormat is FormatWorkbook (a real .xlsx) or FormatMarkup, which
	// packages the HTML table under the spreadsheet name and content type.
	XLSXFormat string
}

// Export encodes rows as CSV and spreadsheet and hands both files to emit.
// An empty row set emits nothing.
func Export(ctx context.Context, rows model.RowSet, emit Emitter, opts Options) error {
	if len(rows) == 0 {
		return nil
	}
	for _, kind := range []string{KindCSV, KindXLSX} {
		f, err := Build(rows, kind, opts)
		if err != nil {
			return err
		}
		if err := emit.Emit(ctx, f); err != nil {
			return fmt.Errorf("export: emit %s: %w", f.Name, err)
		}
	}
	return nil
}

// Build encodes rows into a single download of the given kind.
func Build(rows model.RowSet, kind string, opts Options) (File, error) {
	switch strings.ToLower(kind) {
	case KindCSV:
		data, err := EncodeCSV(rows)
		return File{Name: CSVFileName, ContentType: CSVContentType, Data: data}, err
	case KindXLSX:
		var data []byte
		var err error
		if opts.XLSXFormat == FormatMarkup {
			data, err = EncodeMarkup(rows)
		} else {
			data, err = EncodeWorkbook(rows)
		}
		return File{Name: WorkbookFileName, ContentType: SpreadsheetContentType, Data: data}, err
	case KindMarkup:
		data, err := EncodeMarkup(rows)
		return File{Name: MarkupFileName, ContentType: MarkupContentType, Data: data}, err
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, kind)
	}
}

// ValidFormat reports whether f is an accepted XLSXFormat value.
func ValidFormat(f string) bool {
	return f == FormatWorkbook || f == FormatMarkup
}

// Headers returns the column order used by every encoder: the key order of
// the first record.
func Headers(rows model.RowSet) []string {
	return rows.Headers()
}

// checkRows verifies every record carries exactly the header key set. Key
// order within later records is irrelevant.
func checkRows(rows model.RowSet) ([]string, error) {
	headers := Headers(rows)
	want := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		want[h] = struct{}{}
	}

	for i, r := range rows {
		if len(r) != len(want) {
			return nil, fmt.Errorf("%w: row %d has %d fields, want %d", ErrHeterogeneousRows, i, len(r), len(want))
		}
		seen := make(map[string]struct{}, len(r))
		for _, f := range r {
			if _, ok := want[f.Key]; !ok {
				return nil, fmt.Errorf("%w: row %d has unexpected key %q", ErrHeterogeneousRows, i, f.Key)
			}
			if _, dup := seen[f.Key]; dup {
				return nil, fmt.Errorf("%w: row %d repeats key %q", ErrHeterogeneousRows, i, f.Key)
			}
			seen[f.Key] = struct{}{}
		}
	}
	return headers, nil
}
