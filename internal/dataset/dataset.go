// Package dataset loads and validates spreadsheet files before upload.
package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/estatelens/estatelens/internal/model"
)

// Accepted upload extensions.
var Extensions = []string{".xlsx", ".xls"}

var (
	ErrUnsupportedType = errors.New("dataset: only .xlsx and .xls files are accepted")
	ErrEmpty           = errors.New("dataset: file is empty")
)

// Preview describes the first sheet of a workbook.
type Preview struct {
	Sheet   string
	Headers []string
	Rows    int
}

// Load reads path and validates it as an uploadable dataset.
func Load(path string) (*model.DatasetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", path, err)
	}
	f := &model.DatasetFile{Name: filepath.Base(path), Data: data}
	if err := Validate(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Validate checks the file extension and, for .xlsx, that the workbook opens.
// Legacy .xls files are passed through unparsed.
func Validate(f *model.DatasetFile) error {
	if !Accepted(f.Name) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, f.Name)
	}
	if len(f.Data) == 0 {
		return ErrEmpty
	}
	if strings.EqualFold(filepath.Ext(f.Name), ".xlsx") {
		if _, err := Inspect(f.Data); err != nil {
			return err
		}
	}
	return nil
}

// Accepted reports whether name has an accepted extension.
func Accepted(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Inspect opens an .xlsx workbook and summarises its first sheet.
func Inspect(data []byte) (Preview, error) {
	var p Preview
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return p, fmt.Errorf("dataset: open workbook: %w", err)
	}
	defer wb.Close()

	p.Sheet = wb.GetSheetName(0)
	if p.Sheet == "" {
		return p, fmt.Errorf("dataset: workbook has no sheets")
	}
	rows, err := wb.GetRows(p.Sheet)
	if err != nil {
		return p, fmt.Errorf("dataset: read sheet %s: %w", p.Sheet, err)
	}
	if len(rows) == 0 {
		return p, ErrEmpty
	}

	p.Headers = make([]string, len(rows[0]))
	for i, h := range rows[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("Column_%d", i+1)
		}
		p.Headers[i] = h
	}
	p.Rows = len(rows) - 1
	return p, nil
}
