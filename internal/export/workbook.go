package export

import (
	"encoding/json"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/estatelens/estatelens/internal/model"
)

// SheetName is the single worksheet written by EncodeWorkbook.
const SheetName = "table_data"

// EncodeWorkbook renders rows as a real .xlsx workbook: one sheet, header row
// first. Numeric values are stored as numbers.
func EncodeWorkbook(rows model.RowSet) ([]byte, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	headers, err := checkRows(rows)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, fmt.Errorf("export: rename sheet: %w", err)
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("export: write header: %w", err)
	}

	for i, r := range rows {
		cells := make([]interface{}, len(headers))
		for j, h := range headers {
			v, _ := r.Get(h)
			cells[j] = workbookValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
			return nil, fmt.Errorf("export: write row %d: %w", i, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func workbookValue(v any) interface{} {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return val
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	}
	if f, ok := model.NumericValue(v); ok {
		return f
	}
	return model.FormatValue(v)
}
