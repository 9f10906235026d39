package duckdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/estatelens/estatelens/internal/model"
)

// ResultTable holds the most recently loaded result rows.
const ResultTable = "result"

// Column is one workspace column and its DuckDB type.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// inferColumns types each header DOUBLE when every non-null value is numeric
// and VARCHAR otherwise.
func inferColumns(rows model.RowSet) []Column {
	headers := rows.Headers()
	cols := make([]Column, len(headers))
	for i, h := range headers {
		numeric, seen := true, false
		for _, r := range rows {
			v, ok := r.Get(h)
			if !ok || v == nil {
				continue
			}
			seen = true
			if _, isNum := model.NumericValue(v); !isNum {
				numeric = false
				break
			}
		}
		typ := "VARCHAR"
		if numeric && seen {
			typ = "DOUBLE"
		}
		cols[i] = Column{Name: h, Type: typ}
	}
	return cols
}

func cellValue(v any, typ string) any {
	if v == nil {
		return nil
	}
	if typ == "DOUBLE" {
		f, _ := model.NumericValue(v)
		return f
	}
	return model.FormatValue(v)
}

// LoadResult replaces the result table with rows. An empty row set drops the
// table. Each load is recorded in result_loads.
func (s *Store) LoadResult(ctx context.Context, rows model.RowSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx(ctx)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("duckdb: begin load: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(ResultTable)); err != nil {
		return fmt.Errorf("duckdb: drop result: %w", err)
	}

	cols := inferColumns(rows)
	if len(cols) > 0 {
		defs := make([]string, len(cols))
		marks := make([]string, len(cols))
		for i, c := range cols {
			defs[i] = quoteIdent(c.Name) + " " + c.Type
			marks[i] = "?"
		}
		create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(ResultTable), strings.Join(defs, ", "))
		if _, err := tx.ExecContext(ctx, create); err != nil {
			return fmt.Errorf("duckdb: create result: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(ResultTable), strings.Join(marks, ", ")))
		if err != nil {
			return fmt.Errorf("duckdb: prepare insert: %w", err)
		}
		defer stmt.Close()

		args := make([]any, len(cols))
		for n, r := range rows {
			for i, c := range cols {
				v, _ := r.Get(c.Name)
				args[i] = cellValue(v, c.Type)
			}
			if _, err := stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("duckdb: insert row %d: %w", n, err)
			}
		}
	}

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO result_loads (id, row_count, column_count, columns) VALUES (?, ?, ?, ?)",
		uuid.NewString(), len(rows), len(cols), strings.Join(names, ","),
	); err != nil {
		return fmt.Errorf("duckdb: record load: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("duckdb: commit load: %w", err)
	}
	return nil
}
