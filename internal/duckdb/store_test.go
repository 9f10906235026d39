package duckdb

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/estatelens/estatelens/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func loadRows(t *testing.T, store *Store, raw string) {
	t.Helper()
	var rows model.RowSet
	if err := json.Unmarshal([]byte(raw), &rows); err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if err := store.LoadResult(context.Background(), rows); err != nil {
		t.Fatalf("LoadResult: %v", err)
	}
}

const sampleRows = `[
	{"year": 2020, "area": "Wakad", "price": 6500},
	{"year": 2021, "area": "Wakad", "price": 7150.5},
	{"year": 2021, "area": "Aundh", "price": null}
]`

func TestLoadResult_InfersColumnTypes(t *testing.T) {
	store := newTestStore(t)
	loadRows(t, store, sampleRows)

	cols, err := store.Columns(context.Background())
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	want := []Column{{"year", "DOUBLE"}, {"area", "VARCHAR"}, {"price", "DOUBLE"}}
	if !reflect.DeepEqual(cols, want) {
		t.Fatalf("columns = %v, want %v", cols, want)
	}

	counts, err := store.TableRowCounts(context.Background())
	if err != nil {
		t.Fatalf("TableRowCounts: %v", err)
	}
	if counts[ResultTable] != 3 || counts["result_loads"] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestExecuteQuery_PreservesColumnOrder(t *testing.T) {
	store := newTestStore(t)
	loadRows(t, store, sampleRows)

	rows, err := store.ExecuteQuery(context.Background(),
		`SELECT area, SUM(price) AS total FROM result WHERE price IS NOT NULL GROUP BY area ORDER BY area`)
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %v", rows)
	}
	if keys := rows[0].Keys(); !reflect.DeepEqual(keys, []string{"area", "total"}) {
		t.Fatalf("keys = %v", keys)
	}
	if got := rows[0].String("total"); got != "13650.5" {
		t.Errorf("total = %q", got)
	}
}

func TestLoadResult_ReplacesPreviousTable(t *testing.T) {
	store := newTestStore(t)
	loadRows(t, store, sampleRows)
	loadRows(t, store, `[{"name": "only"}]`)

	rows, err := store.ExecuteQuery(context.Background(), "SELECT * FROM result")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 1 || rows[0].String("name") != "only" {
		t.Fatalf("rows = %v", rows)
	}

	loadRows(t, store, `[]`)
	cols, err := store.Columns(context.Background())
	if err != nil {
		t.Fatalf("Columns: %v", err)
	}
	if len(cols) != 0 {
		t.Fatalf("expected dropped table, got %v", cols)
	}
}

func TestExecuteQuery_MaxRows(t *testing.T) {
	store := newTestStore(t)
	store.MaxRows = 2
	loadRows(t, store, sampleRows)

	rows, err := store.ExecuteQuery(context.Background(), "SELECT * FROM result")
	if err != nil {
		t.Fatalf("ExecuteQuery: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len = %d, want 2", len(rows))
	}
}

func TestExecuteQuery_RejectsWrites(t *testing.T) {
	store := newTestStore(t)
	loadRows(t, store, sampleRows)

	for _, q := range []string{
		"DROP TABLE result",
		"SELECT 1; DROP TABLE result",
		"WITH x AS (SELECT 1) DELETE FROM result",
		"/* SELECT */ UPDATE result SET price = 0",
		"SELECT * FROM result -- ; harmless",
	} {
		_, err := store.ExecuteQuery(context.Background(), q)
		if !errors.Is(err, ErrRejectedQuery) {
			t.Errorf("query %q: err = %v, want ErrRejectedQuery", q, err)
		}
	}
}

func TestStripSQLComments(t *testing.T) {
	got := stripSQLComments("SELECT 1 /* x */ -- y\nFROM t")
	if want := "SELECT 1   \nFROM t\n"; got != want {
		t.Fatalf("stripSQLComments = %q, want %q", got, want)
	}
}
