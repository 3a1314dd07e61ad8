package excel

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestReadTableCSV(t *testing.T) {
	path := writeCSV(t, "group,score\nA,2\nA,4\nB,8\nB,10\n")

	tbl, err := NewDataReader(path).ReadTable()
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if tbl.NumRows() != 4 {
		t.Fatalf("expected 4 rows, got %d", tbl.NumRows())
	}
	cols := tbl.Columns()
	if len(cols) != 2 || cols[0] != "group" || cols[1] != "score" {
		t.Fatalf("unexpected columns: %v", cols)
	}

	// "A" and "B" label-encode to 0 and 1.
	group, _ := tbl.Column("group")
	want := []float64{0, 0, 1, 1}
	for i := range want {
		if group[i] != want[i] {
			t.Fatalf("group[%d]: want %v, got %v", i, want[i], group[i])
		}
	}
	score, _ := tbl.Column("score")
	if score[0] != 2 || score[3] != 10 {
		t.Fatalf("unexpected score values: %v", score)
	}
}

func TestReadTableEmptyCellsBecomeNaN(t *testing.T) {
	path := writeCSV(t, "x,y\n1,foo\n,bar\n3,\n")

	tbl, err := NewDataReader(path).ReadTable()
	if err != nil {
		t.Fatalf("read table: %v", err)
	}

	x, _ := tbl.Column("x")
	if x[0] != 1 || !math.IsNaN(x[1]) || x[2] != 3 {
		t.Fatalf("unexpected x values: %v", x)
	}
	// Categorical column: empty cell is NaN, not a level of its own.
	y, _ := tbl.Column("y")
	if y[0] != 1 || y[1] != 0 || !math.IsNaN(y[2]) {
		t.Fatalf("unexpected y encoding: %v", y)
	}
}

func TestReadTableMixedColumnIsLabelEncoded(t *testing.T) {
	// One non-numeric cell makes the whole column categorical.
	path := writeCSV(t, "v\n10\nx\n10\n")

	tbl, err := NewDataReader(path).ReadTable()
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	v, _ := tbl.Column("v")
	// Sorted distinct levels: "10" -> 0, "x" -> 1.
	if v[0] != 0 || v[1] != 1 || v[2] != 0 {
		t.Fatalf("unexpected encoding: %v", v)
	}
}

func TestReadTableExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.xlsx")
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"group", "score"},
		{"A", 2},
		{"B", 8},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save xlsx: %v", err)
	}

	tbl, err := NewDataReader(path).ReadTable()
	if err != nil {
		t.Fatalf("read table: %v", err)
	}
	if tbl.NumRows() != 2 {
		t.Fatalf("expected 2 rows, got %d", tbl.NumRows())
	}
	score, _ := tbl.Column("score")
	if score[0] != 2 || score[1] != 8 {
		t.Fatalf("unexpected score values: %v", score)
	}
}

func TestReadTableErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := NewDataReader("/nonexistent/data.csv").ReadTable(); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("header only", func(t *testing.T) {
		path := writeCSV(t, "a,b\n")
		if _, err := NewDataReader(path).ReadTable(); err == nil {
			t.Fatal("expected error for header-only file")
		}
	})

	t.Run("missing sheet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data.xlsx")
		f := excelize.NewFile()
		if err := f.SaveAs(path); err != nil {
			t.Fatalf("save xlsx: %v", err)
		}
		if _, err := NewDataReader(path).WithSheet("Other").ReadTable(); err == nil {
			t.Fatal("expected error for missing sheet")
		}
	})
}
