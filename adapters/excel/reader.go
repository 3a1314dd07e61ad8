// Package excel reads Excel and CSV files into the table abstraction the
// engines consume. Non-numeric columns are label-encoded so categorical
// grouping variables come out as comparable numeric keys.
package excel

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"goanova/domain/table"
)

// DataReader handles reading Excel and CSV files.
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	sheet    string
}

// NewDataReader creates a reader that handles both Excel and CSV files,
// sniffing the type from the file extension.
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType, sheet: "Sheet1"}
}

// WithSheet overrides the worksheet name used for Excel files.
func (r *DataReader) WithSheet(sheet string) *DataReader {
	if sheet != "" {
		r.sheet = sheet
	}
	return r
}

// ReadTable reads the file into a table. The first row is the header.
func (r *DataReader) ReadTable() (*table.Table, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	var rows [][]string
	var err error
	switch r.fileType {
	case "csv":
		rows, err = r.readCSVRows()
	case "xlsx":
		rows, err = r.readExcelRows()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", r.fileType)
	}
	return buildTable(rows)
}

func (r *DataReader) readExcelRows() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.sheet, err)
	}
	log.Printf("[DataReader] read %d rows from %s (%s)", len(rows), r.filePath, r.sheet)
	return rows, nil
}

func (r *DataReader) readCSVRows() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	log.Printf("[DataReader] read %d rows from %s", len(rows), r.filePath)
	return rows, nil
}

// buildTable converts header+data string rows into a numeric table. A
// column where every non-empty cell parses as a number becomes numeric with
// empty cells as NaN; any other column is label-encoded by sorted distinct
// value.
func buildTable(rows [][]string) (*table.Table, error) {
	header := rows[0]
	data := rows[1:]

	tbl := table.New()
	for j, label := range header {
		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("column_%d", j+1)
		}
		cells := make([]string, len(data))
		for i, row := range data {
			if j < len(row) {
				cells[i] = strings.TrimSpace(row[j])
			}
		}
		if err := tbl.AddColumn(label, coerceColumn(cells)); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func coerceColumn(cells []string) []float64 {
	numeric := true
	for _, cell := range cells {
		if cell == "" {
			continue
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			numeric = false
			break
		}
	}

	out := make([]float64, len(cells))
	if numeric {
		for i, cell := range cells {
			if cell == "" {
				out[i] = math.NaN()
				continue
			}
			out[i], _ = strconv.ParseFloat(cell, 64)
		}
		return out
	}

	// Label encoding: sorted distinct values map to 0..k-1 so the encoding
	// is deterministic across reads of the same file.
	distinct := make(map[string]bool)
	for _, cell := range cells {
		if cell != "" {
			distinct[cell] = true
		}
	}
	levels := make([]string, 0, len(distinct))
	for v := range distinct {
		levels = append(levels, v)
	}
	sort.Strings(levels)
	codes := make(map[string]float64, len(levels))
	for i, v := range levels {
		codes[v] = float64(i)
	}

	for i, cell := range cells {
		if cell == "" {
			out[i] = math.NaN()
			continue
		}
		out[i] = codes[cell]
	}
	return out
}
