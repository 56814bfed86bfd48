package reference

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"fertilizer-guide/internal/nutrient"
)

//go:embed data/fertilizer.csv
var embeddedCSV []byte

// Embedded returns the bundled 22-crop dataset.
func Embedded() (*Table, error) {
	t, err := LoadCSV(bytes.NewReader(embeddedCSV))
	if err != nil {
		return nil, fmt.Errorf("embedded dataset: %w", err)
	}
	return t, nil
}

// LoadCSV parses a reference table with a header row containing Crop, N, P
// and K columns. Other columns (pH, soil_moisture, a pandas index) are ignored.
func LoadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return fromRecords(records)
}

// LoadCSVFile opens path and calls LoadCSV.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open reference csv: %w", err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadXLSX reads the first sheet of an Excel workbook using the same header
// rules as LoadCSV.
func LoadXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open reference workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("reference workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return fromRecords(rows)
}

// Load picks a loader from the source kind: "embedded", "csv" or "xlsx".
func Load(kind, path string) (*Table, error) {
	switch kind {
	case "", "embedded":
		return Embedded()
	case "csv":
		return LoadCSVFile(path)
	case "xlsx":
		return LoadXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported reference file source %q", kind)
	}
}

type columns struct {
	crop, n, p, k int
}

func headerColumns(header []string) (columns, error) {
	cols := columns{crop: -1, n: -1, p: -1, k: -1}
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "Crop":
			cols.crop = i
		case "N":
			cols.n = i
		case "P":
			cols.p = i
		case "K":
			cols.k = i
		}
	}
	var missing []string
	for _, c := range []struct {
		name string
		idx  int
	}{{"Crop", cols.crop}, {"N", cols.n}, {"P", cols.p}, {"K", cols.k}} {
		if c.idx < 0 {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return cols, fmt.Errorf("header missing columns %v", missing)
	}
	return cols, nil
}

func fromRecords(records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, errors.New("reference data is empty")
	}
	cols, err := headerColumns(records[0])
	if err != nil {
		return nil, err
	}

	rows := make([]nutrient.Requirement, 0, len(records)-1)
	for i, rec := range records[1:] {
		line := i + 2
		if isBlank(rec) {
			continue
		}
		r := nutrient.Requirement{Crop: field(rec, cols.crop)}
		for _, c := range []struct {
			name string
			idx  int
			dst  *float64
		}{
			{"N", cols.n, &r.N},
			{"P", cols.p, &r.P},
			{"K", cols.k, &r.K},
		} {
			v, err := strconv.ParseFloat(field(rec, c.idx), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: column %s: %w", line, c.name, err)
			}
			*c.dst = v
		}
		rows = append(rows, r)
	}

	t, err := New(rows)
	if err != nil {
		return nil, err
	}
	if t.Len() == 0 {
		return nil, errors.New("reference data has no rows")
	}
	return t, nil
}

func field(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
