// Package importer reads box catalogs from CSV and Excel files. It detects
// the CSV delimiter, maps columns from case-insensitive header aliases and
// falls back to positional columns when there is no header.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/xuri/excelize/v2"
)

// Result holds the outcome of an import. Rows with errors are skipped; the
// rest of the file is still imported.
type Result struct {
	Specs    []model.BoxSpec
	Errors   []string
	Warnings []string
}

// OK reports whether at least one catalog entry was read and nothing failed.
func (r Result) OK() bool {
	return len(r.Errors) == 0 && len(r.Specs) > 0
}

// ColumnMapping maps column roles to their indices, -1 when absent.
type ColumnMapping struct {
	Label    int
	DX       int
	DY       int
	DZ       int
	Quantity int
}

// positional is used for files without a header: label, dx, dy, dz, quantity.
var positional = ColumnMapping{Label: 0, DX: 1, DY: 2, DZ: 3, Quantity: 4}

// headerAliases maps column roles to their accepted header names (lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "box", "box name", "description", "desc", "item", "sku"},
	"dx":       {"dx", "x", "depth", "d", "length", "len", "l"},
	"dy":       {"dy", "y", "width", "w"},
	"dz":       {"dz", "z", "height", "h"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "weight"},
}

// DetectCSVDelimiter picks the delimiter among comma, semicolon, tab and
// pipe that splits the rows most consistently into more than one column.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		cols := len(records[0])
		consistent := 0
		for _, row := range records {
			if len(row) == cols {
				consistent++
			}
		}
		if score := consistent*10 + cols; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

// DetectColumns maps a header row onto column roles. The boolean is false
// when no cell matched any alias; the mapping is then positional.
func DetectColumns(row []string) (ColumnMapping, bool) {
	m := ColumnMapping{Label: -1, DX: -1, DY: -1, DZ: -1, Quantity: -1}
	slots := map[string]*int{
		"label":    &m.Label,
		"dx":       &m.DX,
		"dy":       &m.DY,
		"dz":       &m.DZ,
		"quantity": &m.Quantity,
	}

	found := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized == alias && *slots[role] == -1 {
					*slots[role] = i
					found = true
				}
			}
		}
	}
	if !found {
		return positional, false
	}
	return m, true
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseSide reads a positive integer extent. Whole-number decimals such as
// "4.0" are accepted since spreadsheets like to write them.
func parseSide(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, errors.New("not a whole number")
	}
	return int(f), nil
}

// parseRow turns one row into a catalog entry. It returns an error message or a
// warning message, never both.
func parseRow(row []string, m ColumnMapping, rowLabel string, n int) (model.BoxSpec, string, string) {
	label := cell(row, m.Label)
	if label == "" {
		label = fmt.Sprintf("Box %d", n+1)
	}

	var sides [3]int
	for i, col := range []struct {
		name string
		idx  int
	}{{"dx", m.DX}, {"dy", m.DY}, {"dz", m.DZ}} {
		raw := cell(row, col.idx)
		if raw == "" {
			return model.BoxSpec{}, fmt.Sprintf("%s: Missing %s value", rowLabel, col.name), ""
		}
		v, err := parseSide(raw)
		if err != nil {
			return model.BoxSpec{}, fmt.Sprintf("%s: Invalid %s '%s'", rowLabel, col.name, raw), ""
		}
		sides[i] = v
	}

	qty, warning := 1, ""
	if raw := cell(row, m.Quantity); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return model.BoxSpec{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, raw), ""
		}
		qty = v
	} else {
		warning = fmt.Sprintf("%s: Missing quantity, using 1", rowLabel)
	}

	if sides[0] <= 0 || sides[1] <= 0 || sides[2] <= 0 || qty <= 0 {
		return model.BoxSpec{}, fmt.Sprintf("%s: Extents and quantity must be positive", rowLabel), ""
	}
	return model.NewBoxSpec(label, sides[0], sides[1], sides[2], qty), "", warning
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ImportFile dispatches on the file extension: .xlsx and .xlsm go to
// ImportExcel, everything else to ImportCSV.
func ImportFile(path string) Result {
	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return ImportExcel(path)
	}
	return ImportCSV(path)
}

// ImportCSV imports a catalog from a CSV file with any supported delimiter.
func ImportCSV(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Result{Errors: []string{"File is empty"}}
	}

	var warnings []string
	delim := DetectCSVDelimiter(data)
	if delim != ',' {
		name := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delim]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", name))
	}

	records, err := readCSV(bytes.NewReader(data), delim)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importRows(records, "Line", warnings)
}

// ImportCSVFromReader imports a catalog from r using a known delimiter.
func ImportCSVFromReader(r io.Reader, delim rune) Result {
	records, err := readCSV(r, delim)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importRows(records, "Line", nil)
}

// ImportExcel imports a catalog from the first sheet of a workbook.
func ImportExcel(path string) Result {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot open Excel file: %v", err)}}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Result{Errors: []string{"Excel file has no sheets"}}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return Result{Errors: []string{fmt.Sprintf("Cannot read Excel data: %v", err)}}
	}
	return importRows(rows, "Row", nil)
}

func importRows(rows [][]string, prefix string, warnings []string) Result {
	result := Result{Warnings: warnings}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	start := 0
	switch {
	case hasHeader:
		start = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		for _, c := range []struct {
			name string
			idx  int
		}{{"dx", mapping.DX}, {"dy", mapping.DY}, {"dz", mapping.DZ}} {
			if c.idx == -1 {
				missing = append(missing, c.name)
			}
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	case len(rows[0]) >= 4:
		// Unknown header words still make a non-numeric first data column.
		if _, err := parseSide(cell(rows[0], 1)); err != nil {
			start = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := start; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", prefix, i+1)
		spec, errMsg, warning := parseRow(rows[i], mapping, rowLabel, len(result.Specs))
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		result.Specs = append(result.Specs, spec)
	}

	if len(result.Specs) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
	}
	return result
}
