package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	cases := map[rune]string{
		',':  "Label,DX,DY,DZ,Qty\nSmall,1,2,3,2\nLarge,4,5,6,1\n",
		';':  "Label;DX;DY;DZ;Qty\nSmall;1;2;3;2\nLarge;4;5;6;1\n",
		'\t': "Label\tDX\tDY\tDZ\tQty\nSmall\t1\t2\t3\t2\nLarge\t4\t5\t6\t1\n",
		'|':  "Label|DX|DY|DZ|Qty\nSmall|1|2|3|2\nLarge|4|5|6|1\n",
	}
	for want, data := range cases {
		if got := DetectCSVDelimiter([]byte(data)); got != want {
			t.Errorf("expected %q delimiter, got %q", want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Label", "DX", "DY", "DZ", "Quantity"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, DX: 1, DY: 2, DZ: 3, Quantity: 4}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{" QTY ", "Height", "Name", "Width", "Length"})

	if !isHeader {
		t.Fatal("expected header to be detected")
	}
	want := ColumnMapping{Label: 2, DX: 4, DY: 3, DZ: 1, Quantity: 0}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Crate", "2", "3", "4", "1"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping != positional {
		t.Errorf("expected positional mapping, got %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,DX,DY,DZ,Qty\nSmall,1,2,3,2\nLarge,4,5,6,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(result.Specs))
	}
	s := result.Specs[0]
	if s.Label != "Small" || s.DX != 1 || s.DY != 2 || s.DZ != 3 || s.Quantity != 2 {
		t.Errorf("unexpected first spec %+v", s)
	}
	if s.ID == "" {
		t.Error("expected an ID")
	}
	if !result.OK() {
		t.Error("expected OK result")
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Small,1,2,3,2\nLarge,4,5,6\n"), ',')

	if len(result.Specs) != 2 {
		t.Fatalf("expected 2 specs, got %d (errors: %v)", len(result.Specs), result.Errors)
	}
	if result.Specs[1].Quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", result.Specs[1].Quantity)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Missing quantity") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing quantity warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Kind,A,B,C\nSmall,1,2,3\n"), ',')

	if len(result.Specs) != 1 {
		t.Fatalf("expected 1 spec, got %d (errors: %v)", len(result.Specs), result.Errors)
	}
	if result.Specs[0].Label != "Small" {
		t.Errorf("expected 'Small', got '%s'", result.Specs[0].Label)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	data := "Label,DX,DY,DZ,Qty\n" +
		"Good,1,1,1,1\n" +
		"BadSide,abc,1,1,1\n" +
		"Fraction,1.5,1,1,1\n" +
		"Negative,-1,1,1,1\n" +
		"Zero,1,1,1,0\n" +
		"BadQty,1,1,1,two\n" +
		"Missing,1,,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Specs) != 1 {
		t.Errorf("expected 1 valid spec, got %d", len(result.Specs))
	}
	if len(result.Errors) != 6 {
		t.Fatalf("expected 6 errors, got %d: %v", len(result.Errors), result.Errors)
	}
	if !strings.HasPrefix(result.Errors[0], "Line 3:") {
		t.Errorf("expected error to name line 3, got %q", result.Errors[0])
	}
	if result.OK() {
		t.Error("expected result with errors not to be OK")
	}
}

func TestImportCSVFromReader_WholeDecimals(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Crate,2.0,3,4.00,1\n"), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Specs[0].DX != 2 || result.Specs[0].DZ != 4 {
		t.Errorf("unexpected spec %+v", result.Specs[0])
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,DX,DY,Qty\nA,1,2,3\n"), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "dz") {
		t.Errorf("expected missing dz error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_EmptyRowsAndLabels(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,DX,DY,DZ\n,1,1,1\n,,,\n\nB,2,2,2\n"), ',')

	if len(result.Specs) != 2 {
		t.Fatalf("expected 2 specs, got %d (errors: %v)", len(result.Specs), result.Errors)
	}
	if result.Specs[0].Label != "Box 1" {
		t.Errorf("expected generated label 'Box 1', got '%s'", result.Specs[0].Label)
	}
}

func TestImportCSVFromReader_OnlyHeaders(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader("Label,DX,DY,DZ\n"), ',')

	if len(result.Errors) == 0 {
		t.Error("expected an error for a header-only file")
	}
}

// ─── ImportCSV File Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.csv")
	if err := os.WriteFile(path, []byte("Name;Length;Width;Height;Pcs\nTote;4;3;2;5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	result := ImportFile(path)

	if len(result.Specs) != 1 {
		t.Fatalf("expected 1 spec, got %d (errors: %v)", len(result.Specs), result.Errors)
	}
	if result.Specs[0].DX != 4 || result.Specs[0].Quantity != 5 {
		t.Errorf("unexpected spec %+v", result.Specs[0])
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_FileNotFound(t *testing.T) {
	result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv"))
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	result := ImportCSV(path)
	if len(result.Errors) != 1 || result.Errors[0] != "File is empty" {
		t.Errorf("expected 'File is empty', got %v", result.Errors)
	}
}

// ─── ImportExcel Tests ─────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.xlsx")

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, v := range row {
			ref, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatal(err)
			}
			if err := f.SetCellValue(sheet, ref, v); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"SKU", "DZ", "DY", "DX", "Qty"},
		{"A-1", 3, 2, 1, 4},
		{"B-2", 6, 5, 4, 1},
	})

	result := ImportFile(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Specs) != 2 {
		t.Fatalf("expected 2 specs, got %d", len(result.Specs))
	}
	s := result.Specs[0]
	if s.Label != "A-1" || s.DX != 1 || s.DY != 2 || s.DZ != 3 || s.Quantity != 4 {
		t.Errorf("unexpected spec %+v", s)
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Tote", 4, 3, 2, 1},
		{"Crate", 5, 5, 5, 2},
	})

	result := ImportExcel(path)

	if len(result.Specs) != 2 {
		t.Fatalf("expected 2 specs, got %d (errors: %v)", len(result.Specs), result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) != 1 {
		t.Errorf("expected 1 error, got %v", result.Errors)
	}
}
