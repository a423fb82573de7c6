package export

import (
	"fmt"

	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/xuri/excelize/v2"
)

// Sheet names written by ExportXLSX.
const (
	SheetBoxes     = "Boxes"
	SheetHeightMap = "HeightMap"
)

var boxHeader = []interface{}{"#", "DX", "DY", "DZ", "X", "Y", "Z", "Volume"}

// ExportXLSX writes a workbook with the placed boxes on one sheet and the
// height-map, shaded by height, on another.
func ExportXLSX(path string, p model.Packing) error {
	if p.DX <= 0 || p.DY <= 0 {
		return fmt.Errorf("%w: empty container", ErrNothingToExport)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetBoxes); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeBoxes(f, p); err != nil {
		return err
	}

	if _, err := f.NewSheet(SheetHeightMap); err != nil {
		return fmt.Errorf("failed to add sheet: %w", err)
	}
	if err := writeHeightMap(f, p); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeBoxes(f *excelize.File, p model.Packing) error {
	if err := f.SetSheetRow(SheetBoxes, "A1", &boxHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i, b := range p.Boxes {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{i + 1, b.DX, b.DY, b.DZ, b.X, b.Y, b.Z, b.Volume()}
		if err := f.SetSheetRow(SheetBoxes, cell, &row); err != nil {
			return fmt.Errorf("failed to write box %d: %w", i+1, err)
		}
	}

	// Totals under the table
	totalRow := len(p.Boxes) + 3
	summary := [][]interface{}{
		{"Container", fmt.Sprintf("%d x %d x %d", p.DX, p.DY, p.DZ)},
		{"Used volume", p.UsedVolume()},
		{"Fill ratio", p.FillRatio()},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, totalRow+i)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetBoxes, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	return nil
}

// writeHeightMap lays the grid out with x as rows and y as columns, the
// same orientation as the in-memory map.
func writeHeightMap(f *excelize.File, p model.Packing) error {
	styles := map[int]int{}
	styleFor := func(h int) (int, error) {
		if id, ok := styles[h]; ok {
			return id, nil
		}
		r, g, b := shade(h, p.DZ)
		id, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fmt.Sprintf("#%02X%02X%02X", r, g, b)}},
			Alignment: &excelize.Alignment{Horizontal: "center"},
		})
		if err != nil {
			return 0, fmt.Errorf("failed to create style: %w", err)
		}
		styles[h] = id
		return id, nil
	}

	for i, row := range p.HeightMap {
		for j, h := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetHeightMap, cell, h); err != nil {
				return fmt.Errorf("failed to write height-map: %w", err)
			}
			id, err := styleFor(h)
			if err != nil {
				return err
			}
			if err := f.SetCellStyle(SheetHeightMap, cell, cell, id); err != nil {
				return fmt.Errorf("failed to style height-map: %w", err)
			}
		}
	}
	return nil
}
