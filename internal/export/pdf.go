// Package export writes packing results to PDF, label sheets, spreadsheets
// and DXF drawings.
package export

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/BinPack3D/internal/model"
)

// ErrNothingToExport is returned when there is no packing or no box to write.
var ErrNothingToExport = errors.New("nothing to export")

// boxColor represents an RGB color for a placed box.
type boxColor struct {
	R, G, B int
}

// boxColors is cycled through by placement order.
var boxColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(i int) boxColor {
	return boxColors[i%len(boxColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	drawAreaTop  = marginTop + headerHeight + 5.0
	gridWidth    = 130.0 // Each of the two top views
	gridGap      = 7.0
	tableRows    = 18 // Box rows listed under the views
)

// ExportPDF writes one page per packing with two top views, the height-map
// shaded by height and the placed boxes colored by placement order, followed
// by a summary page.
func ExportPDF(path string, packings []model.Packing) error {
	if len(packings) == 0 {
		return fmt.Errorf("%w: no packings", ErrNothingToExport)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, p := range packings {
		pdf.AddPage()
		renderPackingPage(pdf, p, i+1)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, packings)

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}
	return nil
}

func renderPackingPage(pdf *fpdf.Fpdf, p model.Packing, num int) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Packing %d: %s (%d x %d x %d)", num, p.Label, p.DX, p.DY, p.DZ)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Boxes: %d | Used volume: %d | Container volume: %d | Fill: %.1f%% | Max height: %d",
		len(p.Boxes), p.UsedVolume(), p.TotalVolume(), p.FillRatio()*100, p.MaxHeight())
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	if p.DX <= 0 || p.DY <= 0 {
		return
	}

	// x runs down the page, y across, matching height-map row/column order.
	drawHeight := pageHeight - drawAreaTop - marginBottom - 40
	scale := math.Min(gridWidth/float64(p.DY), drawHeight/float64(p.DX))
	canvasW := float64(p.DY) * scale
	canvasH := float64(p.DX) * scale

	leftX := marginLeft
	rightX := marginLeft + gridWidth + gridGap
	drawHeightMap(pdf, p, scale, leftX, drawAreaTop)
	drawBoxes(pdf, p, scale, rightX, drawAreaTop)

	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)
	pdf.SetXY(leftX, drawAreaTop+canvasH+1)
	pdf.CellFormat(canvasW, 4, "Height-map", "", 0, "C", false, 0, "")
	pdf.SetXY(rightX, drawAreaTop+canvasH+1)
	pdf.CellFormat(canvasW, 4, "Box footprints", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)

	drawBoxTable(pdf, p, drawAreaTop+canvasH+7)
}

// shade maps a height onto a grey-blue ramp; empty cells stay white.
func shade(h, maxH int) (int, int, int) {
	if h == 0 || maxH == 0 {
		return 255, 255, 255
	}
	f := float64(h) / float64(maxH)
	return int(220 - 160*f), int(230 - 140*f), int(255 - 80*f)
}

func drawHeightMap(pdf *fpdf.Fpdf, p model.Packing, scale, offsetX, offsetY float64) {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	showValues := scale >= 5

	for i, row := range p.HeightMap {
		for j, h := range row {
			r, g, b := shade(h, p.DZ)
			pdf.SetFillColor(r, g, b)
			cx := offsetX + float64(j)*scale
			cy := offsetY + float64(i)*scale
			pdf.Rect(cx, cy, scale, scale, "FD")

			if showValues && h > 0 {
				pdf.SetFont("Helvetica", "", math.Min(7, scale*1.2))
				pdf.SetXY(cx, cy+scale/2-1.5)
				pdf.CellFormat(scale, 3, fmt.Sprintf("%d", h), "", 0, "C", false, 0, "")
			}
		}
	}

	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, float64(p.DY)*scale, float64(p.DX)*scale, "D")
}

func drawBoxes(pdf *fpdf.Fpdf, p model.Packing, scale, offsetX, offsetY float64) {
	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, float64(p.DY)*scale, float64(p.DX)*scale, "FD")

	// Later boxes sit on top in a top view, so draw in placement order.
	for i, b := range p.Boxes {
		col := colorFor(i)
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		bx := offsetX + float64(b.Y)*scale
		by := offsetY + float64(b.X)*scale
		bw := float64(b.DY) * scale
		bh := float64(b.DX) * scale
		pdf.Rect(bx, by, bw, bh, "FD")

		if bw > 6 && bh > 4 {
			label := fmt.Sprintf("%d", i+1)
			pdf.SetFont("Helvetica", "", labelFontSize(bw, bh))
			pdf.SetXY(bx, by+bh/2-2)
			pdf.CellFormat(bw, 4, label, "", 0, "C", false, 0, "")
		}
	}
}

// drawBoxTable lists the first placed boxes under the views.
func drawBoxTable(pdf *fpdf.Fpdf, p model.Packing, startY float64) {
	if len(p.Boxes) == 0 {
		return
	}
	colWidths := []float64{12, 35, 35, 25}
	headers := []string{"#", "Size", "Origin", "Volume"}

	pdf.SetFont("Helvetica", "B", 7)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, startY)
		pdf.CellFormat(colWidths[i], 4, h, "1", 0, "C", true, 0, "")
		x += colWidths[i]
	}

	pdf.SetFont("Helvetica", "", 7)
	y := startY + 4
	for i, b := range p.Boxes {
		if i == tableRows {
			pdf.SetXY(marginLeft, y)
			pdf.CellFormat(100, 4, fmt.Sprintf("... and %d more", len(p.Boxes)-tableRows), "", 0, "L", false, 0, "")
			break
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d x %d x %d", b.DX, b.DY, b.DZ),
			fmt.Sprintf("(%d, %d, %d)", b.X, b.Y, b.Z),
			fmt.Sprintf("%d", b.Volume()),
		}
		x = marginLeft
		for j, c := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], 4, c, "1", 0, "C", false, 0, "")
			x += colWidths[j]
		}
		y += 4
		if y > pageHeight-marginBottom {
			break
		}
	}
}

func renderSummaryPage(pdf *fpdf.Fpdf, packings []model.Packing) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Packing Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	var boxes int
	var best, sum float64
	for _, p := range packings {
		boxes += len(p.Boxes)
		fill := p.FillRatio()
		sum += fill
		best = math.Max(best, fill)
	}

	summaryItems := []struct {
		label string
		value string
	}{
		{"Packings", fmt.Sprintf("%d", len(packings))},
		{"Boxes Placed", fmt.Sprintf("%d", boxes)},
		{"Mean Fill", fmt.Sprintf("%.1f%%", sum/float64(len(packings))*100)},
		{"Best Fill", fmt.Sprintf("%.1f%%", best*100)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}
	y += 5

	colWidths := []float64{20, 70, 50, 30, 35, 40}
	headers := []string{"#", "Label", "Container", "Boxes", "Fill", "Max Height"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	x := marginLeft
	for i, h := range headers {
		pdf.SetXY(x, y)
		pdf.CellFormat(colWidths[i], 6, h, "1", 0, "C", true, 0, "")
		x += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, p := range packings {
		if y > pageHeight-marginBottom-6 {
			break
		}
		row := []string{
			fmt.Sprintf("%d", i+1),
			p.Label,
			fmt.Sprintf("%d x %d x %d", p.DX, p.DY, p.DZ),
			fmt.Sprintf("%d", len(p.Boxes)),
			fmt.Sprintf("%.1f%%", p.FillRatio()*100),
			fmt.Sprintf("%d", p.MaxHeight()),
		}
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		x = marginLeft
		for j, c := range row {
			pdf.SetXY(x, y)
			pdf.CellFormat(colWidths[j], 6, c, "1", 0, "C", true, 0, "")
			x += colWidths[j]
		}
		y += 6
	}
}

// labelFontSize picks a font size that fits a rectangle of w x h mm.
func labelFontSize(w, h float64) float64 {
	size := math.Min(w/4, h/2)
	return math.Max(4, math.Min(size, 9))
}
