package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/BinPack3D/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each box label's QR code.
type LabelInfo struct {
	Packing string `json:"packing"`
	Seq     int    `json:"seq"` // 1-based placement order
	DX      int    `json:"dx"`
	DY      int    `json:"dy"`
	DZ      int    `json:"dz"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Z       int    `json:"z"`
}

// Label layout for Avery 5160-compatible sheets, 3 columns x 10 rows on US
// Letter.
const (
	labelMarginTop  = 12.7
	labelMarginLeft = 4.8
	labelWidth      = 66.7
	labelHeight     = 25.4
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0
	labelPadding    = 2.0
)

// CollectLabelInfos lists one label per placed box in placement order.
func CollectLabelInfos(p model.Packing) []LabelInfo {
	labels := make([]LabelInfo, 0, len(p.Boxes))
	for i, b := range p.Boxes {
		labels = append(labels, LabelInfo{
			Packing: p.Label,
			Seq:     i + 1,
			DX:      b.DX,
			DY:      b.DY,
			DZ:      b.DZ,
			X:       b.X,
			Y:       b.Y,
			Z:       b.Z,
		})
	}
	return labels
}

// ExportLabels writes a label sheet PDF with one QR-coded label per placed
// box. The QR code carries the LabelInfo as JSON so a scanner can tell a
// loader where the box goes.
func ExportLabels(path string, p model.Packing) error {
	labels := CollectLabelInfos(p)
	if len(labels) == 0 {
		return fmt.Errorf("%w: no boxes placed", ErrNothingToExport)
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}
		pos := i % labelsPerPage
		x := labelMarginLeft + float64(pos%labelCols)*labelWidth
		y := labelMarginTop + float64(pos/labelCols)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label %d: %w", label.Seq, err)
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write labels: %w", err)
	}
	return nil
}

func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}
	png, err := qrcode.Encode(string(payload), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d", info.Seq)
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(imgName, opts, bytes.NewReader(png))
	pdf.ImageOptions(imgName, x+labelWidth-qrSize-labelPadding, y+(labelHeight-qrSize)/2, qrSize, qrSize, false, opts, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	col := colorFor(info.Seq - 1)
	pdf.SetFillColor(col.R, col.G, col.B)
	pdf.Rect(textX, y+labelPadding+0.5, 3, 3, "F")

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX+4, y+labelPadding)
	pdf.CellFormat(textW-4, 4.5, fmt.Sprintf("Box #%d", info.Seq), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%d x %d x %d", info.DX, info.DY, info.DZ), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("at (%d, %d, %d)", info.X, info.Y, info.Z), "", 1, "L", false, 0, "")

	if info.Packing != "" {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.CellFormat(textW, 3, info.Packing, "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)
	return nil
}
