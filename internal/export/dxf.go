package export

import (
	"fmt"
	"sort"

	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

const containerLayer = "CONTAINER"

var layerColors = []color.ColorNumber{
	color.Red,
	color.Yellow,
	color.Green,
	color.Cyan,
	color.Blue,
	color.Magenta,
}

// LevelLayer names the layer holding the boxes that rest at height z.
func LevelLayer(z int) string {
	return fmt.Sprintf("Z%03d", z)
}

// ExportDXF writes a top view of the packing: the container outline on its
// own layer and every box footprint on the layer of its landing height.
// Drawing units are container cells, with x across and y up.
func ExportDXF(path string, p model.Packing) error {
	if p.DX <= 0 || p.DY <= 0 {
		return fmt.Errorf("%w: empty container", ErrNothingToExport)
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(containerLayer, color.White, table.LT_CONTINUOUS, true); err != nil {
		return fmt.Errorf("failed to add layer: %w", err)
	}
	if err := rect(d, 0, 0, float64(p.DX), float64(p.DY), 0); err != nil {
		return err
	}

	levels := map[int][]int{}
	for i, b := range p.Boxes {
		levels[b.Z] = append(levels[b.Z], i)
	}
	zs := make([]int, 0, len(levels))
	for z := range levels {
		zs = append(zs, z)
	}
	sort.Ints(zs)

	for li, z := range zs {
		name := LevelLayer(z)
		if _, err := d.AddLayer(name, layerColors[li%len(layerColors)], table.LT_CONTINUOUS, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", name, err)
		}
		for _, i := range levels[z] {
			b := p.Boxes[i]
			elevation := float64(b.Z + b.DZ)
			if err := rect(d, float64(b.X), float64(b.Y), float64(b.DX), float64(b.DY), elevation); err != nil {
				return err
			}
			cx := float64(b.X) + float64(b.DX)/2
			cy := float64(b.Y) + float64(b.DY)/2
			if _, err := d.Text(fmt.Sprintf("%d", i+1), cx, cy, elevation, 0.4); err != nil {
				return fmt.Errorf("failed to add text: %w", err)
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write DXF: %w", err)
	}
	return nil
}

// rect draws an axis-aligned rectangle on the current layer at height z.
func rect(d *drawing.Drawing, x, y, w, h, z float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], z, b[0], b[1], z); err != nil {
			return fmt.Errorf("failed to add line: %w", err)
		}
	}
	return nil
}
