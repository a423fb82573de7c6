// Package engine holds the container geometry engine and the box sequence
// generators that feed it.
package engine

import (
	"fmt"

	"github.com/piwi3910/BinPack3D/internal/model"
)

// Container is a fixed-size bin tracked through a height-map: every
// (x, y) column records the top of the highest box covering it.
type Container struct {
	dx, dy, dz int
	support    model.SupportThresholds

	heightMap [][]int
	boxes     []model.Box
}

// NewContainer creates an empty container with the default support thresholds.
func NewContainer(dx, dy, dz int) *Container {
	c := &Container{
		dx:      dx,
		dy:      dy,
		dz:      dz,
		support: model.DefaultSupportThresholds(),
	}
	c.heightMap = newGrid(dx, dy)
	return c
}

func newGrid(dx, dy int) [][]int {
	grid := make([][]int, dx)
	for i := range grid {
		grid[i] = make([]int, dy)
	}
	return grid
}

// SetSupportThresholds replaces the normal-mode support ratios.
func (c *Container) SetSupportThresholds(t model.SupportThresholds) {
	c.support = t
}

// Size returns the container extents.
func (c *Container) Size() (dx, dy, dz int) {
	return c.dx, c.dy, c.dz
}

// Volume returns the container volume.
func (c *Container) Volume() int {
	return c.dx * c.dy * c.dz
}

// Reset removes every box and flattens the height-map.
func (c *Container) Reset() {
	c.boxes = nil
	for i := range c.heightMap {
		for j := range c.heightMap[i] {
			c.heightMap[i][j] = 0
		}
	}
}

// HeightMap returns a copy of the height-map indexed [x][y].
func (c *Container) HeightMap() [][]int {
	out := make([][]int, len(c.heightMap))
	for i, row := range c.heightMap {
		out[i] = append([]int(nil), row...)
	}
	return out
}

// Boxes returns the committed boxes in placement order.
func (c *Container) Boxes() []model.Box {
	return append([]model.Box(nil), c.boxes...)
}

// UsedVolume returns the volume of all committed boxes.
func (c *Container) UsedVolume() int {
	var total int
	for _, b := range c.boxes {
		total += b.Volume()
	}
	return total
}

// FillRatio returns committed volume over container volume. Commits cannot
// overlap, so a ratio above 1 means the engine is broken and it panics.
func (c *Container) FillRatio() float64 {
	ratio := float64(c.UsedVolume()) / float64(c.Volume())
	if ratio > 1 {
		panic(fmt.Sprintf("engine: fill ratio %.4f exceeds 1", ratio))
	}
	return ratio
}

// ValidatePlacement reports the landing height of box with its footprint
// origin at (x, y), or false when the placement is not allowed.
func (c *Container) ValidatePlacement(box model.Box, x, y int, mode CheckMode) (int, bool) {
	h, rej := c.Check(box, x, y, mode)
	return h, rej == Accepted
}

// Check runs the placement rules in order and returns the landing height
// together with the first rule that failed. The height is -1 unless the
// placement is accepted.
func (c *Container) Check(box model.Box, x, y int, mode CheckMode) (int, Rejection) {
	if x < 0 || y < 0 || box.DX <= 0 || box.DY <= 0 {
		return -1, RejectOutOfBounds
	}
	if x+box.DX > c.dx || y+box.DY > c.dy {
		return -1, RejectOutOfBounds
	}

	x1, y1 := x+box.DX-1, y+box.DY-1
	r00 := c.heightMap[x][y]
	r10 := c.heightMap[x1][y]
	r01 := c.heightMap[x][y1]
	r11 := c.heightMap[x1][y1]
	rMax := max(r00, r10, r01, r11)
	corners := 0
	for _, r := range [4]int{r00, r10, r01, r11} {
		if r == rMax {
			corners++
		}
	}
	if corners < 3 {
		return -1, RejectCorners
	}

	maxH, maxArea := c.footprintMax(x, y, box.DX, box.DY)
	if maxH+box.DZ > c.dz {
		return -1, RejectTooTall
	}

	area := box.DX * box.DY
	if mode == CheckStrict && maxArea < area {
		return -1, RejectSupport
	}
	if !supportRule(c.support).accepts(float64(maxArea)/float64(area), corners, rMax == maxH) {
		return -1, RejectSupport
	}
	return maxH, Accepted
}

// footprintMax returns the highest cell under the footprint and how many
// cells sit at that height.
func (c *Container) footprintMax(x, y, dx, dy int) (int, int) {
	maxH, count := -1, 0
	for i := x; i < x+dx; i++ {
		row := c.heightMap[i]
		for j := y; j < y+dy; j++ {
			switch h := row[j]; {
			case h > maxH:
				maxH, count = h, 1
			case h == maxH:
				count++
			}
		}
	}
	return maxH, count
}

// PossiblePositions marks every footprint origin where box could be
// committed right now.
func (c *Container) PossiblePositions(box model.Box) Mask {
	mask := NewMask(c.dx, c.dy)
	for i := 0; i+box.DX <= c.dx; i++ {
		for j := 0; j+box.DY <= c.dy; j++ {
			if _, ok := c.ValidatePlacement(box, i, j, CheckNormal); ok {
				mask[i][j] = true
			}
		}
	}
	return mask
}

// Commit places box at (x, y) if the placement is valid and returns the box
// with its final origin. An invalid placement leaves the container untouched.
func (c *Container) Commit(box model.Box, x, y int) (model.Box, bool) {
	h, ok := c.ValidatePlacement(box, x, y, CheckNormal)
	if !ok {
		return model.Box{}, false
	}

	placed := box.At(x, y, h)
	c.boxes = append(c.boxes, placed)
	raiseHeightMap(c.heightMap, placed)
	return placed, true
}

func raiseHeightMap(grid [][]int, b model.Box) {
	top := b.Z + b.DZ
	for i := b.X; i < b.X+b.DX; i++ {
		for j := b.Y; j < b.Y+b.DY; j++ {
			if grid[i][j] < top {
				grid[i][j] = top
			}
		}
	}
}

// Verify rebuilds the height-map from the committed boxes and reports the
// first column that disagrees with the maintained one.
func (c *Container) Verify() error {
	rebuilt := newGrid(c.dx, c.dy)
	for _, b := range c.boxes {
		raiseHeightMap(rebuilt, b)
	}
	for i := range rebuilt {
		for j := range rebuilt[i] {
			if rebuilt[i][j] != c.heightMap[i][j] {
				return fmt.Errorf("height-map mismatch at (%d, %d): have %d, boxes give %d",
					i, j, c.heightMap[i][j], rebuilt[i][j])
			}
			if c.heightMap[i][j] > c.dz {
				return fmt.Errorf("height-map at (%d, %d) is %d, above container height %d",
					i, j, c.heightMap[i][j], c.dz)
			}
		}
	}
	return nil
}

// Snapshot copies the current state into a model.Packing.
func (c *Container) Snapshot(label string) model.Packing {
	return model.Packing{
		Label:     label,
		DX:        c.dx,
		DY:        c.dy,
		DZ:        c.dz,
		Boxes:     c.Boxes(),
		HeightMap: c.HeightMap(),
	}
}
