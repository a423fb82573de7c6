package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Axis orientation used throughout:
//
//	x: depth  (small x = deep inside, large x = near the viewer)
//	y: length (small y = left,        large y = right)
//	z: height (small z = low,         large z = high)

// Box is a rectangular box with integer extents. X, Y, Z locate the
// deepest-leftmost-lowest corner once the box has been placed.
type Box struct {
	DX int `json:"dx" yaml:"dx"`
	DY int `json:"dy" yaml:"dy"`
	DZ int `json:"dz" yaml:"dz"`
	X  int `json:"x" yaml:"x"`
	Y  int `json:"y" yaml:"y"`
	Z  int `json:"z" yaml:"z"`
}

func NewBox(dx, dy, dz int) Box {
	return Box{DX: dx, DY: dy, DZ: dz}
}

// At returns a copy of the box with its origin moved to (x, y, z).
func (b Box) At(x, y, z int) Box {
	b.X, b.Y, b.Z = x, y, z
	return b
}

// Volume returns DX*DY*DZ.
func (b Box) Volume() int {
	return b.DX * b.DY * b.DZ
}

// Extents returns the three side lengths.
func (b Box) Extents() [3]int {
	return [3]int{b.DX, b.DY, b.DZ}
}

// Rotate returns a copy of the box with the axis pair named by r swapped.
// The origin is left untouched.
func (b Box) Rotate(r Rotation) Box {
	switch r {
	case RotateXY:
		b.DX, b.DY = b.DY, b.DX
	case RotateXZ:
		b.DX, b.DZ = b.DZ, b.DX
	case RotateYZ:
		b.DY, b.DZ = b.DZ, b.DY
	}
	return b
}

func (b Box) String() string {
	return fmt.Sprintf("Box: Size %d %d %d Position %d %d %d", b.DX, b.DY, b.DZ, b.X, b.Y, b.Z)
}

// Rotation is an axis-pair swap applied to a box.
type Rotation int

const (
	RotateNone Rotation = iota // Keep the box as generated
	RotateXY                   // Swap depth and length
	RotateXZ                   // Swap depth and height
	RotateYZ                   // Swap length and height
)

// AllRotations lists every rotation in declaration order.
var AllRotations = []Rotation{RotateNone, RotateXY, RotateXZ, RotateYZ}

func (r Rotation) String() string {
	switch r {
	case RotateXY:
		return "xy"
	case RotateXZ:
		return "xz"
	case RotateYZ:
		return "yz"
	default:
		return "none"
	}
}

// ParseRotation converts a rotation name ("none", "xy", "xz", "yz") into a Rotation.
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "noop", "":
		return RotateNone, nil
	case "xy":
		return RotateXY, nil
	case "xz":
		return RotateXZ, nil
	case "yz":
		return RotateYZ, nil
	default:
		return RotateNone, fmt.Errorf("unknown rotation %q", s)
	}
}

// MarshalText encodes the rotation by name so settings files stay readable.
func (r Rotation) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Rotation) UnmarshalText(text []byte) error {
	parsed, err := ParseRotation(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// BoxSpec is a catalog entry the random generator samples from.
type BoxSpec struct {
	ID       string `json:"id" yaml:"id"`
	Label    string `json:"label" yaml:"label"`
	DX       int    `json:"dx" yaml:"dx"`
	DY       int    `json:"dy" yaml:"dy"`
	DZ       int    `json:"dz" yaml:"dz"`
	Quantity int    `json:"quantity" yaml:"quantity"` // Sampling weight, defaults to 1
}

func NewBoxSpec(label string, dx, dy, dz, qty int) BoxSpec {
	return BoxSpec{
		ID:       uuid.New().String()[:8],
		Label:    label,
		DX:       dx,
		DY:       dy,
		DZ:       dz,
		Quantity: qty,
	}
}

// Box returns the unplaced box described by this catalog entry.
func (s BoxSpec) Box() Box {
	return NewBox(s.DX, s.DY, s.DZ)
}

// Expand turns catalog entries into box templates, one per unit of quantity,
// so that a uniform draw over the result honours the quantities as weights.
// A quantity below 1 counts as 1.
func Expand(specs []BoxSpec) []Box {
	var boxes []Box
	for _, s := range specs {
		n := s.Quantity
		if n < 1 {
			n = 1
		}
		for i := 0; i < n; i++ {
			boxes = append(boxes, s.Box())
		}
	}
	return boxes
}

// GeneratorKind selects the box sequence generator.
type GeneratorKind string

const (
	GeneratorRandom     GeneratorKind = "random" // Uniform draws from a catalog
	GeneratorCutByZ     GeneratorKind = "cut-1"  // Cutting generator ordered by z origin
	GeneratorCutByStack GeneratorKind = "cut-2"  // Cutting generator ordered by simulated stacking
)

// SupportThresholds are the normal-mode support ratios a footprint must
// exceed to be accepted.
type SupportThresholds struct {
	Full        float64 `json:"full" yaml:"full"`                 // Any corner layout
	ThreeCorner float64 `json:"three_corner" yaml:"three_corner"` // Three corners at landing height
	FourCorner  float64 `json:"four_corner" yaml:"four_corner"`   // All four corners at landing height
}

func DefaultSupportThresholds() SupportThresholds {
	return SupportThresholds{Full: 0.95, ThreeCorner: 0.85, FourCorner: 0.50}
}

// WithDefaults replaces every zero threshold with its default value.
func (t SupportThresholds) WithDefaults() SupportThresholds {
	d := DefaultSupportThresholds()
	if t.Full <= 0 {
		t.Full = d.Full
	}
	if t.ThreeCorner <= 0 {
		t.ThreeCorner = d.ThreeCorner
	}
	if t.FourCorner <= 0 {
		t.FourCorner = d.FourCorner
	}
	return t
}

// Settings holds everything needed to build a packing episode.
type Settings struct {
	// Container
	ContainerX int `json:"container_x" yaml:"container_x"` // Depth
	ContainerY int `json:"container_y" yaml:"container_y"` // Length
	ContainerZ int `json:"container_z" yaml:"container_z"` // Height

	// Sequence generator
	Generator  GeneratorKind `json:"generator" yaml:"generator"`
	Catalog    []BoxSpec     `json:"catalog" yaml:"catalog"`           // Random generator only
	MinSideLen int           `json:"min_side_len" yaml:"min_side_len"` // Cutting only, 0 = derive from container
	MaxSideLen int           `json:"max_side_len" yaml:"max_side_len"` // Cutting only, 0 = derive from container
	WindowSize int           `json:"window_size" yaml:"window_size"`   // Foreseeable boxes
	Rotations  []Rotation    `json:"rotations" yaml:"rotations"`       // Enabled rotations
	Seed       int64         `json:"seed" yaml:"seed"`                 // Random source seed

	// Placement stability
	Support SupportThresholds `json:"support" yaml:"support"`
}

func DefaultSettings() Settings {
	return Settings{
		ContainerX: 20,
		ContainerY: 20,
		ContainerZ: 20,
		Generator:  GeneratorRandom,
		Catalog: []BoxSpec{
			{ID: "unit", Label: "Unit", DX: 1, DY: 1, DZ: 1, Quantity: 1},
			{ID: "brick", Label: "Brick", DX: 2, DY: 3, DZ: 4, Quantity: 1},
		},
		WindowSize: 1,
		Rotations:  []Rotation{RotateNone},
		Seed:       1,
		Support:    DefaultSupportThresholds(),
	}
}

// ContainerVolume returns the container volume described by the settings.
func (s Settings) ContainerVolume() int {
	return s.ContainerX * s.ContainerY * s.ContainerZ
}

// Packing is a read-only snapshot of a container and its placed boxes.
type Packing struct {
	Label     string  `json:"label"`
	DX        int     `json:"dx"`
	DY        int     `json:"dy"`
	DZ        int     `json:"dz"`
	Boxes     []Box   `json:"boxes"`
	HeightMap [][]int `json:"height_map"`
}

// UsedVolume returns the total volume of the placed boxes.
func (p Packing) UsedVolume() int {
	var total int
	for _, b := range p.Boxes {
		total += b.Volume()
	}
	return total
}

// TotalVolume returns the container volume.
func (p Packing) TotalVolume() int {
	return p.DX * p.DY * p.DZ
}

// FillRatio returns the used fraction of the container volume.
func (p Packing) FillRatio() float64 {
	tv := p.TotalVolume()
	if tv == 0 {
		return 0
	}
	return float64(p.UsedVolume()) / float64(tv)
}

// MaxHeight returns the highest value of the height-map.
func (p Packing) MaxHeight() int {
	var h int
	for _, row := range p.HeightMap {
		for _, v := range row {
			if v > h {
				h = v
			}
		}
	}
	return h
}
