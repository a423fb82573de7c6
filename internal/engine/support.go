package engine

import (
	"github.com/piwi3910/BinPack3D/internal/model"
)

// CheckMode selects how strictly a footprint must be supported.
type CheckMode int

const (
	CheckNormal CheckMode = iota // Graduated partial-support rule
	CheckStrict                  // The whole base must rest at the landing height
)

func (m CheckMode) String() string {
	if m == CheckStrict {
		return "strict"
	}
	return "normal"
}

// Rejection names the placement rule that refused a box.
type Rejection int

const (
	Accepted          Rejection = iota
	RejectOutOfBounds           // Footprint leaves the container floor
	RejectCorners               // Fewer than three footprint corners share the highest corner value
	RejectTooTall               // Box would stick out of the container top
	RejectSupport               // Not enough of the base rests at the landing height
)

func (r Rejection) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectOutOfBounds:
		return "out of bounds"
	case RejectCorners:
		return "unsupported corners"
	case RejectTooTall:
		return "exceeds container height"
	case RejectSupport:
		return "insufficient support"
	default:
		return "unknown"
	}
}

type supportRule model.SupportThresholds

// accepts applies the normal-mode rule to a footprint whose support ratio is
// ratio, with corners footprint corners at the highest corner value.
// cornersAtLanding is true when that corner value is also the landing height.
func (t supportRule) accepts(ratio float64, corners int, cornersAtLanding bool) bool {
	if ratio > t.Full {
		return true
	}
	if cornersAtLanding && corners == 3 && ratio > t.ThreeCorner {
		return true
	}
	if cornersAtLanding && corners == 4 && ratio > t.FourCorner {
		return true
	}
	return false
}

// Mask is a footprint-origin grid indexed [x][y].
type Mask [][]bool

func NewMask(dx, dy int) Mask {
	m := make(Mask, dx)
	for i := range m {
		m[i] = make([]bool, dy)
	}
	return m
}

// Count returns the number of set cells.
func (m Mask) Count() int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if v {
				n++
			}
		}
	}
	return n
}

// Positions lists the set cells in row-major order.
func (m Mask) Positions() [][2]int {
	var out [][2]int
	for i, row := range m {
		for j, v := range row {
			if v {
				out = append(out, [2]int{i, j})
			}
		}
	}
	return out
}

// Ints converts the mask to a 0/1 grid.
func (m Mask) Ints() [][]int {
	out := make([][]int, len(m))
	for i, row := range m {
		out[i] = make([]int, len(row))
		for j, v := range row {
			if v {
				out[i][j] = 1
			}
		}
	}
	return out
}
