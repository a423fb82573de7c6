package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/BinPack3D/internal/model"
)

// SortMode orders a cut set before it is handed out.
type SortMode int

const (
	SortByZ          SortMode = iota // Ascending z origin inside the container
	SortByStackOrder                 // Order found by stacking the cuts into an empty container
)

func (m SortMode) String() string {
	if m == SortByStackOrder {
		return "ByStackOrder"
	}
	return "ByZ"
}

// CutConfig describes how the container volume is split.
type CutConfig struct {
	Dims       [3]int // Container extents x, y, z
	MinSideLen int    // 0 = max(1, min(Dims)/5)
	MaxSideLen int    // 0 = max(1, min(Dims)/2)
	Sort       SortMode
}

// withDefaults fills zero side lengths and checks the construction
// preconditions. A region that later can neither be split nor kept is
// reported by bisect.
func (cfg CutConfig) withDefaults() (CutConfig, error) {
	lo := min(cfg.Dims[0], cfg.Dims[1], cfg.Dims[2])
	hi := max(cfg.Dims[0], cfg.Dims[1], cfg.Dims[2])
	if lo <= 0 {
		return cfg, fmt.Errorf("%w: container %v must be positive", ErrConfiguration, cfg.Dims)
	}
	if cfg.MinSideLen == 0 {
		cfg.MinSideLen = max(1, lo/5)
	}
	if cfg.MaxSideLen == 0 {
		cfg.MaxSideLen = max(1, lo/2)
	}

	switch {
	case cfg.MinSideLen < 1 || cfg.MinSideLen > cfg.MaxSideLen:
		return cfg, fmt.Errorf("%w: need 1 <= min side %d <= max side %d",
			ErrConfiguration, cfg.MinSideLen, cfg.MaxSideLen)
	case cfg.MinSideLen*2 >= hi:
		return cfg, fmt.Errorf("%w: min side %d must be below half of the longest container side %d",
			ErrConfiguration, cfg.MinSideLen, hi)
	case cfg.MaxSideLen >= lo:
		return cfg, fmt.Errorf("%w: max side %d must be below the shortest container side %d",
			ErrConfiguration, cfg.MaxSideLen, lo)
	}
	if cfg.Sort != SortByZ && cfg.Sort != SortByStackOrder {
		return cfg, fmt.Errorf("%w: unknown sort mode %d", ErrConfiguration, cfg.Sort)
	}
	return cfg, nil
}

// Cutting splits the container volume with random guillotine cuts so the
// resulting box sequence tiles the container exactly. When fewer than a
// window of boxes remain the whole sequence is cut anew; generations are
// never mixed.
type Cutting struct {
	sequence
	cfg  CutConfig
	cuts []model.Box
}

// NewCutting validates cfg and cuts the first sequence.
func NewCutting(cfg CutConfig, opts Options) (*Cutting, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	g := &Cutting{
		sequence: newSequence(opts),
		cfg:      cfg,
	}
	if err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Config returns the configuration with derived side lengths filled in.
func (g *Cutting) Config() CutConfig {
	return g.cfg
}

// Cuts returns the ordered cut set of the current generation before
// rotation. Each box carries its origin inside the container.
func (g *Cutting) Cuts() []model.Box {
	return append([]model.Box(nil), g.cuts...)
}

func (g *Cutting) Reset() error {
	g.boxes = g.boxes[:0]
	return g.fill()
}

func (g *Cutting) Advance() error {
	return g.Pop(0)
}

// Pop consumes the i-th window box, regenerating the sequence when the
// window can no longer be filled.
func (g *Cutting) Pop(i int) error {
	if err := g.remove(i); err != nil {
		return err
	}
	return g.fill()
}

func (g *Cutting) fill() error {
	if len(g.boxes) >= g.window {
		return nil
	}

	cuts, err := g.bisect()
	if err != nil {
		return err
	}
	ordered, err := g.order(cuts)
	if err != nil {
		return err
	}
	g.cuts = ordered

	boxes := make([]model.Box, 0, len(ordered)+g.window)
	for _, b := range ordered {
		boxes = append(boxes, g.rotate(b))
	}
	// Filler keeps a full window once the real sequence is used up.
	for i := 0; i < g.window; i++ {
		boxes = append(boxes, model.NewBox(1, 1, 1))
	}
	g.boxes = boxes
	return nil
}

// splitAxes lists the axes of region that may still be cut.
func (g *Cutting) splitAxes(region model.Box) []int {
	var axes []int
	for axis, ext := range region.Extents() {
		if ext >= 2*g.cfg.MinSideLen && ext > g.cfg.MaxSideLen {
			axes = append(axes, axis)
		}
	}
	return axes
}

func (g *Cutting) inRange(b model.Box) bool {
	for _, ext := range b.Extents() {
		if ext < g.cfg.MinSideLen || ext > g.cfg.MaxSideLen {
			return false
		}
	}
	return true
}

// bisect cuts the container into terminal boxes using a stack of pending
// regions.
func (g *Cutting) bisect() ([]model.Box, error) {
	d := g.cfg.Dims
	pending := []model.Box{model.NewBox(d[0], d[1], d[2])}
	var out []model.Box

	for len(pending) > 0 {
		region := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		axes := g.splitAxes(region)
		if len(axes) == 0 {
			if !g.inRange(region) {
				return nil, fmt.Errorf("%w: region %v cannot be split into range [%d, %d]",
					ErrConfiguration, region.Extents(), g.cfg.MinSideLen, g.cfg.MaxSideLen)
			}
			out = append(out, region)
			continue
		}

		axis := axes[g.rng.Intn(len(axes))]
		ext := region.Extents()[axis]
		offset := g.cfg.MinSideLen + g.rng.Intn(ext-2*g.cfg.MinSideLen+1)
		left, right := splitRegion(region, axis, offset)
		pending = append(pending, right, left)
	}
	return out, nil
}

// splitRegion cuts region across axis at offset. The left part keeps the
// origin; the right part starts at origin+offset on that axis.
func splitRegion(region model.Box, axis, offset int) (model.Box, model.Box) {
	left, right := region, region
	switch axis {
	case 0:
		left.DX, right.DX = offset, region.DX-offset
		right.X += offset
	case 1:
		left.DY, right.DY = offset, region.DY-offset
		right.Y += offset
	default:
		left.DZ, right.DZ = offset, region.DZ-offset
		right.Z += offset
	}
	return left, right
}

// order shuffles the cut set, which removes the neat layout left by the
// cutting stack, and sorts it by the configured mode.
func (g *Cutting) order(cuts []model.Box) ([]model.Box, error) {
	g.rng.Shuffle(len(cuts), func(i, j int) {
		cuts[i], cuts[j] = cuts[j], cuts[i]
	})

	if g.cfg.Sort == SortByStackOrder {
		return StackOrder(cuts, g.cfg.Dims)
	}
	sort.SliceStable(cuts, func(i, j int) bool {
		return cuts[i].Z < cuts[j].Z
	})
	return cuts, nil
}

// StackOrder orders boxes that tile a container of size dims so that each
// can be dropped, fully supported, at its own (X, Y) and lands exactly at
// its own Z. Scanning restarts from the front after every placement; a
// scan that places nothing means the boxes cannot be stacked.
func StackOrder(boxes []model.Box, dims [3]int) ([]model.Box, error) {
	scratch := NewContainer(dims[0], dims[1], dims[2])
	remaining := append([]model.Box(nil), boxes...)
	ordered := make([]model.Box, 0, len(boxes))

	for len(remaining) > 0 {
		next := -1
		for i, b := range remaining {
			if h, ok := scratch.ValidatePlacement(b, b.X, b.Y, CheckStrict); ok && h == b.Z {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("%w: %d of %d boxes left", ErrInfeasibleSequence, len(remaining), len(boxes))
		}

		b := remaining[next]
		if _, ok := scratch.Commit(b, b.X, b.Y); !ok {
			return nil, fmt.Errorf("%w: box %v refused at (%d, %d)", ErrInfeasibleSequence, b.Extents(), b.X, b.Y)
		}
		ordered = append(ordered, b)
		remaining = append(remaining[:next], remaining[next+1:]...)
	}

	if scratch.UsedVolume() != scratch.Volume() {
		return nil, fmt.Errorf("%w: stacked volume %d of %d", ErrInfeasibleSequence, scratch.UsedVolume(), scratch.Volume())
	}
	return ordered, nil
}
