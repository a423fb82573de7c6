package engine

import (
	"github.com/piwi3910/BinPack3D/internal/model"
)

// DefaultCatalog is sampled when a Random generator gets no catalog.
var DefaultCatalog = []model.Box{
	model.NewBox(1, 1, 1),
	model.NewBox(1, 3, 5),
}

// Random draws boxes uniformly, with replacement, from a fixed catalog.
// It never runs out.
type Random struct {
	sequence
	catalog []model.Box
}

// NewRandom creates a Random generator with a filled window.
func NewRandom(catalog []model.Box, opts Options) (*Random, error) {
	if len(catalog) == 0 {
		catalog = DefaultCatalog
	}
	g := &Random{
		sequence: newSequence(opts),
		catalog:  append([]model.Box(nil), catalog...),
	}
	if err := g.Reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Catalog returns the box templates sampled from.
func (g *Random) Catalog() []model.Box {
	return append([]model.Box(nil), g.catalog...)
}

func (g *Random) Reset() error {
	g.boxes = g.boxes[:0]
	g.fill()
	return nil
}

func (g *Random) Advance() error {
	return g.Pop(0)
}

// Pop consumes the i-th window box and draws a replacement.
func (g *Random) Pop(i int) error {
	if err := g.remove(i); err != nil {
		return err
	}
	g.fill()
	return nil
}

func (g *Random) fill() {
	for len(g.boxes) < g.window {
		b := g.catalog[g.rng.Intn(len(g.catalog))]
		g.boxes = append(g.boxes, g.rotate(b))
	}
}
