package engine

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/piwi3910/BinPack3D/internal/model"
)

var (
	// ErrConfiguration is returned when a generator cannot be built from
	// the values it was given.
	ErrConfiguration = errors.New("invalid generator configuration")

	// ErrInfeasibleSequence is returned when a cut set cannot be stacked
	// into the container. A correct cut never produces it.
	ErrInfeasibleSequence = errors.New("cut boxes cannot be stacked")

	// ErrWindowIndex is returned by Pop for an index outside the window.
	ErrWindowIndex = errors.New("window index out of range")
)

// Generator produces the stream of boxes an agent has to place. Window shows
// the next boxes without consuming them; Advance consumes the head.
type Generator interface {
	Reset() error
	Window() []model.Box
	Advance() error
	Pop(i int) error
}

// Options are shared by all generators.
type Options struct {
	WindowSize int              // Foreseeable boxes, at least 1
	Rotations  []model.Rotation // Rotations drawn from for every new box, default {none}
	Seed       int64            // Seeds the random source when Rand is nil
	Rand       *rand.Rand       // Explicit random source
}

// sequence is the window bookkeeping shared by Random and Cutting.
type sequence struct {
	boxes     []model.Box
	window    int
	rotations []model.Rotation
	rng       *rand.Rand
}

func newSequence(opts Options) sequence {
	s := sequence{
		window:    opts.WindowSize,
		rotations: append([]model.Rotation(nil), opts.Rotations...),
		rng:       opts.Rand,
	}
	if s.window < 1 {
		s.window = 1
	}
	if len(s.rotations) == 0 {
		s.rotations = []model.Rotation{model.RotateNone}
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewSource(opts.Seed))
	}
	return s
}

// Window returns a copy of the foreseeable boxes.
func (s *sequence) Window() []model.Box {
	n := min(s.window, len(s.boxes))
	return append([]model.Box(nil), s.boxes[:n]...)
}

// WindowSize returns the configured number of foreseeable boxes.
func (s *sequence) WindowSize() int {
	return s.window
}

// rotate applies one rotation drawn uniformly from the enabled set.
func (s *sequence) rotate(b model.Box) model.Box {
	return b.Rotate(s.rotations[s.rng.Intn(len(s.rotations))])
}

func (s *sequence) remove(i int) error {
	if i < 0 || i >= s.window || i >= len(s.boxes) {
		return fmt.Errorf("%w: %d", ErrWindowIndex, i)
	}
	s.boxes = append(s.boxes[:i], s.boxes[i+1:]...)
	return nil
}

// NewGenerator builds the generator named by settings.Generator.
func NewGenerator(settings model.Settings) (Generator, error) {
	opts := Options{
		WindowSize: settings.WindowSize,
		Rotations:  settings.Rotations,
		Seed:       settings.Seed,
	}
	dims := [3]int{settings.ContainerX, settings.ContainerY, settings.ContainerZ}

	switch settings.Generator {
	case model.GeneratorRandom, "":
		return NewRandom(model.Expand(settings.Catalog), opts)
	case model.GeneratorCutByZ:
		return NewCutting(CutConfig{Dims: dims, MinSideLen: settings.MinSideLen, MaxSideLen: settings.MaxSideLen, Sort: SortByZ}, opts)
	case model.GeneratorCutByStack:
		return NewCutting(CutConfig{Dims: dims, MinSideLen: settings.MinSideLen, MaxSideLen: settings.MaxSideLen, Sort: SortByStackOrder}, opts)
	default:
		return nil, fmt.Errorf("%w: unknown generator %q", ErrConfiguration, settings.Generator)
	}
}
