// Package policy holds simple placement heuristics that drive a packing game.
package policy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/piwi3910/BinPack3D/internal/env"
)

// ErrUnknownPolicy is returned by ByName for names it does not know.
var ErrUnknownPolicy = errors.New("unknown policy")

// Policy picks an action from an observation. The boolean is false when the
// mask offers no position at all.
type Policy interface {
	Name() string
	Choose(obs env.Observation) (env.Action, bool)
}

const (
	NameFirstFit  = "first-fit"
	NameLowestFit = "lowest-fit"
	NameRandomFit = "random-fit"
)

// Names lists the policies ByName understands.
func Names() []string {
	names := []string{NameFirstFit, NameLowestFit, NameRandomFit}
	sort.Strings(names)
	return names
}

// ByName returns the named policy. seed only matters for random-fit.
func ByName(name string, seed int64) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case NameFirstFit:
		return FirstFit{}, nil
	case NameLowestFit:
		return LowestFit{}, nil
	case NameRandomFit:
		return NewRandomFit(seed), nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownPolicy, name, strings.Join(Names(), ", "))
	}
}

// candidate is a valid origin with its action index.
type candidate struct {
	x, y  int
	index int
}

// candidates lists the valid origins of the mask in row-major order.
func candidates(obs env.Observation) []candidate {
	var out []candidate
	for x, row := range obs.Mask {
		for y, ok := range row {
			if ok {
				out = append(out, candidate{x: x, y: y, index: x*len(row) + y})
			}
		}
	}
	return out
}

// FirstFit takes the first valid origin in row-major order.
type FirstFit struct{}

func (FirstFit) Name() string { return NameFirstFit }

func (FirstFit) Choose(obs env.Observation) (env.Action, bool) {
	for x, row := range obs.Mask {
		for y, ok := range row {
			if ok {
				return env.Action{Position: x*len(row) + y}, true
			}
		}
	}
	return env.Action{}, false
}

// LowestFit takes the valid origin where the head box would land lowest.
// Ties keep the first origin in row-major order.
type LowestFit struct{}

func (LowestFit) Name() string { return NameLowestFit }

func (LowestFit) Choose(obs env.Observation) (env.Action, bool) {
	if len(obs.Upcoming) == 0 {
		return env.Action{}, false
	}
	head := obs.Upcoming[0]

	best, bestH := -1, 0
	for _, c := range candidates(obs) {
		h := landing(obs.HeightMap, c.x, c.y, head.DX, head.DY)
		if best < 0 || h < bestH {
			best, bestH = c.index, h
		}
	}
	if best < 0 {
		return env.Action{}, false
	}
	return env.Action{Position: best}, true
}

// landing returns the highest height-map cell under a footprint.
func landing(hm [][]int, x, y, dx, dy int) int {
	h := 0
	for i := x; i < x+dx && i < len(hm); i++ {
		for j := y; j < y+dy && j < len(hm[i]); j++ {
			h = max(h, hm[i][j])
		}
	}
	return h
}

// RandomFit picks a valid origin uniformly at random.
type RandomFit struct {
	rng *rand.Rand
}

func NewRandomFit(seed int64) *RandomFit {
	return &RandomFit{rng: rand.New(rand.NewSource(seed))}
}

func (*RandomFit) Name() string { return NameRandomFit }

func (p *RandomFit) Choose(obs env.Observation) (env.Action, bool) {
	cs := candidates(obs)
	if len(cs) == 0 {
		return env.Action{}, false
	}
	return env.Action{Position: cs[p.rng.Intn(len(cs))].index}, true
}
