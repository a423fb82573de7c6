// Package env drives a container and a box generator as a step-by-step
// packing game: every step places the head box of the window, a failed
// placement ends the episode.
package env

import (
	"errors"
	"fmt"

	"github.com/piwi3910/BinPack3D/internal/engine"
	"github.com/piwi3910/BinPack3D/internal/model"
)

var (
	// ErrEpisodeOver is returned by Step once a placement has failed.
	ErrEpisodeOver = errors.New("episode is over, call Reset")

	// ErrInvalidAction is returned for positions outside the container floor.
	ErrInvalidAction = errors.New("invalid action")
)

// rewardScale multiplies the placed volume fraction into a step reward.
const rewardScale = 10.0

// Action places the head box at a floor position after rotating it.
type Action struct {
	Position int            `json:"position"` // Row-major footprint origin index x*DY+y
	Rotation model.Rotation `json:"rotation"`
}

// Observation is what a policy sees before choosing an action.
type Observation struct {
	HeightMap [][]int     `json:"height_map"`
	Upcoming  []model.Box `json:"upcoming"` // Window boxes, extents only are meaningful
	Mask      [][]bool    `json:"mask"`     // Valid origins for Upcoming[0] as generated
}

// Info reports episode progress after a step.
type Info struct {
	Counter int     `json:"counter"` // Boxes placed so far
	Ratio   float64 `json:"ratio"`   // Current fill ratio
}

// StepResult is the outcome of one Step.
type StepResult struct {
	Observation Observation `json:"observation"`
	Reward      float64     `json:"reward"`
	Done        bool        `json:"done"`
	Info        Info        `json:"info"`
	Placed      model.Box   `json:"placed"`
	Rejection   string      `json:"rejection,omitempty"`
}

// Recorder receives every step taken by a Game.
type Recorder interface {
	Record(step model.StepRecord) error
}

// Game owns one container and one generator for the lifetime of a session.
type Game struct {
	settings  model.Settings
	container *engine.Container
	generator engine.Generator
	recorder  Recorder

	episode  string
	steps    int
	reward   float64
	terminal bool
}

// New builds a game from settings. The generator is created immediately, so
// configuration errors surface here.
func New(settings model.Settings) (*Game, error) {
	if settings.ContainerX <= 0 || settings.ContainerY <= 0 || settings.ContainerZ <= 0 {
		return nil, fmt.Errorf("%w: container %dx%dx%d", engine.ErrConfiguration,
			settings.ContainerX, settings.ContainerY, settings.ContainerZ)
	}
	gen, err := engine.NewGenerator(settings)
	if err != nil {
		return nil, err
	}
	return NewWithGenerator(settings, gen), nil
}

// NewWithGenerator builds a game around an existing generator.
func NewWithGenerator(settings model.Settings, gen engine.Generator) *Game {
	c := engine.NewContainer(settings.ContainerX, settings.ContainerY, settings.ContainerZ)
	c.SetSupportThresholds(settings.Support.WithDefaults())
	return &Game{
		settings:  settings,
		container: c,
		generator: gen,
	}
}

// SetRecorder attaches r to every following step. A nil r detaches.
func (g *Game) SetRecorder(r Recorder) {
	g.recorder = r
}

// SetEpisode labels the step records of the current episode.
func (g *Game) SetEpisode(id string) {
	g.episode = id
}

// Settings returns the settings the game was built with.
func (g *Game) Settings() model.Settings {
	return g.settings
}

// Container exposes the underlying container for read access.
func (g *Game) Container() *engine.Container {
	return g.container
}

// Done reports whether the episode has ended.
func (g *Game) Done() bool {
	return g.terminal
}

// Steps returns the number of successful placements in this episode.
func (g *Game) Steps() int {
	return g.steps
}

// TotalReward returns the reward collected in this episode.
func (g *Game) TotalReward() float64 {
	return g.reward
}

// Reset starts a new episode with an empty container and a fresh sequence.
func (g *Game) Reset() (Observation, error) {
	if err := g.generator.Reset(); err != nil {
		return Observation{}, err
	}
	g.container.Reset()
	g.steps = 0
	g.reward = 0
	g.terminal = false
	return g.Observe(), nil
}

// Observe returns the current observation without changing state.
func (g *Game) Observe() Observation {
	upcoming := g.generator.Window()
	obs := Observation{
		HeightMap: g.container.HeightMap(),
		Upcoming:  make([]model.Box, len(upcoming)),
	}
	for i, b := range upcoming {
		obs.Upcoming[i] = model.NewBox(b.DX, b.DY, b.DZ)
	}
	if len(upcoming) > 0 {
		obs.Mask = g.container.PossiblePositions(upcoming[0])
	}
	return obs
}

// IndexToPosition converts an action index into a footprint origin.
func (g *Game) IndexToPosition(idx int) (int, int, error) {
	if idx < 0 || idx >= g.settings.ContainerX*g.settings.ContainerY {
		return 0, 0, fmt.Errorf("%w: position %d", ErrInvalidAction, idx)
	}
	return idx / g.settings.ContainerY, idx % g.settings.ContainerY, nil
}

// PositionToIndex converts a footprint origin into an action index.
func (g *Game) PositionToIndex(x, y int) (int, error) {
	if x < 0 || y < 0 || x >= g.settings.ContainerX || y >= g.settings.ContainerY {
		return 0, fmt.Errorf("%w: position (%d, %d)", ErrInvalidAction, x, y)
	}
	return x*g.settings.ContainerY + y, nil
}

// Step places the head box of the window. A refused placement ends the
// episode with zero reward; the container is left as it was.
func (g *Game) Step(a Action) (StepResult, error) {
	if g.terminal {
		return StepResult{}, ErrEpisodeOver
	}
	x, y, err := g.IndexToPosition(a.Position)
	if err != nil {
		return StepResult{}, err
	}
	window := g.generator.Window()
	if len(window) == 0 {
		return StepResult{}, fmt.Errorf("%w: empty window", ErrInvalidAction)
	}

	box := window[0].Rotate(a.Rotation)
	rec := model.StepRecord{
		Episode:  g.episode,
		Step:     g.steps,
		Box:      model.NewBox(box.DX, box.DY, box.DZ),
		Rotation: a.Rotation,
		X:        x,
		Y:        y,
	}

	var res StepResult
	_, rejection := g.container.Check(box, x, y, engine.CheckNormal)
	placed, ok := g.container.Commit(box, x, y)
	if ok {
		if err := g.generator.Advance(); err != nil {
			return StepResult{}, err
		}
		g.steps++
		res.Reward = float64(box.Volume()) / float64(g.container.Volume()) * rewardScale
		res.Placed = placed
	} else {
		g.terminal = true
		res.Done = true
		res.Rejection = rejection.String()
	}
	g.reward += res.Reward

	res.Observation = g.Observe()
	res.Info = Info{Counter: len(g.container.Boxes()), Ratio: g.container.FillRatio()}

	if g.recorder != nil {
		rec.Placed = ok
		rec.Reason = res.Rejection
		rec.Reward = res.Reward
		rec.Fill = res.Info.Ratio
		if err := g.recorder.Record(rec); err != nil {
			return res, fmt.Errorf("failed to record step: %w", err)
		}
	}
	return res, nil
}
