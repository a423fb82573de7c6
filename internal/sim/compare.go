package sim

import (
	"context"
	"fmt"

	"github.com/piwi3910/BinPack3D/internal/env"
	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/piwi3910/BinPack3D/internal/policy"
)

// Scenario defines a named set of settings to compare.
type Scenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the episodes and computed statistics for a single
// scenario.
type ComparisonResult struct {
	Scenario  Scenario
	Episodes  []model.EpisodeRecord
	MeanFill  float64
	BestFill  float64
	MeanSteps float64
	Best      model.EpisodeRecord
}

// EpisodeSettings returns the settings episode i of the scenario ran
// with.
func (r ComparisonResult) EpisodeSettings(i int) model.Settings {
	s := r.Scenario.Settings
	s.Seed += int64(i)
	return s
}

// CompareScenarios runs episodes of every scenario with p and returns the
// results in scenario order. Each episode bumps the seed so runs differ
// while staying reproducible. When ctx is done it stops between episodes
// and returns the results gathered so far with the context error.
func CompareScenarios(ctx context.Context, scenarios []Scenario, p policy.Policy, episodes, maxSteps int) ([]ComparisonResult, error) {
	if episodes < 1 {
		episodes = 1
	}
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		res := ComparisonResult{Scenario: scenario}

		for i := 0; i < episodes; i++ {
			if err := ctx.Err(); err != nil {
				if len(res.Episodes) > 0 {
					results = append(results, res.summarize())
				}
				return results, err
			}
			game, err := env.New(res.EpisodeSettings(i))
			if err != nil {
				return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
			}
			rec, err := RunEpisode(game, p, scenario.Name, maxSteps)
			if err != nil {
				return nil, fmt.Errorf("scenario %q episode %d: %w", scenario.Name, i, err)
			}
			res.Episodes = append(res.Episodes, rec)
		}

		results = append(results, res.summarize())
	}

	return results, nil
}

// summarize fills the statistics from the episodes run so far.
func (r ComparisonResult) summarize() ComparisonResult {
	var fillSum, stepSum float64
	for i, rec := range r.Episodes {
		fill := rec.FillRatio()
		fillSum += fill
		stepSum += float64(rec.Steps)
		if i == 0 || fill > r.BestFill {
			r.BestFill = fill
			r.Best = rec
		}
	}
	if n := float64(len(r.Episodes)); n > 0 {
		r.MeanFill = fillSum / n
		r.MeanSteps = stepSum / n
	}
	return r
}

// BuildDefaultScenarios generates comparison scenarios around the base
// settings, varying the generator and the rotation set.
func BuildDefaultScenarios(base model.Settings) []Scenario {
	scenarios := []Scenario{
		{
			Name:     "Current Settings",
			Settings: base,
		},
	}

	// Scenario: the other generators
	for _, kind := range []model.GeneratorKind{model.GeneratorRandom, model.GeneratorCutByZ, model.GeneratorCutByStack} {
		if kind == base.Generator {
			continue
		}
		alt := base
		alt.Generator = kind
		scenarios = append(scenarios, Scenario{
			Name:     fmt.Sprintf("Generator %s", kind),
			Settings: alt,
		})
	}

	// Scenario: every rotation enabled
	if len(base.Rotations) < len(model.AllRotations) {
		allRot := base
		allRot.Rotations = append([]model.Rotation(nil), model.AllRotations...)
		scenarios = append(scenarios, Scenario{
			Name:     "All Rotations",
			Settings: allRot,
		})
	}

	// Scenario: more foresight
	if base.WindowSize < 3 {
		wide := base
		wide.WindowSize = 3
		scenarios = append(scenarios, Scenario{
			Name:     "Window 3",
			Settings: wide,
		})
	}

	return scenarios
}
