// Package sim runs packing episodes end to end and compares settings.
package sim

import (
	"github.com/piwi3910/BinPack3D/internal/env"
	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/piwi3910/BinPack3D/internal/policy"
)

// End reasons stored on episode records.
const (
	EndNoPosition = "no valid position"
	EndMaxSteps   = "step limit"
)

// RunEpisode resets game and lets p place boxes until it finds no position,
// a placement is refused, or maxSteps placements were made (0 = no limit).
func RunEpisode(game *env.Game, p policy.Policy, scenario string, maxSteps int) (model.EpisodeRecord, error) {
	rec := model.NewEpisodeRecord(scenario, game.Settings(), p.Name())
	game.SetEpisode(rec.ID)

	obs, err := game.Reset()
	if err != nil {
		return rec, err
	}

	reason := EndMaxSteps
	for maxSteps <= 0 || game.Steps() < maxSteps {
		action, ok := p.Choose(obs)
		if !ok {
			reason = EndNoPosition
			break
		}
		res, err := game.Step(action)
		if err != nil {
			return rec, err
		}
		if res.Done {
			reason = res.Rejection
			break
		}
		obs = res.Observation
	}

	rec.Steps = game.Steps()
	rec.Reward = game.TotalReward()
	rec.Finish(game.Container().Snapshot(scenario), reason)
	return rec, nil
}
