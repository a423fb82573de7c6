package model

import (
	"time"

	"github.com/google/uuid"
)

// EpisodeRecord captures one finished packing episode for saving, indexing
// and reporting.
type EpisodeRecord struct {
	ID         string        `json:"id"`
	Scenario   string        `json:"scenario"`
	Generator  GeneratorKind `json:"generator"`
	Policy     string        `json:"policy"`
	Seed       int64         `json:"seed"`
	Steps      int           `json:"steps"`
	Reward     float64       `json:"reward"`
	EndReason  string        `json:"end_reason"`
	Packing    Packing       `json:"packing"`
	StartedAt  string        `json:"started_at"`
	FinishedAt string        `json:"finished_at"`
}

// NewEpisodeRecord starts a record for the given scenario. The start time is
// stamped now; FinishedAt is set by Finish.
func NewEpisodeRecord(scenario string, settings Settings, policy string) EpisodeRecord {
	return EpisodeRecord{
		ID:        uuid.New().String(),
		Scenario:  scenario,
		Generator: settings.Generator,
		Policy:    policy,
		Seed:      settings.Seed,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// Finish stamps the end of the episode with its final packing.
func (r *EpisodeRecord) Finish(p Packing, reason string) {
	r.Packing = p
	r.EndReason = reason
	r.FinishedAt = time.Now().UTC().Format(time.RFC3339)
}

// FillRatio returns the final fill ratio of the episode.
func (r EpisodeRecord) FillRatio() float64 {
	return r.Packing.FillRatio()
}

// StepRecord is one transition of a packing episode.
type StepRecord struct {
	Episode  string   `json:"episode"`
	Step     int      `json:"step"`
	Box      Box      `json:"box"`
	Rotation Rotation `json:"rotation"`
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Placed   bool     `json:"placed"`
	Reason   string   `json:"reason,omitempty"`
	Reward   float64  `json:"reward"`
	Fill     float64  `json:"fill"`
}
