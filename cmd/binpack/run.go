package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/piwi3910/BinPack3D/internal/env"
	"github.com/piwi3910/BinPack3D/internal/export"
	"github.com/piwi3910/BinPack3D/internal/importer"
	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/piwi3910/BinPack3D/internal/persistence/episodedb"
	"github.com/piwi3910/BinPack3D/internal/persistence/trajectory"
	"github.com/piwi3910/BinPack3D/internal/policy"
	"github.com/piwi3910/BinPack3D/internal/project"
	"github.com/piwi3910/BinPack3D/internal/sim"
)

// episode pairs a finished record with the settings that produced it.
type episode struct {
	record   model.EpisodeRecord
	settings model.Settings
}

type options struct {
	ConfigPath     string
	AppConfigPath  string
	Episodes       int
	MaxSteps       int
	Policy         string
	CatalogPath    string
	Compare        bool
	OutDir         string
	DBPath         string
	TrajectoryPath string
	PDFPath        string
	XLSXPath       string
	DXFPath        string
	LabelsPath     string
	Seed           int64
}

// run executes one CLI invocation. Episodes are indexed and saved as they
// finish, exports happen once at the end.
func run(ctx context.Context, opts options, logger *log.Logger) error {
	appCfg, err := project.LoadAppConfig(opts.AppConfigPath)
	if err != nil {
		return fmt.Errorf("load app config: %w", err)
	}

	settings, err := loadSettings(opts, appCfg, logger)
	if err != nil {
		return err
	}

	policyName := opts.Policy
	if policyName == "" {
		policyName = appCfg.DefaultPolicy
	}
	p, err := policy.ByName(policyName, settings.Seed)
	if err != nil {
		return err
	}

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = appCfg.DatabasePath
	}
	var db *episodedb.DB
	if dbPath != "" {
		db, err = episodedb.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open episode index: %w", err)
		}
		defer db.Close()
		logger.Printf("indexing episodes in %s", dbPath)
	}

	var episodes []episode
	if opts.Compare {
		episodes, err = runComparison(ctx, settings, p, opts, logger)
	} else {
		episodes, err = runEpisodes(ctx, settings, p, opts, logger)
	}
	if err != nil {
		return err
	}

	// Finished episodes are still stored after an interrupt.
	store := context.WithoutCancel(ctx)
	records := make([]model.EpisodeRecord, 0, len(episodes))
	for _, ep := range episodes {
		rec := ep.record
		records = append(records, rec)
		if db != nil {
			if err := db.Insert(store, rec); err != nil {
				return err
			}
		}
		if opts.OutDir != "" {
			path := filepath.Join(opts.OutDir, fmt.Sprintf("episode-%s.json", rec.ID))
			if err := project.SaveEpisode(path, ep.settings, rec); err != nil {
				return err
			}
		}
	}
	if db != nil {
		if best, err := db.Best(store, 1); err == nil && len(best) > 0 {
			logger.Printf("best indexed episode: %s (%s) fill %.1f%%", best[0].ID, best[0].Scenario, best[0].FillRatio()*100)
		}
	}

	if err := writeExports(records, opts, logger); err != nil {
		return err
	}

	if opts.OutDir != "" {
		appCfg.AddRecentRun(opts.OutDir)
		if err := project.SaveAppConfig(opts.AppConfigPath, appCfg); err != nil {
			logger.Printf("warning: could not update app config: %v", err)
		}
	}
	return nil
}

func loadSettings(opts options, appCfg model.AppConfig, logger *log.Logger) (model.Settings, error) {
	var settings model.Settings
	if opts.ConfigPath != "" {
		s, err := project.LoadSettings(opts.ConfigPath)
		if err != nil {
			return model.Settings{}, fmt.Errorf("load settings: %w", err)
		}
		settings = s
	} else {
		settings = model.DefaultSettings()
		appCfg.ApplyToSettings(&settings)
	}
	if opts.Seed >= 0 {
		settings.Seed = opts.Seed
	}

	if opts.CatalogPath != "" {
		res := importer.ImportFile(opts.CatalogPath)
		for _, w := range res.Warnings {
			logger.Printf("catalog: %s", w)
		}
		if len(res.Errors) > 0 {
			for _, e := range res.Errors {
				logger.Printf("catalog error: %s", e)
			}
			if len(res.Specs) == 0 {
				return model.Settings{}, fmt.Errorf("catalog %s has no usable rows", opts.CatalogPath)
			}
		}
		settings.Catalog = res.Specs
		logger.Printf("loaded %d catalog entries from %s", len(res.Specs), opts.CatalogPath)
	}
	return settings, nil
}

// runEpisodes builds a fresh game per episode with the seed bumped by the
// episode index, so every saved episode replays from its own settings.
func runEpisodes(ctx context.Context, settings model.Settings, p policy.Policy, opts options, logger *log.Logger) ([]episode, error) {
	if _, err := env.New(settings); err != nil {
		return nil, err
	}

	var recorder env.Recorder
	if opts.TrajectoryPath != "" {
		w, err := trajectory.Create(opts.TrajectoryPath)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := w.Close(); err != nil {
				logger.Printf("warning: trajectory close: %v", err)
			}
			logger.Printf("wrote %d steps to %s", w.Count(), w.Path())
		}()
		recorder = w
	}

	total := max(1, opts.Episodes)
	scenario := scenarioName(opts)
	episodes := make([]episode, 0, total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			logger.Printf("stopping after %d episodes: %v", i, err)
			break
		}
		s := settings
		s.Seed += int64(i)
		game, err := env.New(s)
		if err != nil {
			return episodes, err
		}
		if recorder != nil {
			game.SetRecorder(recorder)
		}
		rec, err := sim.RunEpisode(game, p, scenario, opts.MaxSteps)
		if err != nil {
			return episodes, fmt.Errorf("episode %d: %w", i+1, err)
		}
		logger.Printf("episode %d/%d %s: %d boxes, fill %.1f%%, reward %.3f, end: %s",
			i+1, total, rec.ID, rec.Steps, rec.FillRatio()*100, rec.Reward, rec.EndReason)
		episodes = append(episodes, episode{record: rec, settings: s})
	}
	return episodes, nil
}

func runComparison(ctx context.Context, settings model.Settings, p policy.Policy, opts options, logger *log.Logger) ([]episode, error) {
	if opts.TrajectoryPath != "" {
		logger.Printf("warning: -trajectory is ignored with -compare")
	}

	results, err := sim.CompareScenarios(ctx, sim.BuildDefaultScenarios(settings), p, opts.Episodes, opts.MaxSteps)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		logger.Printf("stopping comparison after %d scenarios: %v", len(results), err)
	}

	var episodes []episode
	logger.Printf("%-20s %10s %10s %10s", "scenario", "mean fill", "best fill", "mean steps")
	for _, r := range results {
		logger.Printf("%-20s %9.1f%% %9.1f%% %10.1f", r.Scenario.Name, r.MeanFill*100, r.BestFill*100, r.MeanSteps)
		for i, rec := range r.Episodes {
			episodes = append(episodes, episode{record: rec, settings: r.EpisodeSettings(i)})
		}
	}
	return episodes, nil
}

func scenarioName(opts options) string {
	if opts.ConfigPath == "" {
		return "default"
	}
	base := filepath.Base(opts.ConfigPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// bestPackings returns the best packing per scenario in first-seen order,
// and the single best one.
func bestPackings(records []model.EpisodeRecord) ([]model.Packing, model.Packing) {
	var order []string
	best := map[string]model.EpisodeRecord{}
	var top model.EpisodeRecord
	for i, rec := range records {
		cur, ok := best[rec.Scenario]
		if !ok {
			order = append(order, rec.Scenario)
		}
		if !ok || rec.FillRatio() > cur.FillRatio() {
			best[rec.Scenario] = rec
		}
		if i == 0 || rec.FillRatio() > top.FillRatio() {
			top = rec
		}
	}
	packings := make([]model.Packing, 0, len(order))
	for _, s := range order {
		packings = append(packings, best[s].Packing)
	}
	return packings, top.Packing
}

func writeExports(records []model.EpisodeRecord, opts options, logger *log.Logger) error {
	if len(records) == 0 {
		return nil
	}
	packings, top := bestPackings(records)

	exports := []struct {
		path  string
		write func(string) error
	}{
		{opts.PDFPath, func(p string) error { return export.ExportPDF(p, packings) }},
		{opts.XLSXPath, func(p string) error { return export.ExportXLSX(p, top) }},
		{opts.DXFPath, func(p string) error { return export.ExportDXF(p, top) }},
		{opts.LabelsPath, func(p string) error { return export.ExportLabels(p, top) }},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := e.write(e.path); err != nil {
			if errors.Is(err, export.ErrNothingToExport) {
				logger.Printf("skipped %s: %v", e.path, err)
				continue
			}
			return err
		}
		logger.Printf("wrote %s", e.path)
	}
	return nil
}
