package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/piwi3910/BinPack3D/internal/model"
)

func sampleEpisode() model.EpisodeRecord {
	rec := model.NewEpisodeRecord("baseline", model.DefaultSettings(), "lowest-fit")
	rec.Steps = 2
	rec.Reward = 0.5
	rec.Finish(model.Packing{
		Label: "baseline",
		DX:    2, DY: 2, DZ: 2,
		Boxes:     []model.Box{model.NewBox(2, 2, 1), model.NewBox(1, 1, 1).At(0, 0, 1)},
		HeightMap: [][]int{{2, 1}, {1, 1}},
	}, "no valid position")
	return rec
}

func TestSaveAndLoadEpisode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "episode.json")
	settings := model.DefaultSettings()
	settings.Rotations = []model.Rotation{model.RotateNone, model.RotateYZ}
	rec := sampleEpisode()

	if err := SaveEpisode(path, settings, rec); err != nil {
		t.Fatalf("SaveEpisode failed: %v", err)
	}

	f, err := LoadEpisode(path)
	if err != nil {
		t.Fatalf("LoadEpisode failed: %v", err)
	}
	if f.Version != FormatVersion {
		t.Errorf("expected version %s, got %s", FormatVersion, f.Version)
	}
	if f.Episode.ID != rec.ID || f.Episode.Steps != 2 {
		t.Errorf("episode mismatch: %+v", f.Episode)
	}
	if f.Episode.FillRatio() != 5.0/8.0 {
		t.Errorf("expected fill 5/8, got %v", f.Episode.FillRatio())
	}
	if len(f.Settings.Rotations) != 2 || f.Settings.Rotations[1] != model.RotateYZ {
		t.Errorf("rotations mismatch: %v", f.Settings.Rotations)
	}
}

func TestLoadEpisodeMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "episode.json")
	if err := os.WriteFile(path, []byte(`{"episode": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadEpisode(path)
	if !errors.Is(err, ErrMissingVersion) {
		t.Fatalf("expected ErrMissingVersion, got %v", err)
	}
}

func TestExportAndImportAllData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.json")

	cfg := model.DefaultAppConfig()
	cfg.OutputDir = "/tmp/out"
	settings := model.DefaultSettings()
	settings.Generator = model.GeneratorCutByZ

	if err := ExportAllData(path, cfg, settings, []model.EpisodeRecord{sampleEpisode()}); err != nil {
		t.Fatalf("ExportAllData failed: %v", err)
	}

	backup, err := ImportAllData(path)
	if err != nil {
		t.Fatalf("ImportAllData failed: %v", err)
	}
	if backup.Version != FormatVersion {
		t.Errorf("expected version %s, got %s", FormatVersion, backup.Version)
	}
	if backup.CreatedAt == "" {
		t.Error("expected non-empty CreatedAt")
	}
	if backup.Config.OutputDir != "/tmp/out" {
		t.Errorf("expected OutputDir=/tmp/out, got %s", backup.Config.OutputDir)
	}
	if backup.Settings.Generator != model.GeneratorCutByZ {
		t.Errorf("expected generator cut-1, got %s", backup.Settings.Generator)
	}
	if len(backup.Episodes) != 1 {
		t.Errorf("expected 1 episode, got %d", len(backup.Episodes))
	}
}

func TestImportAllDataMissingFile(t *testing.T) {
	if _, err := ImportAllData(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportAllDataInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestImportAllDataMissingVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noversion.json")
	if err := os.WriteFile(path, []byte(`{"config": {}}`), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportAllData(path); !errors.Is(err, ErrMissingVersion) {
		t.Fatalf("expected ErrMissingVersion, got %v", err)
	}
}
