package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/BinPack3D/internal/model"
)

// FormatVersion is written into every episode and backup file.
const FormatVersion = "1.0.0"

// ErrMissingVersion is returned for files without a version field.
var ErrMissingVersion = errors.New("missing version field")

// EpisodeFile is the on-disk form of a single finished episode.
type EpisodeFile struct {
	Version  string              `json:"version"`
	SavedAt  string              `json:"saved_at"`
	Settings model.Settings      `json:"settings"`
	Episode  model.EpisodeRecord `json:"episode"`
}

// BackupData bundles the app config, the run settings and any number of
// episodes into one file.
type BackupData struct {
	Version   string                `json:"version"`
	CreatedAt string                `json:"created_at"`
	Config    model.AppConfig       `json:"config"`
	Settings  model.Settings        `json:"settings"`
	Episodes  []model.EpisodeRecord `json:"episodes"`
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// SaveEpisode writes one episode together with the settings that produced it.
func SaveEpisode(path string, settings model.Settings, rec model.EpisodeRecord) error {
	return writeJSON(path, EpisodeFile{
		Version:  FormatVersion,
		SavedAt:  time.Now().UTC().Format(time.RFC3339),
		Settings: settings,
		Episode:  rec,
	})
}

// LoadEpisode reads a file written by SaveEpisode.
func LoadEpisode(path string) (EpisodeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return EpisodeFile{}, fmt.Errorf("failed to read episode file: %w", err)
	}
	var f EpisodeFile
	if err := json.Unmarshal(data, &f); err != nil {
		return EpisodeFile{}, fmt.Errorf("failed to parse episode file: %w", err)
	}
	if f.Version == "" {
		return EpisodeFile{}, fmt.Errorf("invalid episode file: %w", ErrMissingVersion)
	}
	return f, nil
}

// ExportAllData writes config, settings and episodes into a single backup.
func ExportAllData(path string, config model.AppConfig, settings model.Settings, episodes []model.EpisodeRecord) error {
	if episodes == nil {
		episodes = []model.EpisodeRecord{}
	}
	return writeJSON(path, BackupData{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Config:    config,
		Settings:  settings,
		Episodes:  episodes,
	})
}

// ImportAllData reads a backup file. The caller applies what it needs.
func ImportAllData(path string) (BackupData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BackupData{}, fmt.Errorf("failed to read backup file: %w", err)
	}
	var backup BackupData
	if err := json.Unmarshal(data, &backup); err != nil {
		return BackupData{}, fmt.Errorf("failed to parse backup file: %w", err)
	}
	if backup.Version == "" {
		return BackupData{}, fmt.Errorf("invalid backup file: %w", ErrMissingVersion)
	}
	if backup.Config.RecentRuns == nil {
		backup.Config.RecentRuns = []string{}
	}
	return backup, nil
}
