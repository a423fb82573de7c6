package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/BinPack3D/internal/model"
)

// HomeEnv overrides the configuration directory when set.
const HomeEnv = "BINPACK3D_HOME"

// ErrInvalidAppConfig is returned for preferences that cannot build a run.
var ErrInvalidAppConfig = errors.New("invalid app config")

// DefaultConfigDir returns $BINPACK3D_HOME, or ~/.binpack3d when unset.
func DefaultConfigDir() string {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".binpack3d")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// SaveAppConfig validates config and writes it to path as JSON.
func SaveAppConfig(path string, config model.AppConfig) error {
	if err := validateAppConfig(config); err != nil {
		return err
	}
	return writeJSON(path, config)
}

// LoadAppConfig reads preferences from path over DefaultAppConfig. A missing
// file yields the defaults. Relative output and database paths are taken
// relative to the directory of the config file, so "episodes.db" lands next
// to config.json whatever the working directory is.
func LoadAppConfig(path string) (model.AppConfig, error) {
	config := model.DefaultAppConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return model.AppConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return model.AppConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := validateAppConfig(config); err != nil {
		return model.AppConfig{}, fmt.Errorf("%s: %w", path, err)
	}

	base := filepath.Dir(path)
	config.DatabasePath = besideConfig(base, config.DatabasePath)
	config.OutputDir = besideConfig(base, config.OutputDir)

	runs := make([]string, 0, len(config.RecentRuns))
	for _, r := range config.RecentRuns {
		if r != "" {
			runs = append(runs, r)
		}
	}
	config.RecentRuns = runs
	return config, nil
}

func besideConfig(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

func validateAppConfig(c model.AppConfig) error {
	switch c.DefaultGenerator {
	case "", model.GeneratorRandom, model.GeneratorCutByZ, model.GeneratorCutByStack:
	default:
		return fmt.Errorf("%w: unknown generator %q", ErrInvalidAppConfig, c.DefaultGenerator)
	}
	if c.DefaultContainerX < 0 || c.DefaultContainerY < 0 || c.DefaultContainerZ < 0 {
		return fmt.Errorf("%w: negative container %dx%dx%d", ErrInvalidAppConfig,
			c.DefaultContainerX, c.DefaultContainerY, c.DefaultContainerZ)
	}
	if c.DefaultWindowSize < 0 {
		return fmt.Errorf("%w: negative window size %d", ErrInvalidAppConfig, c.DefaultWindowSize)
	}
	return nil
}
