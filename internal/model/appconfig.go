package model

// AppConfig holds user-wide preferences applied to new runs.
type AppConfig struct {
	// Default run settings
	DefaultContainerX int           `json:"default_container_x"`
	DefaultContainerY int           `json:"default_container_y"`
	DefaultContainerZ int           `json:"default_container_z"`
	DefaultGenerator  GeneratorKind `json:"default_generator"`
	DefaultWindowSize int           `json:"default_window_size"`
	DefaultPolicy     string        `json:"default_policy"`

	// Outputs
	OutputDir    string   `json:"output_dir"`    // Where reports are written, empty = working directory
	DatabasePath string   `json:"database_path"` // Episode index, empty = disabled
	RecentRuns   []string `json:"recent_runs"`
}

// maxRecentRuns bounds the RecentRuns list.
const maxRecentRuns = 10

// DefaultAppConfig returns an AppConfig matching DefaultSettings().
func DefaultAppConfig() AppConfig {
	defaults := DefaultSettings()
	return AppConfig{
		DefaultContainerX: defaults.ContainerX,
		DefaultContainerY: defaults.ContainerY,
		DefaultContainerZ: defaults.ContainerZ,
		DefaultGenerator:  defaults.Generator,
		DefaultWindowSize: defaults.WindowSize,
		DefaultPolicy:     "lowest-fit",
		RecentRuns:        []string{},
	}
}

// ApplyToSettings copies the default values into s. Zero values in the
// config leave s untouched.
func (c AppConfig) ApplyToSettings(s *Settings) {
	if c.DefaultContainerX > 0 {
		s.ContainerX = c.DefaultContainerX
	}
	if c.DefaultContainerY > 0 {
		s.ContainerY = c.DefaultContainerY
	}
	if c.DefaultContainerZ > 0 {
		s.ContainerZ = c.DefaultContainerZ
	}
	if c.DefaultGenerator != "" {
		s.Generator = c.DefaultGenerator
	}
	if c.DefaultWindowSize > 0 {
		s.WindowSize = c.DefaultWindowSize
	}
}

// AddRecentRun moves path to the front of RecentRuns, dropping duplicates
// and trimming the list.
func (c *AppConfig) AddRecentRun(path string) {
	runs := []string{path}
	for _, r := range c.RecentRuns {
		if r != path {
			runs = append(runs, r)
		}
	}
	if len(runs) > maxRecentRuns {
		runs = runs[:maxRecentRuns]
	}
	c.RecentRuns = runs
}
