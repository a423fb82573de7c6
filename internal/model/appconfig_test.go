package model

import "testing"

func TestDefaultAppConfigMatchesDefaultSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	defaults := DefaultSettings()

	if cfg.DefaultContainerX != defaults.ContainerX {
		t.Errorf("ContainerX mismatch: config=%d settings=%d", cfg.DefaultContainerX, defaults.ContainerX)
	}
	if cfg.DefaultContainerZ != defaults.ContainerZ {
		t.Errorf("ContainerZ mismatch: config=%d settings=%d", cfg.DefaultContainerZ, defaults.ContainerZ)
	}
	if cfg.DefaultGenerator != defaults.Generator {
		t.Errorf("Generator mismatch: config=%s settings=%s", cfg.DefaultGenerator, defaults.Generator)
	}
	if cfg.DefaultWindowSize != defaults.WindowSize {
		t.Errorf("WindowSize mismatch: config=%d settings=%d", cfg.DefaultWindowSize, defaults.WindowSize)
	}
	if cfg.RecentRuns == nil {
		t.Error("RecentRuns should not be nil")
	}
}

func TestApplyToSettings(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.DefaultContainerX = 10
	cfg.DefaultGenerator = GeneratorCutByStack
	cfg.DefaultWindowSize = 3

	s := DefaultSettings()
	cfg.ApplyToSettings(&s)

	if s.ContainerX != 10 {
		t.Errorf("expected ContainerX=10, got %d", s.ContainerX)
	}
	if s.Generator != GeneratorCutByStack {
		t.Errorf("expected Generator=cut-2, got %s", s.Generator)
	}
	if s.WindowSize != 3 {
		t.Errorf("expected WindowSize=3, got %d", s.WindowSize)
	}
}

func TestApplyToSettingsIgnoresZeroValues(t *testing.T) {
	s := DefaultSettings()
	AppConfig{}.ApplyToSettings(&s)

	if s.ContainerY != 20 {
		t.Errorf("expected ContainerY untouched, got %d", s.ContainerY)
	}
}

func TestAddRecentRun(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentRun("a.json")
	cfg.AddRecentRun("b.json")
	cfg.AddRecentRun("a.json")

	if len(cfg.RecentRuns) != 2 {
		t.Fatalf("expected 2 recent runs, got %d", len(cfg.RecentRuns))
	}
	if cfg.RecentRuns[0] != "a.json" {
		t.Errorf("expected most recent first, got %s", cfg.RecentRuns[0])
	}

	for i := 0; i < 20; i++ {
		cfg.AddRecentRun(string(rune('c'+i)) + ".json")
	}
	if len(cfg.RecentRuns) != maxRecentRuns {
		t.Errorf("expected %d recent runs, got %d", maxRecentRuns, len(cfg.RecentRuns))
	}
}
