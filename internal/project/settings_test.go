package project

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/piwi3910/BinPack3D/internal/model"
)

func customSettings() model.Settings {
	s := model.DefaultSettings()
	s.ContainerX, s.ContainerY, s.ContainerZ = 10, 12, 8
	s.Generator = model.GeneratorCutByStack
	s.MinSideLen, s.MaxSideLen = 2, 4
	s.WindowSize = 3
	s.Rotations = []model.Rotation{model.RotateNone, model.RotateXZ}
	s.Seed = 42
	s.Support.ThreeCorner = 0.8
	return s
}

func TestSaveAndLoadSettings_RoundTrip(t *testing.T) {
	for _, name := range []string{"settings.json", "settings.yaml", "settings.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "cfg", name)
			want := customSettings()

			if err := SaveSettings(path, want); err != nil {
				t.Fatalf("SaveSettings failed: %v", err)
			}
			got, err := LoadSettings(path)
			if err != nil {
				t.Fatalf("LoadSettings failed: %v", err)
			}
			if !reflect.DeepEqual(want, got) {
				t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
			}
		})
	}
}

func TestLoadSettings_MissingFile(t *testing.T) {
	got, err := LoadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("expected no error for missing file, got: %v", err)
	}
	if !reflect.DeepEqual(model.DefaultSettings(), got) {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestLoadSettings_PartialYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	doc := "container_x: 5\nrotations: [none, xy]\ncatalog:\n  - {label: crate, dx: 2, dy: 2, dz: 1, quantity: 3}\n"
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings failed: %v", err)
	}
	if got.ContainerX != 5 || got.ContainerY != 20 {
		t.Errorf("expected container 5x20, got %dx%d", got.ContainerX, got.ContainerY)
	}
	if len(got.Rotations) != 2 || got.Rotations[1] != model.RotateXY {
		t.Errorf("unexpected rotations %v", got.Rotations)
	}
	if len(got.Catalog) != 1 || got.Catalog[0].Quantity != 3 {
		t.Errorf("unexpected catalog %+v", got.Catalog)
	}
	if got.Support != model.DefaultSupportThresholds() {
		t.Errorf("expected default support, got %+v", got.Support)
	}
}

func TestParseSettings_SchemaRejects(t *testing.T) {
	cases := map[string]string{
		"negative container": `{"container_x": -1}`,
		"unknown generator":  `{"generator": "spiral"}`,
		"unknown field":      `{"colour": "red"}`,
		"bad rotation":       `{"rotations": ["xx"]}`,
		"fractional side":    `{"container_y": 2.5}`,
		"support above one":  `{"support": {"full": 1.5}}`,
		"zero support":       `{"support": {"four_corner": 0}}`,
		"catalog without dz": `{"catalog": [{"dx": 1, "dy": 1}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSettings([]byte(doc), false)
			if !errors.Is(err, ErrInvalidSettings) {
				t.Fatalf("expected ErrInvalidSettings, got %v", err)
			}
		})
	}
}

func TestParseSettings_SchemaRejectsYAML(t *testing.T) {
	_, err := ParseSettings([]byte("window_size: 0\n"), true)
	if !errors.Is(err, ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestParseSettings_Malformed(t *testing.T) {
	if _, err := ParseSettings([]byte("{"), false); err == nil {
		t.Error("expected error for malformed JSON")
	}
	if _, err := ParseSettings([]byte("a: [1, 2"), true); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestParseSettings_EmptyYAML(t *testing.T) {
	got, err := ParseSettings([]byte(""), true)
	if err != nil {
		t.Fatalf("ParseSettings failed: %v", err)
	}
	if !reflect.DeepEqual(model.DefaultSettings(), got) {
		t.Errorf("expected defaults, got %+v", got)
	}
}
