package project

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/piwi3910/BinPack3D/internal/model"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSettings is returned when a settings file does not match the
// settings schema.
var ErrInvalidSettings = errors.New("invalid settings")

//go:embed settings.schema.json
var settingsSchemaJSON []byte

const settingsSchemaURL = "settings.schema.json"

var (
	settingsSchemaOnce sync.Once
	settingsSchema     *jsonschema.Schema
	settingsSchemaErr  error
)

func compiledSettingsSchema() (*jsonschema.Schema, error) {
	settingsSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(settingsSchemaURL, bytes.NewReader(settingsSchemaJSON)); err != nil {
			settingsSchemaErr = err
			return
		}
		settingsSchema, settingsSchemaErr = c.Compile(settingsSchemaURL)
	})
	return settingsSchema, settingsSchemaErr
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadSettings reads settings from a .yaml/.yml or JSON file. Fields missing
// from the file keep their DefaultSettings values. If the file does not
// exist, DefaultSettings is returned with no error.
func LoadSettings(path string) (model.Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DefaultSettings(), nil
		}
		return model.Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	return ParseSettings(data, isYAML(path))
}

// ParseSettings validates and decodes a settings document. YAML documents
// are converted to JSON first so both formats go through the same schema.
func ParseSettings(data []byte, asYAML bool) (model.Settings, error) {
	if asYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return model.Settings{}, fmt.Errorf("failed to parse settings YAML: %w", err)
		}
		if doc == nil {
			doc = map[string]any{}
		}
		converted, err := json.Marshal(doc)
		if err != nil {
			return model.Settings{}, fmt.Errorf("failed to convert settings YAML: %w", err)
		}
		data = converted
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}
	schema, err := compiledSettingsSchema()
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to compile settings schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return model.Settings{}, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}

	settings := model.DefaultSettings()
	// Lists given in the file replace the defaults instead of merging into them.
	if m, ok := doc.(map[string]any); ok {
		if _, ok := m["catalog"]; ok {
			settings.Catalog = nil
		}
		if _, ok := m["rotations"]; ok {
			settings.Rotations = nil
		}
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return model.Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes settings as YAML or JSON depending on the extension,
// creating missing parent directories.
func SaveSettings(path string, settings model.Settings) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(settings)
	} else {
		data, err = json.MarshalIndent(settings, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
