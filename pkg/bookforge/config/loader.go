package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FromFile loads configuration from a YAML file, layered over defaults.
// Fields absent from the file keep their default values.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	return FromYAML(data)
}

// FromYAML parses YAML data into a Config layered over defaults.
func FromYAML(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, nil
}

// Load builds the effective configuration: defaults, then the optional
// file at path (skipped when path is empty), then environment overrides.
// The result is not validated; callers decide when to call Validate.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		loaded, err := FromFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	return cfg.ApplyEnv()
}
