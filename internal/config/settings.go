package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// settingsProbes lists the default locations for the optional settings file,
// checked in order when no explicit path is given.
func settingsProbes() []string {
	probes := []string{"a2t.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		probes = append(probes, filepath.Join(home, ".a2t", "a2t.yaml"))
	}
	return probes
}

// applySettingsFile overlays the YAML settings file onto cfg. Keys absent
// from the file keep their current values. An explicit path must exist; the
// default locations are optional.
func applySettingsFile(cfg *Config, path string) error {
	if path != "" {
		path = os.ExpandEnv(path)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("settings file not found: %s", path)
		}
		return unmarshalSettings(cfg, path)
	}

	for _, probe := range settingsProbes() {
		if _, err := os.Stat(probe); err == nil {
			return unmarshalSettings(cfg, probe)
		}
	}
	return nil
}

func unmarshalSettings(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read settings file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
