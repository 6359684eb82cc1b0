package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PresetsFilename is the name of the user presets file, searched next
// to the config file.
const PresetsFilename = "presets.yaml"

// Preset is a user-defined queue description loaded from the presets
// file. It complements the built-in cluster presets.
type Preset struct {
	// Type selects the scheduler variant: "pbs", "slurm", or "lsf".
	// Defaults to "pbs".
	Type string `yaml:"type"`

	Queue       string `yaml:"queue"`
	CpusPerNode int    `yaml:"cpus_per_node"`
	GpusPerNode int    `yaml:"gpus_per_node"`
	NodeLimit   int    `yaml:"node_limit"`
	Mem         string `yaml:"mem"`
	Model       string `yaml:"model"`

	// Project is the accounting project for LSF presets.
	Project string `yaml:"project"`
}

type presetsFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// GetUserPresetsPath returns the path of the user presets file.
func GetUserPresetsPath() (string, error) {
	userConfigDir, err := os.UserConfigDir()
	if err != nil {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".qbatch", PresetsFilename), nil
	}
	return filepath.Join(userConfigDir, "qbatch", PresetsFilename), nil
}

// LoadPresets reads user-defined presets from path. A missing file is
// not an error; it just means no user presets exist.
func LoadPresets(path string) (map[string]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read presets file: %w", err)
	}

	var f presetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets file %s: %w", path, err)
	}

	for name, p := range f.Presets {
		if p.Type == "" {
			p.Type = "pbs"
			f.Presets[name] = p
		}
		if p.CpusPerNode <= 0 && p.Type != "lsf" {
			return nil, fmt.Errorf("preset %q: cpus_per_node must be positive", name)
		}
	}
	return f.Presets, nil
}

// LoadUserPresets loads presets from the default user location.
func LoadUserPresets() (map[string]Preset, error) {
	path, err := GetUserPresetsPath()
	if err != nil {
		return nil, err
	}
	return LoadPresets(path)
}
