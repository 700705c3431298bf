package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk YAML configuration shape for rscscan. Nil fields
// mean "not set" so layers can be merged.
type FileConfig struct {
	Exclude    *string `yaml:"exclude,omitempty"`
	Threads    *int    `yaml:"threads,omitempty"`
	Sorted     *bool   `yaml:"sorted,omitempty"`
	AllFolders *bool   `yaml:"all_folders,omitempty"`
	Timeout    *string `yaml:"timeout,omitempty"`
	NoColor    *bool   `yaml:"no_color,omitempty"`
}

// ErrNoConfig reports that no config file exists at the searched locations.
var ErrNoConfig = errors.New("no config file")

// LoadFile reads a YAML config file from the provided path.
func LoadFile(path string) (FileConfig, error) {
	var cfg FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LocalNames are searched, in order, in the scanned root.
var LocalNames = []string{".rscscan.yml", ".rscscan.yaml", "rscscan.yml", "rscscan.yaml"}

// LoadLocal searches for a config file in the given root. ErrNoConfig means
// none was found; any other error comes from a file that exists.
func LoadLocal(root string) (FileConfig, error) {
	var cfg FileConfig
	for _, name := range LocalNames {
		p := filepath.Join(root, name)
		if _, err := os.Stat(p); err == nil {
			return LoadFile(p)
		}
	}
	return cfg, ErrNoConfig
}

// LoadGlobal loads the global config file from XDG base directory or ~/.config.
func LoadGlobal() (FileConfig, error) {
	var cfg FileConfig
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, _ := os.UserHomeDir()
		if home != "" {
			base = filepath.Join(home, ".config")
		}
	}
	if base == "" {
		return cfg, ErrNoConfig
	}
	p := filepath.Join(base, "rscscan", "config.yml")
	if _, err := os.Stat(p); err == nil {
		return LoadFile(p)
	}
	return cfg, ErrNoConfig
}

// Save writes cfg as YAML to path.
func Save(path string, cfg FileConfig) error {
	b, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
