package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig represents ~/.neocc/config.yaml.
type FileConfig struct {
	Output         string  `yaml:"output,omitempty"`
	DownloadURL    string  `yaml:"download-url,omitempty"`
	EphemeridesURL string  `yaml:"ephemerides-url,omitempty"`
	SummaryURL     string  `yaml:"summary-url,omitempty"`
	Timeout        int     `yaml:"timeout,omitempty"` // seconds
	RateLimit      float64 `yaml:"rate-limit,omitempty"`
	CacheDir       string  `yaml:"cache-dir,omitempty"`
	CacheMaxAge    int     `yaml:"cache-max-age,omitempty"` // seconds
	Concurrency    int     `yaml:"concurrency,omitempty"`
}

// ConfigDir returns the path to ~/.neocc/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".neocc")
}

// ConfigPath returns the path to ~/.neocc/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadFileConfig reads the config file at path. A missing file yields an
// empty config.
func LoadFileConfig(path string) (*FileConfig, error) {
	var cfg FileConfig
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
