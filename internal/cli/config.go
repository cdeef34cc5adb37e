package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dannysarco/llm-token-optimizer/internal/platform"
)

// Config is the client application's yaml configuration.
type Config struct {
	RelayURL    string `yaml:"relay_url"`
	AccessKey   string `yaml:"access_key,omitempty"`
	DebounceMs  int    `yaml:"debounce_ms"`
	HistoryPath string `yaml:"history_path"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	dir := platform.DefaultClientConfigDir()
	return Config{
		RelayURL:    "http://localhost:3000",
		DebounceMs:  500,
		HistoryPath: filepath.Join(dir, "history.json"),
	}
}

// DefaultConfigPath returns where the config file lives.
func DefaultConfigPath() string {
	return filepath.Join(platform.DefaultClientConfigDir(), "config.yaml")
}

// LoadConfig reads the yaml config at path, filling unset fields with
// defaults. A missing file yields the defaults without error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("cli.LoadConfig: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cli.LoadConfig: parse: %w", err)
	}
	if cfg.RelayURL == "" {
		cfg.RelayURL = DefaultConfig().RelayURL
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = DefaultConfig().DebounceMs
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = DefaultConfig().HistoryPath
	}
	return cfg, nil
}

// SaveConfig writes cfg as yaml to path, creating parent directories.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cli.SaveConfig: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("cli.SaveConfig: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cli.SaveConfig: %w", err)
	}
	return nil
}
