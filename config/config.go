package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// MIDIConfig enables mirroring control values to a MIDI CC output.
type MIDIConfig struct {
	Enabled  bool   `json:"enabled"`
	PortName string `json:"portName,omitempty"`
	Channel  int    `json:"channel,omitempty"` // 0-15
}

// OSCConfig holds the default OSC destination for fresh state.
type OSCConfig struct {
	Host string `json:"host,omitempty"`
	Port string `json:"port,omitempty"`
}

// UIConfig stores UI preferences
type UIConfig struct {
	PaletteFile string `json:"paletteFile,omitempty"`
}

// Config is the main configuration structure
type Config struct {
	OSC   OSCConfig  `json:"osc,omitempty"`
	MIDI  MIDIConfig `json:"midi,omitempty"`
	UI    UIConfig   `json:"ui,omitempty"`
	Debug bool       `json:"debug,omitempty"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		OSC: OSCConfig{
			Host: "127.0.0.1",
			Port: "8000",
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "oscpanel"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.OSC.Host == "" {
		cfg.OSC.Host = "127.0.0.1"
	}
	if cfg.OSC.Port == "" {
		cfg.OSC.Port = "8000"
	}
	return &cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
