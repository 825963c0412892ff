package panel

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"oscpanel/debug"
)

// StateDir returns the directory holding persisted state.
func StateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "oscpanel"), nil
}

// StatePath returns the full path to state.json
func StatePath() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.json"), nil
}

// LoadState reads persisted state from disk. A missing or undecodable
// file is treated as absence of prior state: the caller gets a fresh
// default state, never an error.
func LoadState() *State {
	path, err := StatePath()
	if err != nil {
		return NewState()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			debug.Log("store", "read %s: %v", path, err)
		}
		return NewState()
	}

	s := NewState()
	if err := json.Unmarshal(data, s); err != nil {
		debug.Log("store", "decode %s: %v (starting fresh)", path, err)
		return NewState()
	}

	s.normalize()
	return s
}

// SaveState writes the state to disk as indented JSON.
func SaveState(s *State) error {
	dir, err := StateDir()
	if err != nil {
		return errors.Wrap(err, "locating state dir")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating state dir")
	}

	path, err := StatePath()
	if err != nil {
		return errors.Wrap(err, "locating state path")
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}

	return errors.Wrap(os.WriteFile(path, data, 0644), "writing state")
}
