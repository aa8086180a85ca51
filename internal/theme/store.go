package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// StateKey is the key the theme name is persisted under
const StateKey = "theme"

// Store persists the theme name in a small YAML state file
type Store struct {
	path string
}

// NewStore creates a Store backed by the file at path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultStorePath returns $XDG_CONFIG_HOME/plotdeck/state.yaml, falling back
// to $HOME/.config/plotdeck/state.yaml
func DefaultStorePath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state.yaml"), nil
}

// ConfigDir returns the plotdeck configuration directory
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "plotdeck"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to find home directory: %w", err)
	}
	return filepath.Join(home, ".config", "plotdeck"), nil
}

// Path returns the state file location
func (s *Store) Path() string { return s.path }

// Load reads the persisted theme. A missing file or key yields Default.
func (s *Store) Load() (Theme, error) {
	state, err := s.read()
	if err != nil {
		return Default, err
	}

	raw, ok := state[StateKey].(string)
	if !ok || raw == "" {
		return Default, nil
	}
	t, err := Parse(raw)
	if err != nil {
		return Default, fmt.Errorf("invalid persisted theme: %w", err)
	}
	return t, nil
}

// Save writes t under StateKey, keeping any other keys in the file
func (s *Store) Save(t Theme) error {
	state, err := s.read()
	if err != nil {
		return err
	}
	state[StateKey] = string(t)

	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode state file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Persist subscribes the store to state so every change is saved. Save
// errors are passed to onErr when it is non-nil.
func (s *Store) Persist(state *State, onErr func(error)) (unsubscribe func()) {
	return state.Subscribe(func(t Theme) {
		if err := s.Save(t); err != nil && onErr != nil {
			onErr(err)
		}
	})
}

func (s *Store) read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]any), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	state := make(map[string]any)
	if err := yaml.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state == nil {
		state = make(map[string]any)
	}
	return state, nil
}
