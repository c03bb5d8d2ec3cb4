package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Record marks a single notified freebie. Records are created once and
// never mutated afterwards.
type Record struct {
	NotifiedAt time.Time `json:"notified_at"`
}

// State is the persisted set of notified keys. It is owned exclusively by
// the active run; there are no concurrent writers.
type State struct {
	NotifiedKeys map[string]Record `json:"notified_keys"`
}

func NewState() *State {
	return &State{NotifiedKeys: make(map[string]Record)}
}

func (s *State) Has(key string) bool {
	_, ok := s.NotifiedKeys[key]
	return ok
}

// MarkNotified records a key the first time it is seen. Existing records
// keep their original timestamp.
func (s *State) MarkNotified(key string, at time.Time) {
	if _, ok := s.NotifiedKeys[key]; ok {
		return
	}
	s.NotifiedKeys[key] = Record{NotifiedAt: at}
}

func (s *State) Len() int {
	return len(s.NotifiedKeys)
}

// Store persists the notified-key state as a JSON document at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the state file. It always returns a usable state: on a missing
// file the state is empty with a nil error, and on an unreadable or
// structurally invalid file the state is empty with a non-nil error so the
// caller can log why a fresh state was substituted.
func (st *Store) Load() (*State, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return NewState(), fmt.Errorf("failed to read state file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return NewState(), fmt.Errorf("failed to parse state file: %w", err)
	}

	if state.NotifiedKeys == nil {
		state.NotifiedKeys = make(map[string]Record)
	}

	return &state, nil
}

// Save rewrites the state file atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated document behind.
func (st *Store) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(st.path)
	tmp, err := os.CreateTemp(dir, ".notified-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmp.Name(), st.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace state file: %w", err)
	}

	return nil
}
