package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"FinSim/internal/model"
)

// LoadState reads the simulation state from a JSON file. It returns nil, nil
// if the file doesn't exist.
func LoadState(filePath string) (*model.SimulationState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var st model.SimulationState
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &st, nil
}

// SaveState writes the state to a JSON file, replacing it atomically.
func SaveState(filePath string, st *model.SimulationState) error {
	st.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, filePath)
}
