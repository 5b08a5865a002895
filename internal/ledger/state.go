package ledger

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"MetricRecipes/internal/model"
)

// LoadState reads the ledger state from a JSON file. Returns an empty state if the file doesn't exist.
func LoadState(filePath string) (*model.LedgerState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &model.LedgerState{Latest: map[string]model.RecipeResult{}}, nil
		}
		return nil, err
	}
	var state model.LedgerState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode ledger state: %w", err)
	}
	if state.Latest == nil {
		state.Latest = map[string]model.RecipeResult{}
	}
	return &state, nil
}

// SaveState writes the ledger state to a JSON file, creating its directory if needed.
func SaveState(filePath string, state *model.LedgerState) error {
	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(jsonSafe(state), "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(filePath, data, 0644)
}

// jsonSafe copies state with non-finite values zeroed, since encoding/json
// rejects NaN and infinities. The kind is kept and the value noted in Error.
func jsonSafe(state *model.LedgerState) *model.LedgerState {
	out := *state
	out.Latest = make(map[string]model.RecipeResult, len(state.Latest))
	for name, res := range state.Latest {
		if math.IsNaN(res.Value) || math.IsInf(res.Value, 0) {
			res.Error = fmt.Sprintf("non-finite value %v", res.Value)
			res.Value = 0
		}
		out.Latest[name] = res
	}
	return &out
}
