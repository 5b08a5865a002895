package ledger

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MetricRecipes/internal/model"
)

const testLayout = "2006-01-02"

func TestManager_ApplyAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "ledger.json")
	m, err := NewManager(path, testLayout)
	require.NoError(t, err)

	runAt := time.Date(2015, time.March, 1, 6, 0, 0, 0, time.UTC)
	m.Apply("run-1", runAt, []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "2015-02-28", Kind: model.KindNumber, Value: 4907.89},
		{Recipe: "Burn", DateKey: "2015-02-28", Kind: model.KindNoValue},
	})

	res, ok := m.Latest("Net Revenue")
	require.True(t, ok)
	assert.Equal(t, 4907.89, res.Value)

	reloaded, err := NewManager(path, testLayout)
	require.NoError(t, err)
	state := reloaded.GetState()
	assert.Equal(t, "run-1", state.LastRunID)
	assert.True(t, runAt.Equal(state.LastRunAt))
	assert.Len(t, state.Latest, 2)
	assert.Equal(t, model.KindNoValue, state.Latest["Burn"].Kind)
}

func TestManager_OlderDatesDoNotReplace(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "ledger.json"), testLayout)
	require.NoError(t, err)

	m.Apply("run-1", time.Now(), []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "2015-02-28", Kind: model.KindNumber, Value: 4907.89},
	})
	m.Apply("run-2", time.Now(), []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "2014-11-30", Kind: model.KindNoValue},
	})

	res, _ := m.Latest("Net Revenue")
	assert.Equal(t, "2015-02-28", res.DateKey)
	assert.Equal(t, "run-2", m.GetState().LastRunID)
}

func TestManager_UnpaddedDateKeys(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "ledger.json"), "2006-1-2")
	require.NoError(t, err)

	m.Apply("run-1", time.Now(), []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "1204-2-10", Kind: model.KindNumber, Value: 3},
	})
	m.Apply("run-2", time.Now(), []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "1204-2-4", Kind: model.KindNumber, Value: 2},
	})
	res, _ := m.Latest("Net Revenue")
	assert.Equal(t, "1204-2-10", res.DateKey)

	m.Apply("run-3", time.Now(), []model.RecipeResult{
		{Recipe: "Net Revenue", DateKey: "1204-11-1", Kind: model.KindNumber, Value: 5},
	})
	res, _ = m.Latest("Net Revenue")
	assert.Equal(t, "1204-11-1", res.DateKey)
}

func TestManager_SnapshotSortedAndForget(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "ledger.json"), testLayout)
	require.NoError(t, err)
	m.Apply("run-1", time.Now(), []model.RecipeResult{
		{Recipe: "b", DateKey: "2015-02-28", Kind: model.KindUnknown},
		{Recipe: "a", DateKey: "2015-02-28", Kind: model.KindNumber, Value: 1},
		{Recipe: "c", DateKey: "2015-02-28", Kind: model.KindNumber, Value: 2},
	})

	snap := m.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].Recipe, snap[1].Recipe, snap[2].Recipe})

	m.Forget([]string{"a", "c"})
	_, ok := m.Latest("b")
	assert.False(t, ok)
	assert.Len(t, m.Snapshot(), 2)
}

func TestSaveState_NonFiniteValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	state := &model.LedgerState{Latest: map[string]model.RecipeResult{
		"ratio": {Recipe: "ratio", Kind: model.KindNumber, Value: math.Inf(1)},
	}}
	require.NoError(t, SaveState(path, state))
	assert.True(t, math.IsInf(state.Latest["ratio"].Value, 1), "caller's state must not be modified")

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, loaded.Latest["ratio"].Value)
	assert.Contains(t, loaded.Latest["ratio"].Error, "+Inf")
}

func TestLoadState_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	_, err := LoadState(path)
	assert.Error(t, err)
}
